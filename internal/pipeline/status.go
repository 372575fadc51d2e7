package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"cancomp/internal/rgstats"
)

const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiRed    = "\033[31m"
	ansiBlue   = "\033[34m"
)

// ShouldColorize reports whether writer is an interactive terminal.
func ShouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// StatusLine renders the per-release-group progress line.
func StatusLine(index, total int, status rgstats.Status, rgid string, colorize bool) string {
	label := string(status)
	if colorize {
		if color := statusColor(status); color != "" {
			label = color + label + ansiReset
		}
	}
	return fmt.Sprintf("[%d/%d] MB %s: %s", index, total, label, rgid)
}

func statusColor(status rgstats.Status) string {
	switch {
	case status == rgstats.StatusCached:
		return ansiGreen
	case status == rgstats.StatusFetchedStale, status == rgstats.StatusFetchedForced:
		return ansiYellow
	case status == rgstats.StatusFetchedMiss:
		return ansiBlue
	case status.Failed():
		return ansiRed
	default:
		return ""
	}
}
