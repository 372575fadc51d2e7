package overrides

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/cases"

	"cancomp/internal/fileutil"
)

// Header opens every file written by WriteSorted.
const Header = `# Canonical track counts per MusicBrainz release group. An empty list accepts any track count.
# Edit and save before a run. cancomp can rewrite this file in sorted order (cancomp overrides sort
# or cancomp run --sort-overrides); comments you add by hand are lost when it does.
# Format: "{release group ID}" = [{track count}, ...] # {Artist - Release group}
[canon]
`

// Overrides maps a release group ID to its accepted canonical track counts,
// sorted ascending without duplicates.
type Overrides map[string][]int

// Load reads the overrides file. A missing file yields an empty set. Entries
// whose value is not a list are ignored, as are list elements that are neither
// integers nor strings of digits.
func Load(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Overrides{}, nil
		}
		return nil, fmt.Errorf("read overrides: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse overrides %s: %w", path, err)
	}

	out := Overrides{}
	canon, ok := doc["canon"].(map[string]any)
	if !ok {
		return out, nil
	}
	for rgid, value := range canon {
		list, ok := value.([]any)
		if !ok {
			continue
		}
		counts := make([]int, 0, len(list))
		for _, elem := range list {
			if n, ok := trackCount(elem); ok {
				counts = append(counts, n)
			}
		}
		out[rgid] = normalize(counts)
	}
	return out, nil
}

func trackCount(value any) (int, bool) {
	switch v := value.(type) {
	case int64:
		return int(v), true
	case string:
		if v == "" || strings.IndexFunc(v, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			return 0, false
		}
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}

func normalize(counts []int) []int {
	slices.Sort(counts)
	return slices.Compact(counts)
}

// WriteSorted rewrites path with every override, ordered by the case-folded
// label of its release group and then by ID. Labels become trailing comments.
func WriteSorted(path string, overrides Overrides, labels map[string]string) error {
	fold := cases.Fold()
	type entry struct {
		rgid   string
		label  string
		folded string
	}
	entries := make([]entry, 0, len(overrides))
	for rgid := range overrides {
		label := strings.TrimSpace(labels[rgid])
		entries = append(entries, entry{rgid: rgid, label: label, folded: fold.String(label)})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := strings.Compare(a.folded, b.folded); c != 0 {
			return c
		}
		return strings.Compare(a.rgid, b.rgid)
	})

	var buf bytes.Buffer
	buf.WriteString(Header)
	for _, e := range entries {
		counts := normalize(slices.Clone(overrides[e.rgid]))
		parts := make([]string, len(counts))
		for i, n := range counts {
			parts[i] = strconv.Itoa(n)
		}
		fmt.Fprintf(&buf, "%s = [%s]", strconv.Quote(e.rgid), strings.Join(parts, ", "))
		if e.label != "" {
			buf.WriteString(" # ")
			buf.WriteString(e.label)
		}
		buf.WriteByte('\n')
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write overrides: %w", err)
	}
	return nil
}

// CommentLabels recovers the trailing "# label" comments of entry lines, so a
// file can be re-sorted without asking the library for labels again.
func CommentLabels(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read overrides: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	labels := make(map[string]string)
	for line := range strings.Lines(string(data)) {
		line = strings.TrimSpace(line)
		quoted, err := strconv.QuotedPrefix(line)
		if err != nil {
			continue
		}
		rgid, err := strconv.Unquote(quoted)
		if err != nil {
			continue
		}
		rest := line[len(quoted):]
		closing := strings.LastIndexByte(rest, ']')
		if closing < 0 {
			continue
		}
		comment, ok := strings.CutPrefix(strings.TrimSpace(rest[closing+1:]), "#")
		if !ok {
			continue
		}
		if label := strings.TrimSpace(comment); label != "" {
			labels[rgid] = label
		}
	}
	return labels, nil
}
