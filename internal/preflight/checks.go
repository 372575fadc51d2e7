package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"cancomp/internal/config"
	"cancomp/internal/library"
	"cancomp/internal/mbcache"
)

const lidarrCheckTimeout = 10 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCreatableDirectory passes when path is an accessible directory or can
// be created under its nearest existing ancestor.
func CheckCreatableDirectory(name, path string) Result {
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		return CheckDirectoryAccess(name, path)
	}
	ancestor := filepath.Dir(path)
	for {
		if _, err := os.Stat(ancestor); err == nil {
			break
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			break
		}
		ancestor = parent
	}
	if res := CheckDirectoryAccess(name, ancestor); !res.Passed {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s)", path, ancestor)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckContact flags the placeholder contact MusicBrainz asks clients to replace.
func CheckContact(cfg *config.Config) Result {
	const name = "MusicBrainz contact"
	if hint := cfg.WarnContact(); hint != "" {
		return Result{Name: name, Detail: hint, Advisory: true}
	}
	return Result{Name: name, Passed: true, Detail: cfg.UserAgent()}
}

// CheckCache opens the cache database and reports how many release groups it holds.
func CheckCache(ctx context.Context, path string) Result {
	const name = "MusicBrainz cache"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (empty, created on first run)", path)}
	}
	store, err := mbcache.Open(ctx, path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer store.Close()

	count, err := store.Count(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d release groups)", path, count)}
}

// CheckLidarr verifies Lidarr connectivity and authentication.
func CheckLidarr(ctx context.Context, cfg config.Lidarr) Result {
	const name = "Lidarr"

	client, err := library.NewLidarr(library.Config{
		BaseURL: cfg.URL,
		APIKey:  cfg.APIKey,
		Timeout: lidarrCheckTimeout,
	})
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, lidarrCheckTimeout)
	defer cancel()

	if err := client.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLidarrError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

func summarizeLidarrError(err error) string {
	var lerr *library.Error
	if errors.As(err, &lerr) && lerr.StatusCode != 0 {
		switch lerr.StatusCode {
		case 401, 403:
			return "auth failed (invalid api key)"
		default:
			return fmt.Sprintf("status check failed (%d)", lerr.StatusCode)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "status check timed out (Lidarr unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "status check timed out (Lidarr unreachable)"
	}
	return err.Error()
}
