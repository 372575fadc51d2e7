package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"cancomp/internal/testsupport"
)

type cliTestEnv struct {
	baseDir       string
	configPath    string
	cachePath     string
	overridesPath string
	outputDir     string
	lidarr        *httptest.Server
	musicbrainz   *httptest.Server
	mbRequests    atomic.Int32
}

type testAlbum struct {
	ID     int
	RGID   string
	Artist string
	Title  string
	Files  int
}

func setupCLITestEnv(t *testing.T, albums []testAlbum, trackCounts map[string][]int) *cliTestEnv {
	t.Helper()

	testsupport.IsolateEnv(t)
	base := t.TempDir()

	env := &cliTestEnv{
		baseDir:       base,
		configPath:    filepath.Join(base, "config.toml"),
		cachePath:     filepath.Join(base, "cache", "mb_cache.sqlite"),
		overridesPath: filepath.Join(base, "overrides.toml"),
		outputDir:     filepath.Join(base, "reports"),
	}
	env.lidarr = httptest.NewServer(lidarrHandler(albums))
	t.Cleanup(env.lidarr.Close)
	env.musicbrainz = httptest.NewServer(musicBrainzHandler(env, trackCounts))
	t.Cleanup(env.musicbrainz.Close)

	writeTestConfig(t, env, "test-key")
	return env
}

func lidarrHandler(albums []testAlbum) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/album", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		payload := make([]map[string]any, 0, len(albums))
		for _, a := range albums {
			payload = append(payload, map[string]any{
				"id":             a.ID,
				"foreignAlbumId": a.RGID,
				"title":          a.Title,
				"artist":         map[string]any{"artistName": a.Artist},
				"statistics":     map[string]any{"trackFileCount": a.Files},
			})
		}
		_ = json.NewEncoder(w).Encode(payload)
	})
	mux.HandleFunc("/api/v1/trackfile", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("albumId")
		for _, a := range albums {
			if fmt.Sprint(a.ID) == id {
				files := make([]map[string]any, a.Files)
				for i := range files {
					files[i] = map[string]any{"id": i + 1}
				}
				_ = json.NewEncoder(w).Encode(files)
				return
			}
		}
		_, _ = w.Write([]byte("[]"))
	})
	mux.HandleFunc("/api/v1/system/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"version":"2.9.6"}`))
	})
	return mux
}

func musicBrainzHandler(env *cliTestEnv, trackCounts map[string][]int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.mbRequests.Add(1)
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "CanComp/") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		counts := trackCounts[r.URL.Query().Get("release-group")]
		releases := make([]map[string]any, 0, len(counts))
		for _, n := range counts {
			releases = append(releases, map[string]any{
				"media": []map[string]any{{"track-count": n}},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"releases":      releases,
			"release-count": len(releases),
		})
	})
}

func writeTestConfig(t *testing.T, env *cliTestEnv, apiKey string) {
	t.Helper()
	content := fmt.Sprintf(`[musicbrainz]
contact = "tests@example.com"
base_url = %q
max_retries = 0

[lidarr]
url = %q
api_key = %q

[paths]
cache = %q
overrides = %q
output_dir = %q
`, env.musicbrainz.URL+"/ws/2", env.lidarr.URL, apiKey, env.cachePath, env.overridesPath, env.outputDir)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
