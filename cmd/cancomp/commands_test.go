package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cancomp/internal/testsupport"
)

var alphaAlbum = testAlbum{ID: 1, RGID: "rg-alpha", Artist: "Alpha", Title: "First", Files: 10}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, nil, nil)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "CanComp/0.0.0 ( tests@example.com )")

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config already exists")
	}
}

func TestRunCommandWritesReportAndFillsCache(t *testing.T) {
	env := setupCLITestEnv(t, []testAlbum{alphaAlbum}, map[string][]int{"rg-alpha": {12, 12, 10}})
	report := filepath.Join(env.outputDir, "report.csv")

	out, _, err := runCLI(t, []string{"run", "--out", report}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "MB cache policy: max age = 365 days")
	requireContains(t, out, "[1/1] MB fetched (not in cache): rg-alpha")
	requireContains(t, out, "Wrote 1 rows to "+report)

	records := testsupport.ReadCSV(t, report)
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(records))
	}
	row := records[1]
	if row[0] != "rg-alpha" || row[3] != "10" || row[8] != "12" || row[6] != "False" {
		t.Fatalf("unexpected row: %v", row)
	}
	if row[13] != `{"10": 1, "12": 2}` {
		t.Fatalf("unexpected histogram: %s", row[13])
	}
	if env.mbRequests.Load() != 1 {
		t.Fatalf("expected one MusicBrainz request, got %d", env.mbRequests.Load())
	}

	out, _, err = runCLI(t, []string{"stats", "rg-alpha"}, env.configPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	requireContains(t, out, "Status:        cached")
	requireContains(t, out, "Mode tracks:   12")
	if env.mbRequests.Load() != 1 {
		t.Fatalf("stats should be served from cache, saw %d requests", env.mbRequests.Load())
	}

	out, _, err = runCLI(t, []string{"cache", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "rg-alpha")
	requireContains(t, out, "1 release groups")

	out, _, err = runCLI(t, []string{"cache", "show", "rg-alpha", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("cache show: %v", err)
	}
	var view statsView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode cache show: %v\n%s", err, out)
	}
	if view.ReleaseCount != 3 || view.Histogram["12"] != 2 || view.ModeTrackCount == nil || *view.ModeTrackCount != 12 {
		t.Fatalf("unexpected cache view: %+v", view)
	}
}

func TestRunCommandRequiresAPIKey(t *testing.T) {
	env := setupCLITestEnv(t, nil, nil)
	writeTestConfig(t, env, "")

	_, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err == nil {
		t.Fatal("expected missing api key error")
	}
	requireContains(t, err.Error(), "lidarr.api_key is required")

	out, _, err := runCLI(t, []string{"run", "--api-key", "test-key", "--out", filepath.Join(env.outputDir, "r.csv")}, env.configPath)
	if err != nil {
		t.Fatalf("run with --api-key: %v", err)
	}
	requireContains(t, out, "Wrote 0 rows")
}

func TestStatsCommandForcedRefetch(t *testing.T) {
	env := setupCLITestEnv(t, nil, map[string][]int{"rg-beta": {8}})

	out, _, err := runCLI(t, []string{"stats", "rg-beta", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var view statsView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if view.Status != "fetched (not in cache)" || view.ReleaseCount != 1 {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestMaxAgeFlagRejectsNonFiniteValues(t *testing.T) {
	env := setupCLITestEnv(t, []testAlbum{alphaAlbum}, map[string][]int{"rg-alpha": {12}})

	for _, args := range [][]string{
		{"stats", "rg-alpha", "--max-age-days", "NaN"},
		{"run", "--max-age-days", "+Inf", "--out", filepath.Join(env.outputDir, "r.csv")},
	} {
		_, _, err := runCLI(t, args, env.configPath)
		if err == nil || !strings.Contains(err.Error(), "--max-age-days") {
			t.Fatalf("%v: expected max age error, got %v", args, err)
		}
	}
	if got := env.mbRequests.Load(); got != 0 {
		t.Fatalf("expected no MusicBrainz requests, got %d", got)
	}
}

func TestCacheCommandsWithoutCache(t *testing.T) {
	env := setupCLITestEnv(t, nil, nil)

	if _, _, err := runCLI(t, []string{"cache", "list"}, env.configPath); err == nil {
		t.Fatal("expected error for missing cache")
	}
	if _, err := os.Stat(env.cachePath); !os.IsNotExist(err) {
		t.Fatal("cache list must not create the cache")
	}

	out, _, err := runCLI(t, []string{"cache", "path"}, env.configPath)
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	requireContains(t, out, env.cachePath)
}

func TestDoctorCommand(t *testing.T) {
	env := setupCLITestEnv(t, nil, nil)
	if err := os.MkdirAll(env.outputDir, 0o755); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "Lidarr:")
	requireContains(t, out, "[OK] Reachable")
	requireContains(t, out, "(will be created)")

	writeTestConfig(t, env, "wrong-key")
	out, _, err = runCLI(t, []string{"doctor"}, env.configPath)
	if err == nil {
		t.Fatal("expected doctor failure with bad api key")
	}
	requireContains(t, out, "[ERROR] auth failed")
}

func TestOverridesSortCommand(t *testing.T) {
	env := setupCLITestEnv(t, []testAlbum{
		{ID: 1, RGID: "rg-z", Artist: "aardvark", Title: "One", Files: 3},
	}, nil)
	contents := "[canon]\n\"rg-y\" = [7] # Zebra - Two\n\"rg-z\" = [3]\n"
	if err := os.WriteFile(env.overridesPath, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"overrides", "sort", "--from-lidarr"}, env.configPath)
	if err != nil {
		t.Fatalf("overrides sort: %v", err)
	}
	requireContains(t, out, "Sorted 2 overrides written to "+env.overridesPath)

	data, err := os.ReadFile(env.overridesPath)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	first := strings.Index(text, `"rg-z" = [3] # aardvark - One`)
	second := strings.Index(text, `"rg-y" = [7] # Zebra - Two`)
	if first < 0 || second < 0 || first > second {
		t.Fatalf("unexpected sorted file:\n%s", text)
	}
}
