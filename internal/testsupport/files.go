package testsupport

import (
	"encoding/csv"
	"os"
	"strings"
	"testing"
)

// ReadCSV parses a report file, dropping the byte order mark.
func ReadCSV(t testing.TB, path string) [][]string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "\ufeff") {
		t.Fatalf("%s: missing byte order mark", path)
	}
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(text, "\ufeff"))).ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return records
}
