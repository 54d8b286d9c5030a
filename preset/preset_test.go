package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePreset(t *testing.T, dir, id string, paramCount int) string {
	t.Helper()
	params := make([]float64, paramCount)
	for i := range params {
		params[i] = float64(i) * 0.5
	}
	b, err := json.Marshal(map[string]any{
		"text":         "warm, muddy",
		"param_values": params,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(dir, id+".json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}
	return path
}

func TestLoadFileParsesDescriptor(t *testing.T) {
	dir := t.TempDir()
	path := writePreset(t, dir, "eq_12", 40)

	p, err := LoadFile(path, "eq")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if p.ID != "eq_12" || p.FxType != "eq" || p.Text != "warm, muddy" {
		t.Fatalf("fields mismatch: %+v", p)
	}
	if len(p.Params) != 40 || p.Params[2] != 1.0 {
		t.Fatalf("params mismatch: len=%d", len(p.Params))
	}
	if len(p.Descriptor) == 0 {
		t.Fatalf("descriptor bytes not retained")
	}
}

func TestLoadFileRejectsWrongLength(t *testing.T) {
	dir := t.TempDir()
	path := writePreset(t, dir, "eq_short", 39)
	if _, err := LoadFile(path, "eq"); err == nil {
		t.Fatalf("expected length error for 39-value eq curve")
	}

	path = writePreset(t, dir, "rev_bad", 4)
	if _, err := LoadFile(path, "reverb"); err == nil {
		t.Fatalf("expected length error for 4-value reverb preset")
	}
	path = writePreset(t, dir, "rev_ok", 6)
	if _, err := LoadFile(path, "reverb"); err != nil {
		t.Fatalf("6-value reverb preset rejected: %v", err)
	}
}

func TestLoadDirSortsAndFiltersJSON(t *testing.T) {
	dir := t.TempDir()
	for _, id := range []string{"eq_2", "eq_0", "eq_1"} {
		writePreset(t, dir, id, 40)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	presets, err := LoadDir(dir, "eq")
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(presets) != 3 {
		t.Fatalf("expected 3 presets, got %d", len(presets))
	}
	var ids []string
	for _, p := range presets {
		ids = append(ids, p.ID)
	}
	if got := strings.Join(ids, ","); got != "eq_0,eq_1,eq_2" {
		t.Fatalf("unexpected order: %s", got)
	}
}

func TestLoadDirFailsOnMalformedDescriptor(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "eq_good", 40)
	if err := os.WriteFile(filepath.Join(dir, "eq_bad.json"), []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadDir(dir, "eq"); err == nil {
		t.Fatalf("expected failure on malformed descriptor")
	}
}

func TestLoadDirEmpty(t *testing.T) {
	if _, err := LoadDir(t.TempDir(), "eq"); err == nil {
		t.Fatalf("expected error for empty preset dir")
	}
}

func TestLoadDirDeterministicAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		writePreset(t, dir, fmt.Sprintf("eq_%d", i), 40)
	}
	a, err := LoadDir(dir, "eq")
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	b, err := LoadDir(dir, "eq")
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("order differs between loads at %d: %s != %s", i, a[i].ID, b[i].ID)
		}
	}
}
