// Package preset loads effect preset descriptors: named JSON records
// carrying an ordered numeric parameter vector.
package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/socialfx/fxrender/effects"
)

// Preset is one effect configuration. Immutable once loaded.
type Preset struct {
	ID     string
	FxType string
	Text   string
	Params []float64

	// Descriptor holds the original JSON bytes so artifacts can carry a
	// verbatim copy of the preset they were rendered with.
	Descriptor []byte
}

// file is the descriptor JSON schema.
type file struct {
	Text        string    `json:"text"`
	ParamValues []float64 `json:"param_values"`
}

// LoadFile loads a single preset descriptor. The preset id is the file
// base name without extension.
func LoadFile(path string, fxType string) (*Preset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f file
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("preset %s: %w", path, err)
	}
	if err := checkParamLen(fxType, len(f.ParamValues)); err != nil {
		return nil, fmt.Errorf("preset %s: %w", path, err)
	}

	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if id == "" {
		return nil, fmt.Errorf("preset %s: empty id", path)
	}

	return &Preset{
		ID:         id,
		FxType:     fxType,
		Text:       f.Text,
		Params:     f.ParamValues,
		Descriptor: b,
	}, nil
}

// LoadDir loads every *.json descriptor in dir, sorted by preset id.
// A single malformed descriptor fails the whole load; presets are never
// silently dropped or padded.
func LoadDir(dir string, fxType string) ([]*Preset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var presets []*Preset
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		p, err := LoadFile(filepath.Join(dir, entry.Name()), fxType)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	if len(presets) == 0 {
		return nil, fmt.Errorf("no preset descriptors in %s", dir)
	}

	sort.Slice(presets, func(i, j int) bool { return presets[i].ID < presets[j].ID })
	return presets, nil
}

// checkParamLen enforces the fixed parameter-vector length per effect
// type at load time.
func checkParamLen(fxType string, n int) error {
	min, err := effects.ParamCount(fxType)
	if err != nil {
		return err
	}
	switch fxType {
	case effects.TypeEQ:
		if n != min {
			return fmt.Errorf("param_values length %d, want exactly %d", n, min)
		}
	default:
		// reverb and comp carry one optional trailing value
		if n != min && n != min+1 {
			return fmt.Errorf("param_values length %d, want %d or %d", n, min, min+1)
		}
	}
	return nil
}
