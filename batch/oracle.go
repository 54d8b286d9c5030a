package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Oracle answers whether a render artifact already exists. It is a
// read-only probe with no side effects.
type Oracle interface {
	Exists(outputID string) (bool, error)
}

// OracleError reports a failed existence probe. A failed probe is never
// treated as "does not exist"; the affected job is reported as failed
// instead of being re-rendered or skipped blindly.
type OracleError struct {
	OutputID string
	Err      error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("existence probe for %s: %v", e.OutputID, e.Err)
}

func (e *OracleError) Unwrap() error {
	return e.Err
}

// ArtifactPath maps an output id to its canonical artifact location.
func ArtifactPath(root, outputID string) string {
	return filepath.Join(root, filepath.FromSlash(outputID)+".wav")
}

// SidecarPath maps an output id to the preset-descriptor copy persisted
// next to the artifact.
func SidecarPath(root, outputID string) string {
	return filepath.Join(root, filepath.FromSlash(outputID)+".json")
}

// DirOracle probes the artifact directory. The on-disk artifact is the
// sole idempotency state; no separate ledger is consulted.
type DirOracle struct {
	Root string
}

func (o DirOracle) Exists(outputID string) (bool, error) {
	_, err := os.Stat(ArtifactPath(o.Root, outputID))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, &OracleError{OutputID: outputID, Err: err}
}
