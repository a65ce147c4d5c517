package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// loadState reads the state file. A missing file yields zero-value state.
func loadState(path string) (State, error) {
	var st State
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return st, nil
		}
		return st, fmt.Errorf("review: read state: %w", err)
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("review: parse state %s: %w", path, err)
	}
	return st, nil
}

// saveState atomically writes the state file: tmp file → fsync → rename.
func saveState(path string, st State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("review: marshal state: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("review: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".raido-state-*")
	if err != nil {
		return fmt.Errorf("review: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("review: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("review: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("review: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("review: rename: %w", err)
	}
	success = true
	return nil
}
