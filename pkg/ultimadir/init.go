package ultimadir

import (
	"errors"
	"fmt"
	"os"
)

// ErrConfigExists is returned by Bootstrap when a config file is already
// present and overwrite is false.
var ErrConfigExists = errors.New("ultimadir: config already exists")

// EnsureStructure creates the root and logs directories. It is idempotent.
func EnsureStructure(d Dir) error {
	if err := os.MkdirAll(d.LogsDir(), 0o750); err != nil {
		return fmt.Errorf("ultimadir: create logs dir: %w", err)
	}

	return nil
}

// Bootstrap creates the directory layout and writes configJSON to the config
// path. An existing config is only replaced when overwrite is true.
func Bootstrap(d Dir, configJSON []byte, overwrite bool) error {
	if err := EnsureStructure(d); err != nil {
		return err
	}

	if d.HasConfig() && !overwrite {
		return fmt.Errorf("%w: %s", ErrConfigExists, d.ConfigPath())
	}

	if err := os.WriteFile(d.ConfigPath(), configJSON, 0o600); err != nil {
		return fmt.Errorf("ultimadir: write config: %w", err)
	}

	return nil
}
