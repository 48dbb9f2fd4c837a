// Package ultimadir encapsulates path knowledge for the ~/.ultima directory,
// which holds the configuration file, an optional .env file and logs.
package ultimadir

import (
	"os"
	"path/filepath"
)

// DefaultName is the directory name under the user's home.
const DefaultName = ".ultima"

// Dir is a value object that resolves paths within an ultima directory.
type Dir struct {
	root string
}

// New creates a Dir rooted at root, made absolute. No I/O is performed.
func New(root string) Dir {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}

	return Dir{root: abs}
}

// Default returns the Dir at ~/.ultima, or ./.ultima when the home directory
// cannot be resolved.
func Default() Dir {
	home, err := os.UserHomeDir()
	if err != nil {
		return New(DefaultName)
	}

	return New(filepath.Join(home, DefaultName))
}

// Root returns the absolute directory path.
func (d Dir) Root() string { return d.root }

// ConfigPath returns the path to the JSON config file.
func (d Dir) ConfigPath() string { return filepath.Join(d.root, "config.json") }

// EnvPath returns the path to the optional .env file.
func (d Dir) EnvPath() string { return filepath.Join(d.root, ".env") }

// LogsDir returns the path to the logs directory.
func (d Dir) LogsDir() string { return filepath.Join(d.root, "logs") }

// LogPath returns the path to the main log file.
func (d Dir) LogPath() string { return filepath.Join(d.LogsDir(), "ultima.log") }

// Exists reports whether the root directory exists.
func (d Dir) Exists() bool {
	info, err := os.Stat(d.root)

	return err == nil && info.IsDir()
}

// HasConfig reports whether the config file exists.
func (d Dir) HasConfig() bool {
	_, err := os.Stat(d.ConfigPath())

	return err == nil
}
