package platform

import (
	"os"
	"path/filepath"
	"time"
)

// Clock abstracts wall-clock time so session boundaries can be tested
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// PathResolver supplies the locations of the application's files
type PathResolver interface {
	DataDir() (string, error)
}

const (
	appDirName       = "Zeitig"
	DatabaseFileName = "zeitig.db"
	SnapshotFileName = "snapshot.toml"
	ConfigFileName   = "zeitig"
)

// DefaultPaths resolves directories using the operating system conventions
type DefaultPaths struct{}

// NewPathResolver returns the resolver for the current operating system
func NewPathResolver() PathResolver {
	return DefaultPaths{}
}

// DataDir returns the per-user data directory, creating it when missing
func (DefaultPaths) DataDir() (string, error) {
	base, err := dataHome()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, appDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// FixedPaths always resolves to Dir. Used for development and tests.
type FixedPaths struct {
	Dir string
}

func (p FixedPaths) DataDir() (string, error) {
	return p.Dir, nil
}

// DatabasePath returns the database file location inside the data directory
func DatabasePath(r PathResolver) (string, error) {
	dir, err := r.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DatabaseFileName), nil
}
