// Package data provides convenience routines to access files in the upstamp
// home directory.
package data

import (
	"os"
	"path/filepath"
	"sync"
)

const homeDir = ".upstamp"

var (
	mu sync.RWMutex
	// basePath is the home directory, see SetBase.
	basePath = DefaultHome()
)

// DefaultHome returns ~/.upstamp, or ./.upstamp when the user has no home
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return homeDir
	}

	return filepath.Join(home, homeDir)
}

// SetBase moves the home directory, an empty dir restores the default
func SetBase(dir string) {
	mu.Lock()
	defer mu.Unlock()

	if dir == "" {
		dir = DefaultHome()
	}
	basePath = dir
}

func Base() string {
	mu.RLock()
	defer mu.RUnlock()

	return basePath
}

// Path returns the absolute path the given relative file or directory path,
// If rel is already absolute, it is returned unmodified.
func Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}

	return filepath.Join(Base(), rel)
}

// Ensure creates the home directory if it is missing
func Ensure() error {
	return os.MkdirAll(Base(), 0o700)
}
