package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// DBFileName is the SQLite database file inside a .contagion directory.
const DBFileName = "contagion.db"

// GlobalContagionPath returns the path to the global .contagion directory.
// On Unix: ~/.contagion
// On Windows: %USERPROFILE%\.contagion
func GlobalContagionPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".contagion"), nil
}

// LocalContagionPath returns the path to the local .contagion directory
// for the given project root.
func LocalContagionPath(projectRoot string) string {
	return filepath.Join(projectRoot, ".contagion")
}

// DefaultDBPath returns the database path used when none is configured.
func DefaultDBPath(projectRoot string) string {
	return filepath.Join(LocalContagionPath(projectRoot), DBFileName)
}

// EnsureGlobalContagionDir creates the global .contagion directory if it
// doesn't exist.
func EnsureGlobalContagionDir() error {
	globalPath, err := GlobalContagionPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(globalPath, 0755); err != nil {
		return fmt.Errorf("failed to create global .contagion directory: %w", err)
	}

	return nil
}
