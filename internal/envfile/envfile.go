// Package envfile loads provider credentials from a .env file.
package envfile

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Find searches for a .env file starting from dir and walking up the directory tree.
// It returns "" when none is found.
func Find(dir string) string {
	for {
		envPath := filepath.Join(dir, ".env")
		if info, err := os.Stat(envPath); err == nil && !info.IsDir() {
			return envPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root, stop
			return ""
		}
		dir = parent
	}
}

// Load loads the first .env file found from the current directory upward.
// Variables already set in the process environment win. If no .env file is found,
// it silently continues (using system env vars) and returns "".
//
// This lets the CLI and the examples run from any directory in the workspace.
func Load() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", nil
	}
	path := Find(dir)
	if path == "" {
		return "", nil
	}
	return path, godotenv.Load(path)
}
