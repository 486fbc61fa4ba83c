package utils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// FindProjectRoot walks up from the working directory to the first directory
// holding a go.mod or an aiwriter.yaml.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		for _, marker := range []string{"go.mod", "aiwriter.yaml"} {
			if FileExists(filepath.Join(dir, marker)) {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// LoadEnv loads .env from the working directory and then from the project
// root. Variables already set in the environment win. Missing files are not
// an error.
func LoadEnv() error {
	paths := []string{".env"}
	if root, err := FindProjectRoot(); err == nil {
		paths = append(paths, filepath.Join(root, ".env"))
	}
	seen := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true
		if err := godotenv.Load(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
