package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/models/llm
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// PathExists checks if the given path exists.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// Bundle config filenames recognized inside a model directory, in lookup order.
var bundleConfigNames = []string{"config.json", "mlc-chat-config.json"}

// BundleConfigPath returns the path of the config file inside a model
// bundle directory, or "" if none of the recognized names exists.
func BundleConfigPath(dir string) string {
	for _, name := range bundleConfigNames {
		p := filepath.Join(dir, name)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

// CheckModelPath validates that path points at a usable model resource:
// either a regular file, or a bundle directory containing a config file.
func CheckModelPath(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("model path %s: %w", path, err)
	}
	if !fi.IsDir() {
		return nil
	}
	if BundleConfigPath(path) == "" {
		return fmt.Errorf("model bundle %s: no config file found", path)
	}
	return nil
}
