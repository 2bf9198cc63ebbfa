// Package registry discovers the models a daemon can serve by scanning a
// directory: single-file weights and bundle directories both count.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"inferd/internal/common/fsutil"
	"inferd/pkg/types"
)

// LoadDir scans one level of dir and builds the model registry.
// Files ending in .gguf become "gguf" models; subdirectories containing a
// recognized config file become "bundle" models. The ID is the file or
// directory name; Path is absolute. Results are sorted by ID.
func LoadDir(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var models []types.Model
	for _, e := range entries {
		name := e.Name()
		p := filepath.Join(abs, name)
		switch {
		case e.IsDir():
			if fsutil.BundleConfigPath(p) == "" {
				continue
			}
			models = append(models, types.Model{ID: name, Name: name, Path: p, Kind: types.ModelKindBundle})
		case strings.HasSuffix(strings.ToLower(name), ".gguf"):
			models = append(models, types.Model{ID: name, Name: name, Path: p, Kind: types.ModelKindGGUF})
		}
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

// Find returns the model with the given id.
func Find(models []types.Model, id string) (types.Model, bool) {
	for _, m := range models {
		if m.ID == id {
			return m, true
		}
	}
	return types.Model{}, false
}
