// Package manifest reads the project metadata a release is cut from.
//
// The manifest is a TOML file with a [project] table carrying the package
// name and the declared version. The declared version is the single source
// of truth the verify step gates on; it is read once per pipeline run and
// never mutated.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/relkit/relkit/internal/fsops"
)

// ErrNotFound indicates the manifest file does not exist.
var ErrNotFound = errors.New("project manifest not found")

// Manifest is the parsed project manifest.
type Manifest struct {
	Project Project `toml:"project"`
}

// Project is the [project] table of the manifest.
type Project struct {
	// Name is the package name used for registry lookups.
	Name string `toml:"name"`

	// Version is the declared version token.
	Version string `toml:"version"`
}

// Load reads and validates the manifest at the given path, relative to the
// repo root.
func Load(fs fsops.FS, repoRoot, path string) (*Manifest, error) {
	full := filepath.Join(repoRoot, path)

	data, err := fs.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, full)
		}
		return nil, fmt.Errorf("failed to read manifest %s: %w", full, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", full, err)
	}

	if m.Project.Name == "" {
		return nil, fmt.Errorf("manifest %s: project.name is missing", full)
	}
	if m.Project.Version == "" {
		return nil, fmt.Errorf("manifest %s: project.version is missing", full)
	}

	return &m, nil
}
