package config

import (
	"fmt"
	"path/filepath"

	"github.com/relkit/relkit/internal/fsops"
)

// DataDirName is the repo-local directory holding relkit state.
const DataDirName = ".relkit"

// Paths contains the repo-local filesystem paths used by relkit.
type Paths struct {
	// Root is the base directory for relkit data (<repo>/.relkit).
	Root string

	// Releases is the directory containing release receipts.
	Releases string
}

// PathsFor returns the relkit data paths for a repository root.
func PathsFor(repoRoot string) *Paths {
	root := filepath.Join(repoRoot, DataDirName)
	return &Paths{
		Root:     root,
		Releases: filepath.Join(root, "releases"),
	}
}

// EnsureDirectories creates the data directories if they don't exist.
func (p *Paths) EnsureDirectories(fs fsops.FS) error {
	for _, dir := range []string{p.Root, p.Releases} {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
