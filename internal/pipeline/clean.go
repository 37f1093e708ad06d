package pipeline

import (
	"fmt"
	"path/filepath"
)

// clean removes the transient workspace directories. Removing a directory
// that does not exist is a no-op, so the step is idempotent.
func (e *Engine) clean() (*CleanResult, error) {
	result := &CleanResult{}

	for _, dir := range e.cfg.Workspace.CleanDirs {
		target := filepath.Join(e.root, dir)

		exists, err := e.fs.Exists(target)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFilesystem, err)
		}

		if err := e.fs.RemoveAll(target); err != nil {
			return nil, fmt.Errorf("%w: could not remove %s: %w", ErrFilesystem, target, err)
		}

		if exists {
			result.Removed = append(result.Removed, dir)
			e.logger.Debug("removed workspace directory", "dir", dir)
		}
	}

	return result, nil
}
