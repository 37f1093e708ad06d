package pipeline

import (
	"context"
	"fmt"

	"github.com/relkit/relkit/internal/toolchain"
)

// build invokes the packaging toolchain. In an isolated dependency
// environment the tool dependencies are installed first; outside one the
// toolchain is assumed present and a missing binary gets a remediation
// hint instead of an install attempt.
func (e *Engine) build(ctx context.Context) (*BuildResult, error) {
	result := &BuildResult{}

	isolated := toolchain.Isolated(e.cfg.Build.IsolationEnv)
	if isolated {
		e.logger.Debug("isolated environment detected, installing toolchain dependencies",
			"signal", e.cfg.Build.IsolationEnv)
		if err := e.builder.InstallDeps(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBuild, err)
		}
		result.Installed = true
	}

	if !e.builder.Available() {
		if isolated {
			return nil, fmt.Errorf("%w: packaging toolchain missing after dependency install", ErrBuild)
		}
		return nil, fmt.Errorf("%w: packaging toolchain not found; install it first (e.g. %s)",
			ErrBuild, e.cfg.Build.InstallCommand)
	}

	artifacts, err := e.builder.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}
	if len(artifacts) == 0 {
		return nil, fmt.Errorf("%w: build produced no artifacts in %s", ErrBuild, e.cfg.Workspace.DistDir)
	}

	result.Artifacts = artifacts
	e.logger.Debug("build finished", "artifacts", len(artifacts))
	return result, nil
}
