package pipeline

import (
	"context"
	"fmt"

	"github.com/relkit/relkit/internal/manifest"
	"github.com/relkit/relkit/internal/semver"
)

// verify is the precondition gate: no artifact is built, let alone
// published, until every check passes.
func (e *Engine) verify(ctx context.Context) (*CheckResult, error) {
	m, err := manifest.Load(e.fs, e.root, e.cfg.Manifest)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVersion, err)
	}

	version, err := semver.Parse(m.Project.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVersion, err)
	}

	if e.cfg.Git.Branch != "" {
		branch, err := e.git.CurrentBranch(e.root)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrVersion, err)
		}
		if branch != e.cfg.Git.Branch {
			return nil, fmt.Errorf("%w: on branch %q, releases are cut from %q", ErrVersion, branch, e.cfg.Git.Branch)
		}
	}

	clean, err := e.git.IsClean(e.root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVersion, err)
	}
	if !clean {
		return nil, fmt.Errorf("%w: worktree has uncommitted changes", ErrVersion)
	}

	released, err := e.receipts.Exists(m.Project.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVersion, err)
	}
	if released {
		return nil, fmt.Errorf("%w: version %s already has a release receipt", ErrVersion, m.Project.Version)
	}

	tag := e.cfg.Tag(m.Project.Version)

	exists, err := e.git.TagExists(e.root, tag)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVersion, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: tag %s already exists", ErrVersion, tag)
	}

	exists, err = e.git.RemoteTagExists(ctx, e.root, e.cfg.Git.Remote, tag)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVersion, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: tag %s already exists on %s", ErrVersion, tag, e.cfg.Git.Remote)
	}

	published, err := e.registry.Published(ctx, m.Project.Name, m.Project.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVersion, err)
	}
	if published {
		return nil, fmt.Errorf("%w: version %s is already published", ErrVersion, m.Project.Version)
	}

	latest, err := e.receipts.Latest()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVersion, err)
	}
	if latest != nil {
		last, err := semver.Parse(latest.Version)
		if err == nil && semver.Compare(version, last) <= 0 {
			return nil, fmt.Errorf("%w: version %s does not increase on last release %s", ErrVersion, m.Project.Version, latest.Version)
		}
	}

	branch := ""
	if b, err := e.git.CurrentBranch(e.root); err == nil {
		branch = b
	}

	e.logger.Debug("version gate passed", "name", m.Project.Name, "version", m.Project.Version, "tag", tag)

	return &CheckResult{
		Name:    m.Project.Name,
		Version: m.Project.Version,
		Tag:     tag,
		Branch:  branch,
	}, nil
}
