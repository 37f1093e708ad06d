// Package pipeline orchestrates a release: clean the workspace, gate on the
// declared version, build the artifact set, upload it, and push the tag.
//
// The pipeline is an ordered list of fallible steps executed with
// short-circuit semantics: the first failure aborts everything after it,
// and there are no automatic retries. A release must never partially
// publish; the one unavoidable gap, an upload that succeeds before a tag
// push that fails, is recorded as a distinct receipt state and repaired
// explicitly.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/relkit/relkit/internal/clock"
	"github.com/relkit/relkit/internal/config"
	"github.com/relkit/relkit/internal/fsops"
	"github.com/relkit/relkit/internal/gitx"
	"github.com/relkit/relkit/internal/hash"
	"github.com/relkit/relkit/internal/receipt"
	"github.com/relkit/relkit/internal/registry"
	"github.com/relkit/relkit/internal/toolchain"
)

// Engine runs release operations against one repository.
// It is the main API surface called by the CLI.
type Engine struct {
	cfg      *config.Config
	root     string
	git      gitx.Git
	builder  toolchain.Builder
	registry registry.Registry
	receipts receipt.Store
	fs       fsops.FS
	hasher   hash.Hasher
	clock    clock.Clock
	logger   *log.Logger
}

// New creates an Engine for the repository at root with the given
// collaborators. A nil logger gets a default stderr logger.
func New(
	cfg *config.Config,
	root string,
	git gitx.Git,
	builder toolchain.Builder,
	reg registry.Registry,
	receipts receipt.Store,
	fs fsops.FS,
	hasher hash.Hasher,
	clk clock.Clock,
	logger *log.Logger,
) *Engine {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "relkit"})
		logger.SetLevel(log.WarnLevel)
	}
	return &Engine{
		cfg:      cfg,
		root:     root,
		git:      git,
		builder:  builder,
		registry: reg,
		receipts: receipts,
		fs:       fs,
		hasher:   hasher,
		clock:    clk,
		logger:   logger,
	}
}

// Release runs the full pipeline: clean, verify, build, publish and tag.
func (e *Engine) Release(ctx context.Context, req ReleaseRequest) (*ReleaseResult, error) {
	result := &ReleaseResult{DryRun: req.DryRun}
	var check *CheckResult

	plan := []step{
		{name: "clean", run: func(ctx context.Context) error {
			cleaned, err := e.clean()
			if err != nil {
				return err
			}
			result.Cleaned = cleaned.Removed
			return nil
		}},
		{name: "verify", run: func(ctx context.Context) error {
			c, err := e.verify(ctx)
			if err != nil {
				return err
			}
			check = c
			result.Name = c.Name
			result.Version = c.Version
			result.Tag = c.Tag
			return nil
		}},
		{name: "build", run: func(ctx context.Context) error {
			built, err := e.build(ctx)
			if err != nil {
				return err
			}
			result.Artifacts = built.Artifacts
			return nil
		}},
		{name: "publish", run: func(ctx context.Context) error {
			if req.DryRun {
				e.logger.Info("dry run: skipping upload and tag push", "version", check.Version)
				return nil
			}
			pub, err := e.publish(ctx, check, result.Artifacts)
			if pub != nil {
				result.Uploaded = pub.Uploaded
				result.TagPushed = pub.TagPushed
			}
			return err
		}},
	}

	if err := e.runPlan(ctx, plan); err != nil {
		return result, err
	}
	return result, nil
}

// Check runs only the version gate.
func (e *Engine) Check(ctx context.Context) (*CheckResult, error) {
	return e.verify(ctx)
}

// Clean runs only the workspace clean step.
func (e *Engine) Clean() (*CleanResult, error) {
	return e.clean()
}

// Build runs only the build step (with the dependency-install branch).
func (e *Engine) Build(ctx context.Context) (*BuildResult, error) {
	return e.build(ctx)
}

// Publish uploads the artifact set already present in the dist directory
// and pushes the tag, gated by the version check.
func (e *Engine) Publish(ctx context.Context) (*PublishResult, error) {
	check, err := e.verify(ctx)
	if err != nil {
		return nil, err
	}

	artifacts, err := e.builder.Collect()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPublish, err)
	}
	if len(artifacts) == 0 {
		return nil, fmt.Errorf("%w: no artifacts in %s, run a build first", ErrPublish, e.cfg.Workspace.DistDir)
	}

	return e.publish(ctx, check, artifacts)
}

// Status reports the recorded release history.
func (e *Engine) Status() (*StatusResult, error) {
	releases, err := e.receipts.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list release receipts: %w", err)
	}

	result := &StatusResult{Releases: releases}
	for _, r := range releases {
		if r.Pending() {
			result.Pending = append(result.Pending, r.Version)
		}
	}

	// Best effort: status stays usable when the remote is misconfigured.
	if url, err := e.git.RemoteURL(e.root, e.cfg.Git.Remote); err == nil {
		result.Remote = url
	}

	return result, nil
}
