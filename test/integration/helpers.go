// Package integration exercises the release pipeline end to end: real
// filesystem and receipt store under a temp directory, fake git, registry,
// and toolchain.
package integration

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/relkit/relkit/internal/clock"
	"github.com/relkit/relkit/internal/config"
	"github.com/relkit/relkit/internal/fsops"
	"github.com/relkit/relkit/internal/gitx"
	"github.com/relkit/relkit/internal/hash"
	"github.com/relkit/relkit/internal/pipeline"
	"github.com/relkit/relkit/internal/receipt"
	"github.com/relkit/relkit/internal/registry"
	"github.com/relkit/relkit/internal/toolchain"
)

// project is one fake project under release, with the collaborators shared
// across engine instances so state survives "runs".
type project struct {
	root     string
	cfg      *config.Config
	git      *gitx.FakeGit
	builder  *toolchain.FakeBuilder
	registry *registry.FakeRegistry
}

// newProject lays out a project with the given declared version in a temp
// directory, including artifact files on disk for the fake builder.
func newProject(t *testing.T, version string) *project {
	t.Helper()

	root := t.TempDir()

	writeManifest(t, root, version)

	// Stale directories for the clean step to remove.
	for _, dir := range []string{"build", "dist"} {
		if err := os.MkdirAll(filepath.Join(root, dir, "stale"), 0755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	// Artifact files the fake builder claims to produce.
	artifactDir := filepath.Join(root, "out")
	if err := os.MkdirAll(artifactDir, 0755); err != nil {
		t.Fatalf("failed to create artifact dir: %v", err)
	}
	var artifacts []toolchain.Artifact
	for _, name := range []string{"demo-" + version + ".tar.gz", "demo-" + version + "-py3-none-any.whl"} {
		path := filepath.Join(artifactDir, name)
		if err := os.WriteFile(path, []byte("artifact "+name), 0644); err != nil {
			t.Fatalf("failed to write artifact: %v", err)
		}
		artifacts = append(artifacts, toolchain.Artifact{Name: name, Path: path})
	}

	cfg := config.Default()
	cfg.Registry.IndexURL = ""
	cfg.Build.IsolationEnv = "RELKIT_INTEGRATION_ISOLATED"
	cfg.Git.TagPrefix = "v"
	t.Setenv("RELKIT_INTEGRATION_ISOLATED", "")

	return &project{
		root:     root,
		cfg:      cfg,
		git:      gitx.NewFakeGit(root, "main"),
		builder:  toolchain.NewFakeBuilder(artifacts...),
		registry: registry.NewFakeRegistry(),
	}
}

// writeManifest writes or rewrites the project manifest.
func writeManifest(t *testing.T, root, version string) {
	t.Helper()
	data := []byte("[project]\nname = \"demo\"\nversion = \"" + version + "\"\n")
	if err := os.WriteFile(filepath.Join(root, "project.toml"), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
}

// engine wires a fresh pipeline engine, the way a new CLI invocation would,
// over the project's persistent state.
func (p *project) engine(t *testing.T) *pipeline.Engine {
	t.Helper()

	fs := fsops.NewRealFS()
	receipts := receipt.NewFileStore(fs, config.PathsFor(p.root).Releases)

	return pipeline.New(
		p.cfg, p.root,
		p.git, p.builder, p.registry, receipts,
		fs, hash.NewSHA256Hasher(),
		clock.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)),
		log.New(io.Discard),
	)
}
