package cli

import (
	"fmt"
	"os"
	"path/filepath"

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

// newEngine discovers the repository from the working directory and wires
// a pipeline engine with real collaborators.
func newEngine() (*pipeline.Engine, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	git := gitx.NewRealGit()
	root, err := git.Discover(cwd)
	if err != nil {
		return nil, fmt.Errorf("not in a git repository: %w", err)
	}

	fs := fsops.NewRealFS()
	cfg, err := config.Load(fs, root)
	if err != nil {
		return nil, err
	}

	distDir := filepath.Join(root, cfg.Workspace.DistDir)
	builder := toolchain.NewCommandBuilder(
		fs, root, distDir,
		cfg.Build.Command, cfg.Build.InstallCommand,
		os.Stdout, os.Stderr,
	)

	reg := registry.NewClient(
		cfg.Registry.IndexURL, cfg.Registry.UploadCommand,
		root, os.Stdout, os.Stderr,
	)

	receipts := receipt.NewFileStore(fs, config.PathsFor(root).Releases)

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "relkit"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}

	return pipeline.New(
		cfg, root,
		git, builder, reg, receipts,
		fs, hash.NewSHA256Hasher(), clock.NewRealClock(),
		logger,
	), nil
}
