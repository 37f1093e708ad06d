// Package toolchain invokes the packaging toolchain that produces the
// artifact set.
//
// The toolchain is an external black box driven by configured command
// strings. Command strings are split with shell word rules (quoting works
// the way it does in a shell), then run directly without a shell. When the
// isolation signal is set, the configured install command runs before the
// build so the isolated environment carries its own tool dependencies.
package toolchain

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"mvdan.cc/sh/v3/shell"

	"github.com/relkit/relkit/internal/fsops"
)

// Artifact is one build output in the artifact set.
type Artifact struct {
	// Name is the file name of the artifact.
	Name string

	// Path is the absolute path of the artifact.
	Path string
}

// Builder provides an abstraction for the packaging toolchain.
type Builder interface {
	// Available reports whether the build tool binary can be invoked.
	Available() bool

	// InstallDeps runs the configured install command.
	InstallDeps(ctx context.Context) error

	// Build runs the configured build command and returns the artifact set
	// collected from the dist directory, source archives first.
	Build(ctx context.Context) ([]Artifact, error)

	// Collect returns the artifact set currently present in the dist
	// directory without building.
	Collect() ([]Artifact, error)
}

// SplitCommand splits a configured command string into words using shell
// quoting rules.
func SplitCommand(command string) ([]string, error) {
	words, err := shell.Fields(command, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command %q: %w", command, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("command %q is empty", command)
	}
	return words, nil
}

// Isolated reports whether the isolated-environment signal is set. The
// signal is truthy when the variable is non-empty and not "0", "false", or
// "no".
func Isolated(envName string) bool {
	return truthy(os.Getenv(envName))
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false", "no":
		return false
	}
	return true
}

// CommandBuilder implements Builder by running configured commands.
type CommandBuilder struct {
	fs             fsops.FS
	workDir        string
	distDir        string
	buildCommand   string
	installCommand string
	stdout         io.Writer
	stderr         io.Writer
}

// NewCommandBuilder creates a CommandBuilder. workDir is the repo root and
// distDir the absolute path artifacts are collected from. Tool output is
// streamed to stdout/stderr.
func NewCommandBuilder(fs fsops.FS, workDir, distDir, buildCommand, installCommand string, stdout, stderr io.Writer) *CommandBuilder {
	return &CommandBuilder{
		fs:             fs,
		workDir:        workDir,
		distDir:        distDir,
		buildCommand:   buildCommand,
		installCommand: installCommand,
		stdout:         stdout,
		stderr:         stderr,
	}
}

// Available reports whether the first word of the build command resolves to
// an executable.
func (b *CommandBuilder) Available() bool {
	words, err := SplitCommand(b.buildCommand)
	if err != nil {
		return false
	}
	_, err = exec.LookPath(words[0])
	return err == nil
}

// InstallDeps runs the configured install command.
func (b *CommandBuilder) InstallDeps(ctx context.Context) error {
	if b.installCommand == "" {
		return nil
	}
	if err := b.run(ctx, b.installCommand); err != nil {
		return fmt.Errorf("failed to install toolchain dependencies: %w", err)
	}
	return nil
}

// Build runs the build command and collects the artifact set.
func (b *CommandBuilder) Build(ctx context.Context) ([]Artifact, error) {
	if err := b.run(ctx, b.buildCommand); err != nil {
		return nil, err
	}
	return b.Collect()
}

// Collect returns the regular files in the dist directory as the artifact
// set, source archives first.
func (b *CommandBuilder) Collect() ([]Artifact, error) {
	matches, err := b.fs.Glob(filepath.Join(b.distDir, "*"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan dist directory: %w", err)
	}

	var artifacts []Artifact
	for _, m := range matches {
		info, err := b.fs.Stat(m)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", m, err)
		}
		if info.IsDir() {
			continue
		}
		artifacts = append(artifacts, Artifact{Name: filepath.Base(m), Path: m})
	}

	SortArtifacts(artifacts)
	return artifacts, nil
}

// run splits and executes one configured command in the work directory.
func (b *CommandBuilder) run(ctx context.Context, command string) error {
	words, err := SplitCommand(command)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, words[0], words[1:]...)
	cmd.Dir = b.workDir
	cmd.Stdout = b.stdout
	cmd.Stderr = b.stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", words[0], err)
	}
	return nil
}

// SortArtifacts orders an artifact set: source archives first, then
// packages, alphabetical within each group.
func SortArtifacts(artifacts []Artifact) {
	sort.SliceStable(artifacts, func(i, j int) bool {
		si, sj := isSourceArchive(artifacts[i].Name), isSourceArchive(artifacts[j].Name)
		if si != sj {
			return si
		}
		return artifacts[i].Name < artifacts[j].Name
	})
}

func isSourceArchive(name string) bool {
	return strings.HasSuffix(name, ".tar.gz") ||
		strings.HasSuffix(name, ".tar.bz2") ||
		strings.HasSuffix(name, ".zip")
}
