// Package config manages relkit configuration and filesystem paths.
//
// Configuration lives in an optional .relkit.yaml at the repository root.
// Every field has a default, so a repository with no config file releases
// with the stock Python packaging toolchain the way the defaults describe.
// Release receipts live under the repo-local .relkit/ data directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/relkit/relkit/internal/fsops"
)

// FileName is the name of the config file at the repository root.
const FileName = ".relkit.yaml"

// Config is the full relkit configuration.
type Config struct {
	// Manifest is the path to the project manifest, relative to the repo root.
	Manifest string `yaml:"manifest"`

	// Workspace configures the transient build directories.
	Workspace WorkspaceConfig `yaml:"workspace"`

	// Build configures the packaging toolchain invocation.
	Build BuildConfig `yaml:"build"`

	// Registry configures the package registry collaborators.
	Registry RegistryConfig `yaml:"registry"`

	// Git configures tagging and the release branch gate.
	Git GitConfig `yaml:"git"`
}

// WorkspaceConfig describes the transient directories the clean step removes
// and the dist directory the build step populates.
type WorkspaceConfig struct {
	// CleanDirs are the directories removed by the clean step, relative to
	// the repo root.
	CleanDirs []string `yaml:"clean_dirs"`

	// DistDir is where built artifacts land, relative to the repo root.
	DistDir string `yaml:"dist_dir"`
}

// BuildConfig describes how to invoke the packaging toolchain.
type BuildConfig struct {
	// Command builds the artifact set into the dist directory.
	Command string `yaml:"command"`

	// InstallCommand installs the toolchain dependencies. It runs before the
	// build only when the isolation signal is set.
	InstallCommand string `yaml:"install_command"`

	// IsolationEnv is the environment variable signalling an isolated
	// dependency environment.
	IsolationEnv string `yaml:"isolation_env"`
}

// RegistryConfig describes the package registry collaborators.
type RegistryConfig struct {
	// IndexURL is the base URL of the registry's JSON index, used to check
	// whether a version is already published. Empty disables the check.
	IndexURL string `yaml:"index_url"`

	// UploadCommand uploads artifacts; the artifact paths are appended.
	UploadCommand string `yaml:"upload_command"`
}

// GitConfig describes tagging and the release branch gate.
type GitConfig struct {
	// Remote is the git remote tags are pushed to.
	Remote string `yaml:"remote"`

	// Branch is the branch releases must be cut from. Empty disables the
	// branch gate.
	Branch string `yaml:"branch"`

	// TagPrefix is prepended to the version to form the tag name.
	TagPrefix string `yaml:"tag_prefix"`
}

// Default returns the configuration used when no .relkit.yaml exists.
func Default() *Config {
	return &Config{
		Manifest: "project.toml",
		Workspace: WorkspaceConfig{
			CleanDirs: []string{"build", "dist"},
			DistDir:   "dist",
		},
		Build: BuildConfig{
			Command:        "python -m build",
			InstallCommand: "pip install build twine",
			IsolationEnv:   "VIRTUAL_ENV",
		},
		Registry: RegistryConfig{
			IndexURL:      "https://pypi.org/pypi",
			UploadCommand: "twine upload",
		},
		Git: GitConfig{
			Remote: "origin",
			Branch: "main",
		},
	}
}

// Load reads the config file at the repo root, falling back to defaults for
// a missing file and for any field left unset.
func Load(fs fsops.FS, repoRoot string) (*Config, error) {
	path := filepath.Join(repoRoot, FileName)

	data, err := fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FileName, err)
	}

	return cfg, nil
}

// Save writes the config to the repo root.
func Save(fs fsops.FS, repoRoot string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(repoRoot, FileName)
	if err := fs.AtomicWrite(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", FileName, err)
	}

	return nil
}

func (c *Config) validate() error {
	if c.Manifest == "" {
		return fmt.Errorf("manifest path must not be empty")
	}
	if c.Workspace.DistDir == "" {
		return fmt.Errorf("workspace.dist_dir must not be empty")
	}
	if c.Build.Command == "" {
		return fmt.Errorf("build.command must not be empty")
	}
	if c.Registry.UploadCommand == "" {
		return fmt.Errorf("registry.upload_command must not be empty")
	}
	if c.Git.Remote == "" {
		return fmt.Errorf("git.remote must not be empty")
	}
	for _, dir := range c.Workspace.CleanDirs {
		if dir == "" || dir == "." || dir == ".." || filepath.IsAbs(dir) {
			return fmt.Errorf("workspace.clean_dirs entry %q must be a relative subdirectory", dir)
		}
	}
	return nil
}

// Tag returns the tag name for the given version.
func (c *Config) Tag(version string) string {
	return c.Git.TagPrefix + version
}
