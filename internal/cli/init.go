package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/relkit/relkit/internal/config"
	"github.com/relkit/relkit/internal/fsops"
	"github.com/relkit/relkit/internal/gitx"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .relkit.yaml and data directory",
	Long: `Write a default .relkit.yaml to the repository root and create the
.relkit data directory where release receipts are recorded.

The defaults describe the stock Python packaging toolchain; edit the file
to point at a different manifest, build command, or registry.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false,
		"Overwrite an existing .relkit.yaml")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	git := gitx.NewRealGit()
	root, err := git.Discover(cwd)
	if err != nil {
		return fmt.Errorf("not in a git repository: %w\nrelkit init must be run inside a git repository", err)
	}

	fs := fsops.NewRealFS()

	cfgPath := filepath.Join(root, config.FileName)
	exists, err := fs.Exists(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to check for existing config: %w", err)
	}
	if exists && !initForce {
		return fmt.Errorf("%s already exists at %s\nUse --force to overwrite", config.FileName, cfgPath)
	}

	if err := config.Save(fs, root, config.Default()); err != nil {
		return err
	}

	paths := config.PathsFor(root)
	if err := paths.EnsureDirectories(fs); err != nil {
		return err
	}

	// Keep receipts out of the project's git history.
	gitignorePath := filepath.Join(paths.Root, ".gitignore")
	if err := fs.AtomicWrite(gitignorePath, []byte("# relkit state (local-only)\n*\n"), 0644); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}

	PrintSuccess(fmt.Sprintf("Initialized %s at %s", config.FileName, cfgPath))
	fmt.Println()
	PrintInfo("Next steps:")
	fmt.Println("  1. Edit .relkit.yaml for your toolchain and registry")
	fmt.Println("  2. Gate a version:     relkit check")
	fmt.Println("  3. Cut a release:      relkit release")

	return nil
}
