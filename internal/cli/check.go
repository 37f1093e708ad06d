package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the declared version is releasable",
	Long: `Verify the declared version without building anything.

The check fails when the version is malformed, the worktree is dirty, the
release branch is not checked out, the tag already exists locally or on the
remote, or the registry already lists the version.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	result, err := engine.Check(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(result)
	}

	PrintSuccess(fmt.Sprintf("%s %s is releasable (tag %s, branch %s)",
		result.Name, result.Version, result.Tag, result.Branch))
	return nil
}
