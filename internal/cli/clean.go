package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the transient build directories",
	Long: `Remove the workspace directories left over from previous builds.

Cleaning is idempotent: directories that are already gone are skipped.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	result, err := engine.Clean()
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(result)
	}

	if len(result.Removed) == 0 {
		PrintInfo("Workspace already clean")
		return nil
	}

	PrintSuccess(fmt.Sprintf("Removed %v", result.Removed))
	return nil
}
