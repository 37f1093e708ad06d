package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the artifact set",
	Long: `Invoke the packaging toolchain to build the artifact set into the dist
directory.

Inside an isolated dependency environment (detected via the configured
environment signal) the toolchain dependencies are installed first;
outside one the toolchain is assumed present.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	result, err := engine.Build(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(result)
	}

	if result.Installed {
		PrintInfo("Installed toolchain dependencies (isolated environment)")
	}
	for _, a := range result.Artifacts {
		PrintDim(a.Name)
	}
	PrintSuccess(fmt.Sprintf("Built %d artifacts", len(result.Artifacts)))
	return nil
}
