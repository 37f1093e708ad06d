package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relkit/relkit/internal/pipeline"
)

var repairCmd = &cobra.Command{
	Use:   "repair [version]",
	Short: "Retry the tag push of a tag-pending release",
	Long: `Retry the tag push of a release whose artifacts were uploaded but whose
tag never reached the remote.

Without arguments the most recent tag-pending release is repaired. The
retry is idempotent: pushing a tag the remote already has is a no-op.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRepair,
}

func runRepair(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	req := pipeline.RepairRequest{}
	if len(args) == 1 {
		req.Version = args[0]
	}

	result, err := engine.Repair(cmd.Context(), req)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(result)
	}

	PrintSuccess(fmt.Sprintf("Pushed tag %s; release %s is complete", result.Tag, result.Version))
	return nil
}
