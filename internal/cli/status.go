package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recorded releases and any pending tags",
	Long: `Show every recorded release and flag releases stuck in the tag-pending
state (artifacts uploaded, tag not pushed).`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	result, err := engine.Status()
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(result)
	}

	if result.Remote != "" {
		PrintDim(result.Remote)
	}

	if len(result.Releases) == 0 {
		PrintInfo("No releases recorded")
		return nil
	}

	for _, r := range result.Releases {
		line := fmt.Sprintf("%-12s %s  %s", r.Version, r.PublishedAt.Format("2006-01-02 15:04"), r.State)
		if r.Pending() {
			PrintWarning(line)
		} else {
			fmt.Printf("  %s\n", line)
		}
	}

	if len(result.Pending) > 0 {
		fmt.Println()
		PrintWarning(fmt.Sprintf("%d release(s) have a pending tag; run 'relkit repair'", len(result.Pending)))
	}

	return nil
}
