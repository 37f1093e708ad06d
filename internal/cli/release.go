package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relkit/relkit/internal/pipeline"
)

var releaseDryRun bool

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Run the full release pipeline",
	Long: `Run the full release pipeline: clean, verify, build, publish, tag.

The pipeline aborts on the first failing step. The version gate runs before
anything is built: a version that is malformed, already tagged, or already
on the registry stops the release with nothing published.

If the upload succeeds but the tag push fails, the release is recorded as
tag-pending; run 'relkit repair' once the remote is reachable again.

Examples:
  # Cut a release
  relkit release

  # Build everything but skip upload and tagging
  relkit release --dry-run`,
	Args: cobra.NoArgs,
	RunE: runRelease,
}

func init() {
	releaseCmd.Flags().BoolVar(&releaseDryRun, "dry-run", false, "Run clean, verify, and build, but skip upload and tagging")
}

func runRelease(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	result, err := engine.Release(cmd.Context(), pipeline.ReleaseRequest{DryRun: releaseDryRun})
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(result)
	}

	if len(result.Cleaned) > 0 {
		PrintInfo(fmt.Sprintf("Cleaned: %v", result.Cleaned))
	}
	for _, a := range result.Artifacts {
		PrintDim(a.Name)
	}

	if result.DryRun {
		PrintWarning(fmt.Sprintf("Dry run: %s %s built but not published", result.Name, result.Version))
		return nil
	}

	PrintSuccess(fmt.Sprintf("Released %s %s (tag %s)", result.Name, result.Version, result.Tag))
	return nil
}
