package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upload built artifacts and push the version tag",
	Long: `Upload the artifact set already present in the dist directory and push
the version tag, gated by the version check.

The tag is created locally before the upload so a failed upload leaves no
trace. An upload that succeeds before a failing tag push is recorded as
tag-pending; run 'relkit repair' to retry the push.`,
	Args: cobra.NoArgs,
	RunE: runPublish,
}

func runPublish(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	result, err := engine.Publish(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(result)
	}

	PrintSuccess(fmt.Sprintf("Published %s (tag %s)", result.Version, result.Tag))
	return nil
}
