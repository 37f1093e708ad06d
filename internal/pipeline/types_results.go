package pipeline

import (
	"github.com/relkit/relkit/internal/receipt"
	"github.com/relkit/relkit/internal/toolchain"
)

// CheckResult represents the outcome of the version gate.
type CheckResult struct {
	// Name is the package name from the manifest.
	Name string `json:"name"`

	// Version is the declared version.
	Version string `json:"version"`

	// Tag is the tag the release would push.
	Tag string `json:"tag"`

	// Branch is the checked-out branch.
	Branch string `json:"branch"`
}

// CleanResult represents the outcome of the clean step.
type CleanResult struct {
	// Removed lists the directories that existed and were deleted.
	Removed []string `json:"removed"`
}

// BuildResult represents the outcome of the build step.
type BuildResult struct {
	// Artifacts is the produced artifact set, source archives first.
	Artifacts []toolchain.Artifact `json:"artifacts"`

	// Installed indicates the dependency-install branch ran.
	Installed bool `json:"installed"`
}

// PublishResult represents the outcome of the publish-and-tag step.
type PublishResult struct {
	// Version is the released version.
	Version string `json:"version"`

	// Tag is the tag name.
	Tag string `json:"tag"`

	// Uploaded indicates the artifact set reached the registry.
	Uploaded bool `json:"uploaded"`

	// TagPushed indicates the tag reached the remote.
	TagPushed bool `json:"tag_pushed"`

	// State is the receipt state written, if any.
	State string `json:"state,omitempty"`
}

// ReleaseResult represents the outcome of the full pipeline.
type ReleaseResult struct {
	// Name is the package name from the manifest.
	Name string `json:"name"`

	// Version is the released version.
	Version string `json:"version"`

	// Tag is the tag name.
	Tag string `json:"tag"`

	// Cleaned lists the workspace directories removed by the clean step.
	Cleaned []string `json:"cleaned"`

	// Artifacts is the built artifact set.
	Artifacts []toolchain.Artifact `json:"artifacts"`

	// Uploaded indicates the artifact set reached the registry.
	Uploaded bool `json:"uploaded"`

	// TagPushed indicates the tag reached the remote.
	TagPushed bool `json:"tag_pushed"`

	// DryRun indicates upload and tagging were skipped.
	DryRun bool `json:"dry_run"`
}

// RepairResult represents the outcome of a tag-push repair.
type RepairResult struct {
	// Version is the repaired release.
	Version string `json:"version"`

	// Tag is the tag that was pushed.
	Tag string `json:"tag"`
}

// StatusResult represents the recorded release history.
type StatusResult struct {
	// Remote is the URL tags are pushed to, when resolvable.
	Remote string `json:"remote,omitempty"`

	// Releases is every recorded receipt, oldest version first.
	Releases []*receipt.Receipt `json:"releases"`

	// Pending lists versions stuck in the tag-pending state.
	Pending []string `json:"pending"`
}
