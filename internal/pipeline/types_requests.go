package pipeline

// ReleaseRequest represents a request to run the full release pipeline.
type ReleaseRequest struct {
	// DryRun runs clean, verify, and build but skips upload and tagging.
	DryRun bool
}

// RepairRequest represents a request to retry the tag push of a release
// left in the tag-pending state.
type RepairRequest struct {
	// Version selects the release to repair. Empty repairs the most recent
	// pending release.
	Version string
}
