package pipeline

import "errors"

var (
	// ErrFilesystem indicates the clean step could not remove a workspace
	// directory.
	ErrFilesystem = errors.New("workspace clean failed")

	// ErrVersion indicates the version gate failed: the declared version is
	// malformed, already released, or inconsistent with tag state.
	ErrVersion = errors.New("version check failed")

	// ErrBuild indicates the packaging toolchain is missing or the build
	// failed.
	ErrBuild = errors.New("build failed")

	// ErrPublish indicates the artifact upload failed. Nothing was
	// published.
	ErrPublish = errors.New("publish failed")

	// ErrTagPush indicates the tag could not be created or pushed. When the
	// upload already succeeded the release is left in the tag-pending state.
	ErrTagPush = errors.New("tag push failed")

	// ErrNothingToRepair indicates repair found no release with a pending
	// tag.
	ErrNothingToRepair = errors.New("no release with a pending tag")
)
