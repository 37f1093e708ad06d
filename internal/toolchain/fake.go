package toolchain

import "context"

// FakeBuilder implements Builder with predetermined outputs for testing.
type FakeBuilder struct {
	// Present controls Available.
	Present bool

	// Artifacts is the artifact set returned by Build and Collect.
	Artifacts []Artifact

	// Installs and Builds count the respective invocations.
	Installs int
	Builds   int

	// Injectable failures.
	InstallErr error
	BuildErr   error
}

// NewFakeBuilder creates an available FakeBuilder producing the given
// artifact set.
func NewFakeBuilder(artifacts ...Artifact) *FakeBuilder {
	return &FakeBuilder{Present: true, Artifacts: artifacts}
}

// Available reports the predetermined presence.
func (b *FakeBuilder) Available() bool {
	return b.Present
}

// InstallDeps counts the call and returns the injected error, if any.
func (b *FakeBuilder) InstallDeps(ctx context.Context) error {
	b.Installs++
	return b.InstallErr
}

// Build counts the call and returns the predetermined artifact set.
func (b *FakeBuilder) Build(ctx context.Context) ([]Artifact, error) {
	b.Builds++
	if b.BuildErr != nil {
		return nil, b.BuildErr
	}
	return b.Artifacts, nil
}

// Collect returns the predetermined artifact set.
func (b *FakeBuilder) Collect() ([]Artifact, error) {
	return b.Artifacts, nil
}
