package gitx

import (
	"context"
	"fmt"
)

// FakeGit implements Git with predetermined state for testing.
type FakeGit struct {
	Root       string
	Branch     string
	Clean      bool
	Tags       map[string]bool
	RemoteTags map[string]bool
	URL        string

	// CreatedTags and PushedTags record mutations in order.
	CreatedTags []string
	PushedTags  []string
	DeletedTags []string

	// Injectable failures.
	DiscoverErr  error
	CreateTagErr error
	PushTagErr   error
}

// NewFakeGit creates a FakeGit for a clean repository on the given branch.
func NewFakeGit(root, branch string) *FakeGit {
	return &FakeGit{
		Root:       root,
		Branch:     branch,
		Clean:      true,
		Tags:       make(map[string]bool),
		RemoteTags: make(map[string]bool),
		URL:        "git@example.com:demo/demo.git",
	}
}

// Discover returns the predetermined root.
func (g *FakeGit) Discover(cwd string) (string, error) {
	if g.DiscoverErr != nil {
		return "", g.DiscoverErr
	}
	return g.Root, nil
}

// CurrentBranch returns the predetermined branch.
func (g *FakeGit) CurrentBranch(root string) (string, error) {
	return g.Branch, nil
}

// IsClean returns the predetermined cleanliness.
func (g *FakeGit) IsClean(root string) (bool, error) {
	return g.Clean, nil
}

// TagExists reports whether the tag was seeded or created.
func (g *FakeGit) TagExists(root, tag string) (bool, error) {
	return g.Tags[tag], nil
}

// RemoteTagExists reports whether the tag was seeded on the fake remote.
func (g *FakeGit) RemoteTagExists(ctx context.Context, root, remote, tag string) (bool, error) {
	return g.RemoteTags[tag], nil
}

// CreateTag records the tag locally.
func (g *FakeGit) CreateTag(root, tag, message string) error {
	if g.CreateTagErr != nil {
		return g.CreateTagErr
	}
	if g.Tags[tag] {
		return fmt.Errorf("tag %s already exists", tag)
	}
	g.Tags[tag] = true
	g.CreatedTags = append(g.CreatedTags, tag)
	return nil
}

// DeleteTag removes the local tag.
func (g *FakeGit) DeleteTag(root, tag string) error {
	if !g.Tags[tag] {
		return fmt.Errorf("tag %s not found", tag)
	}
	delete(g.Tags, tag)
	g.DeletedTags = append(g.DeletedTags, tag)
	return nil
}

// PushTag records the push and mirrors the tag to the fake remote.
func (g *FakeGit) PushTag(ctx context.Context, root, remote, tag string) error {
	if g.PushTagErr != nil {
		return g.PushTagErr
	}
	if !g.Tags[tag] {
		return fmt.Errorf("tag %s not found locally", tag)
	}
	g.RemoteTags[tag] = true
	g.PushedTags = append(g.PushedTags, tag)
	return nil
}

// RemoteURL returns the predetermined URL.
func (g *FakeGit) RemoteURL(root, remote string) (string, error) {
	return g.URL, nil
}
