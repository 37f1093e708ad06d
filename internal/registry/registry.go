// Package registry talks to the package registry: an existence check
// against the registry's JSON index, and artifact upload through the
// configured uploader command.
//
// Both collaborators are external black boxes. The index check is a plain
// HTTP GET so the verify step can gate without the uploader installed; the
// upload itself is delegated to the configured command with the artifact
// paths appended.
package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"github.com/relkit/relkit/internal/toolchain"
)

// Registry provides an abstraction for the package registry.
type Registry interface {
	// Published reports whether the registry already lists the given
	// version of the package.
	Published(ctx context.Context, name, version string) (bool, error)

	// Upload uploads the artifact set to the registry.
	Upload(ctx context.Context, artifacts []toolchain.Artifact) error
}

// Client implements Registry against a JSON index and an uploader command.
type Client struct {
	httpClient    *http.Client
	indexURL      string
	uploadCommand string
	workDir       string
	stdout        io.Writer
	stderr        io.Writer
}

// NewClient creates a registry Client. An empty indexURL disables the
// Published check (it reports false).
func NewClient(indexURL, uploadCommand, workDir string, stdout, stderr io.Writer) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		indexURL:      strings.TrimRight(indexURL, "/"),
		uploadCommand: uploadCommand,
		workDir:       workDir,
		stdout:        stdout,
		stderr:        stderr,
	}
}

// Published queries the JSON index for the exact version. A 404 means the
// version is unpublished; any other non-200 status is an error.
func (c *Client) Published(ctx context.Context, name, version string) (bool, error) {
	if c.indexURL == "" {
		return false, nil
	}

	// The name comes from the project manifest; escape it so it cannot
	// smuggle path segments into the request.
	target := fmt.Sprintf("%s/%s/%s/json", c.indexURL, url.PathEscape(name), url.PathEscape(version))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build index request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to query registry index: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("registry index returned %s for %s %s", resp.Status, name, version)
	}
}

// Upload runs the uploader command with the artifact paths appended.
func (c *Client) Upload(ctx context.Context, artifacts []toolchain.Artifact) error {
	if len(artifacts) == 0 {
		return fmt.Errorf("no artifacts to upload")
	}

	words, err := toolchain.SplitCommand(c.uploadCommand)
	if err != nil {
		return err
	}
	for _, a := range artifacts {
		words = append(words, a.Path)
	}

	cmd := exec.CommandContext(ctx, words[0], words[1:]...)
	cmd.Dir = c.workDir
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", words[0], err)
	}
	return nil
}

// FakeRegistry implements Registry with in-memory state for testing.
type FakeRegistry struct {
	// Versions is the set of published "name version" pairs.
	Versions map[string]bool

	// Uploaded records every uploaded artifact set in order.
	Uploaded [][]toolchain.Artifact

	// Injectable failures.
	PublishedErr error
	UploadErr    error
}

// NewFakeRegistry creates an empty FakeRegistry.
func NewFakeRegistry() *FakeRegistry {
	return &FakeRegistry{Versions: make(map[string]bool)}
}

// SetPublished marks a version as already published.
func (r *FakeRegistry) SetPublished(name, version string) {
	r.Versions[name+" "+version] = true
}

// Published reports whether the version was seeded or uploaded.
func (r *FakeRegistry) Published(ctx context.Context, name, version string) (bool, error) {
	if r.PublishedErr != nil {
		return false, r.PublishedErr
	}
	return r.Versions[name+" "+version], nil
}

// Upload records the artifact set.
func (r *FakeRegistry) Upload(ctx context.Context, artifacts []toolchain.Artifact) error {
	if r.UploadErr != nil {
		return r.UploadErr
	}
	r.Uploaded = append(r.Uploaded, artifacts)
	return nil
}
