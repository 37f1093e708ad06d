// Package receipt persists what each release actually did.
//
// A receipt is written per version under .relkit/releases/ once artifacts
// have been uploaded. Its state distinguishes a fully finished release
// (uploaded and tag pushed) from the inconsistent one where the upload
// succeeded but the tag push did not, so operators can detect the gap and
// repair it instead of guessing.
package receipt

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/relkit/relkit/internal/fsops"
	"github.com/relkit/relkit/internal/semver"
)

// Receipt states.
const (
	// StateReleased means artifacts were uploaded and the tag was pushed.
	StateReleased = "released"

	// StateTagPending means artifacts were uploaded but the tag push has
	// not succeeded yet.
	StateTagPending = "tag-pending"
)

// ErrNotFound indicates no receipt exists for the requested version.
var ErrNotFound = errors.New("release receipt not found")

// Receipt records the outcome of one release.
type Receipt struct {
	// Version is the released version token.
	Version string `json:"version"`

	// Tag is the version-control tag for the release.
	Tag string `json:"tag"`

	// State is StateReleased or StateTagPending.
	State string `json:"state"`

	// Artifacts is the uploaded artifact set, in upload order.
	Artifacts []Artifact `json:"artifacts"`

	// PublishedAt is when the upload finished.
	PublishedAt time.Time `json:"published_at"`

	// TaggedAt is when the tag push finished. Nil while the tag is pending.
	TaggedAt *time.Time `json:"tagged_at,omitempty"`
}

// Artifact is one uploaded file and its digest.
type Artifact struct {
	Name   string `json:"name"`
	Digest string `json:"sha256"`
}

// Pending reports whether the receipt records the inconsistent
// uploaded-but-untagged state.
func (r *Receipt) Pending() bool {
	return r.State == StateTagPending
}

// Store provides an abstraction for receipt persistence.
type Store interface {
	// Load reads the receipt for a version. Returns ErrNotFound if absent.
	Load(version string) (*Receipt, error)

	// Save writes a receipt atomically.
	Save(r *Receipt) error

	// Exists reports whether a receipt exists for the version.
	Exists(version string) (bool, error)

	// List returns all receipts, oldest version first.
	List() ([]*Receipt, error)

	// Latest returns the receipt with the highest version, or nil when no
	// releases have been recorded.
	Latest() (*Receipt, error)
}

// FileStore implements Store with one JSON file per version.
type FileStore struct {
	fs  fsops.FS
	dir string
}

// NewFileStore creates a FileStore rooted at the given releases directory.
func NewFileStore(fs fsops.FS, dir string) *FileStore {
	return &FileStore{fs: fs, dir: dir}
}

// path returns the receipt file path for a version.
func (s *FileStore) path(version string) (string, error) {
	if err := validateVersionID(version); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, version+".json"), nil
}

// validateVersionID rejects version strings that would escape the receipts
// directory when used as a file name.
func validateVersionID(version string) error {
	if version == "" {
		return fmt.Errorf("empty version")
	}
	if strings.ContainsAny(version, "/\\") || version == "." || version == ".." {
		return fmt.Errorf("invalid version %q", version)
	}
	return nil
}

// Load reads the receipt for a version.
func (s *FileStore) Load(version string) (*Receipt, error) {
	path, err := s.path(version)
	if err != nil {
		return nil, err
	}

	data, err := s.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, version)
		}
		return nil, fmt.Errorf("failed to read receipt: %w", err)
	}

	var r Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse receipt %s: %w", path, err)
	}

	return &r, nil
}

// Save writes a receipt atomically, creating the directory if needed.
func (s *FileStore) Save(r *Receipt) error {
	path, err := s.path(r.Version)
	if err != nil {
		return err
	}

	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create receipts directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal receipt: %w", err)
	}

	if err := s.fs.AtomicWrite(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write receipt: %w", err)
	}

	return nil
}

// Exists reports whether a receipt exists for the version.
func (s *FileStore) Exists(version string) (bool, error) {
	path, err := s.path(version)
	if err != nil {
		return false, err
	}
	return s.fs.Exists(path)
}

// List returns all receipts sorted by version, oldest first. Files that are
// not parseable receipts are skipped.
func (s *FileStore) List() ([]*Receipt, error) {
	matches, err := s.fs.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan receipts: %w", err)
	}

	type entry struct {
		receipt *Receipt
		version semver.Version
	}

	var entries []entry
	for _, m := range matches {
		version := strings.TrimSuffix(filepath.Base(m), ".json")

		r, err := s.Load(version)
		if err != nil {
			continue
		}
		v, err := semver.Parse(r.Version)
		if err != nil {
			continue
		}
		entries = append(entries, entry{receipt: r, version: v})
	}

	// Insertion sort: receipt counts stay small.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && semver.Compare(entries[j].version, entries[j-1].version) < 0; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}

	receipts := make([]*Receipt, len(entries))
	for i, e := range entries {
		receipts[i] = e.receipt
	}
	return receipts, nil
}

// Latest returns the receipt with the highest version, or nil.
func (s *FileStore) Latest() (*Receipt, error) {
	receipts, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(receipts) == 0 {
		return nil, nil
	}
	return receipts[len(receipts)-1], nil
}

// FakeStore implements Store in memory for testing.
type FakeStore struct {
	receipts map[string]*Receipt

	// SaveErr makes every Save fail.
	SaveErr error
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{receipts: make(map[string]*Receipt)}
}

// Load reads a stored receipt.
func (s *FakeStore) Load(version string) (*Receipt, error) {
	r, ok := s.receipts[version]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, version)
	}
	copied := *r
	return &copied, nil
}

// Save stores a copy of the receipt.
func (s *FakeStore) Save(r *Receipt) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	copied := *r
	s.receipts[r.Version] = &copied
	return nil
}

// Exists reports whether the version was saved.
func (s *FakeStore) Exists(version string) (bool, error) {
	_, ok := s.receipts[version]
	return ok, nil
}

// List returns stored receipts sorted by version, oldest first.
func (s *FakeStore) List() ([]*Receipt, error) {
	var receipts []*Receipt
	for _, r := range s.receipts {
		copied := *r
		receipts = append(receipts, &copied)
	}
	for i := 1; i < len(receipts); i++ {
		for j := i; j > 0; j-- {
			a, aerr := semver.Parse(receipts[j].Version)
			b, berr := semver.Parse(receipts[j-1].Version)
			if aerr != nil || berr != nil || semver.Compare(a, b) >= 0 {
				break
			}
			receipts[j], receipts[j-1] = receipts[j-1], receipts[j]
		}
	}
	return receipts, nil
}

// Latest returns the highest stored version, or nil.
func (s *FakeStore) Latest() (*Receipt, error) {
	receipts, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(receipts) == 0 {
		return nil, nil
	}
	return receipts[len(receipts)-1], nil
}
