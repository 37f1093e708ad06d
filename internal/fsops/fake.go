package fsops

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FakeFS implements FS with an in-memory file tree for testing.
// Errors can be injected per path with FailPath.
type FakeFS struct {
	files    map[string][]byte
	dirs     map[string]bool
	failures map[string]error
}

// NewFakeFS creates a new empty FakeFS.
func NewFakeFS() *FakeFS {
	return &FakeFS{
		files:    make(map[string][]byte),
		dirs:     make(map[string]bool),
		failures: make(map[string]error),
	}
}

// AddFile adds a file with the given contents, creating parent directories.
func (f *FakeFS) AddFile(path string, data []byte) {
	f.files[path] = data
	f.addParents(path)
}

// AddDir adds a directory, creating parent directories.
func (f *FakeFS) AddDir(path string) {
	f.dirs[path] = true
	f.addParents(path)
}

// FailPath makes every operation touching path fail with err.
func (f *FakeFS) FailPath(path string, err error) {
	f.failures[path] = err
}

func (f *FakeFS) addParents(path string) {
	for dir := filepath.Dir(path); dir != "." && dir != string(filepath.Separator); dir = filepath.Dir(dir) {
		f.dirs[dir] = true
	}
}

func (f *FakeFS) check(path string) error {
	if err, ok := f.failures[path]; ok {
		return err
	}
	return nil
}

// ReadFile reads the contents of an in-memory file.
func (f *FakeFS) ReadFile(path string) ([]byte, error) {
	if err := f.check(path); err != nil {
		return nil, err
	}
	data, ok := f.files[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	return data, nil
}

// AtomicWrite stores the data in memory.
func (f *FakeFS) AtomicWrite(path string, data []byte, perm os.FileMode) error {
	if err := f.check(path); err != nil {
		return err
	}
	f.files[path] = append([]byte(nil), data...)
	f.addParents(path)
	return nil
}

// MkdirAll records the directory and its parents.
func (f *FakeFS) MkdirAll(path string, perm os.FileMode) error {
	if err := f.check(path); err != nil {
		return err
	}
	f.dirs[path] = true
	f.addParents(path)
	return nil
}

// RemoveAll removes the path and everything under it.
func (f *FakeFS) RemoveAll(path string) error {
	if err := f.check(path); err != nil {
		return err
	}
	prefix := path + string(filepath.Separator)
	for p := range f.files {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(f.files, p)
		}
	}
	for p := range f.dirs {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(f.dirs, p)
		}
	}
	return nil
}

// Exists reports whether a file or directory exists.
func (f *FakeFS) Exists(path string) (bool, error) {
	if err := f.check(path); err != nil {
		return false, err
	}
	_, hasFile := f.files[path]
	return hasFile || f.dirs[path], nil
}

// Stat returns file info for an in-memory entry.
func (f *FakeFS) Stat(path string) (os.FileInfo, error) {
	if err := f.check(path); err != nil {
		return nil, err
	}
	if data, ok := f.files[path]; ok {
		return &fakeFileInfo{name: filepath.Base(path), size: int64(len(data))}, nil
	}
	if f.dirs[path] {
		return &fakeFileInfo{name: filepath.Base(path), isDir: true}, nil
	}
	return nil, &os.PathError{Op: "stat", Path: path, Err: os.ErrNotExist}
}

// Glob returns all entries matching the pattern, sorted.
func (f *FakeFS) Glob(pattern string) ([]string, error) {
	var matches []string
	for p := range f.files {
		ok, err := filepath.Match(pattern, p)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, p)
		}
	}
	for p := range f.dirs {
		ok, err := filepath.Match(pattern, p)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, p)
		}
	}
	sort.Strings(matches)
	return matches, nil
}

// fakeFileInfo is a minimal os.FileInfo for FakeFS entries.
type fakeFileInfo struct {
	name  string
	size  int64
	isDir bool
}

func (i *fakeFileInfo) Name() string { return i.name }
func (i *fakeFileInfo) Size() int64  { return i.size }
func (i *fakeFileInfo) Mode() os.FileMode {
	if i.isDir {
		return os.ModeDir | 0755
	}
	return 0644
}
func (i *fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (i *fakeFileInfo) IsDir() bool        { return i.isDir }
func (i *fakeFileInfo) Sys() interface{}   { return nil }

// String helps debugging test failures.
func (i *fakeFileInfo) String() string {
	return fmt.Sprintf("%s (dir=%v)", i.name, i.isDir)
}
