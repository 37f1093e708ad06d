package fsops

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRealFS_AtomicWrite(t *testing.T) {
	t.Run("writes new file", func(t *testing.T) {
		tmpDir := t.TempDir()
		fs := NewRealFS()
		path := filepath.Join(tmpDir, "receipt.json")

		if err := fs.AtomicWrite(path, []byte(`{"version":"1.0.0"}`), 0644); err != nil {
			t.Fatalf("AtomicWrite failed: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read back: %v", err)
		}
		if string(data) != `{"version":"1.0.0"}` {
			t.Errorf("Unexpected contents: %s", data)
		}
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		tmpDir := t.TempDir()
		fs := NewRealFS()
		path := filepath.Join(tmpDir, "f")

		if err := fs.AtomicWrite(path, []byte("old"), 0644); err != nil {
			t.Fatalf("AtomicWrite failed: %v", err)
		}
		if err := fs.AtomicWrite(path, []byte("new"), 0644); err != nil {
			t.Fatalf("AtomicWrite failed: %v", err)
		}

		data, _ := os.ReadFile(path)
		if string(data) != "new" {
			t.Errorf("Expected new, got %s", data)
		}
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		tmpDir := t.TempDir()
		fs := NewRealFS()

		if err := fs.AtomicWrite(filepath.Join(tmpDir, "f"), []byte("x"), 0644); err != nil {
			t.Fatalf("AtomicWrite failed: %v", err)
		}

		entries, err := os.ReadDir(tmpDir)
		if err != nil {
			t.Fatalf("ReadDir failed: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("Expected 1 entry, got %d", len(entries))
		}
	})
}

func TestRealFS_RemoveAll(t *testing.T) {
	t.Run("is idempotent", func(t *testing.T) {
		tmpDir := t.TempDir()
		fs := NewRealFS()
		target := filepath.Join(tmpDir, "build")

		if err := os.MkdirAll(filepath.Join(target, "lib"), 0755); err != nil {
			t.Fatalf("failed to create dirs: %v", err)
		}
		if err := os.WriteFile(filepath.Join(target, "lib", "a.o"), []byte("x"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		if err := fs.RemoveAll(target); err != nil {
			t.Fatalf("first RemoveAll failed: %v", err)
		}
		if err := fs.RemoveAll(target); err != nil {
			t.Fatalf("second RemoveAll failed: %v", err)
		}

		exists, err := fs.Exists(target)
		if err != nil {
			t.Fatalf("Exists failed: %v", err)
		}
		if exists {
			t.Error("Expected target to be gone")
		}
	})
}

func TestRealFS_Glob(t *testing.T) {
	tmpDir := t.TempDir()
	fs := NewRealFS()

	for _, name := range []string{"pkg-1.0.0.tar.gz", "pkg-1.0.0-py3-none-any.whl"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
	}

	matches, err := fs.Glob(filepath.Join(tmpDir, "*"))
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("Expected 2 matches, got %d", len(matches))
	}
}

func TestFakeFS(t *testing.T) {
	t.Run("read write round trip", func(t *testing.T) {
		fs := NewFakeFS()
		if err := fs.AtomicWrite("/repo/.relkit/releases/1.0.0.json", []byte("{}"), 0644); err != nil {
			t.Fatalf("AtomicWrite failed: %v", err)
		}

		data, err := fs.ReadFile("/repo/.relkit/releases/1.0.0.json")
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if string(data) != "{}" {
			t.Errorf("Unexpected contents: %s", data)
		}

		// Parent dirs exist implicitly.
		exists, _ := fs.Exists("/repo/.relkit/releases")
		if !exists {
			t.Error("Expected parent directory to exist")
		}
	})

	t.Run("ReadFile returns not-exist error", func(t *testing.T) {
		fs := NewFakeFS()
		_, err := fs.ReadFile("/missing")
		if !os.IsNotExist(err) {
			t.Errorf("Expected not-exist error, got %v", err)
		}
	})

	t.Run("RemoveAll removes subtree and is idempotent", func(t *testing.T) {
		fs := NewFakeFS()
		fs.AddFile("/repo/build/lib/a.o", []byte("x"))
		fs.AddFile("/repo/build/lib/b.o", []byte("y"))
		fs.AddFile("/repo/buildinfo", []byte("keep"))

		if err := fs.RemoveAll("/repo/build"); err != nil {
			t.Fatalf("RemoveAll failed: %v", err)
		}
		if err := fs.RemoveAll("/repo/build"); err != nil {
			t.Fatalf("second RemoveAll failed: %v", err)
		}

		exists, _ := fs.Exists("/repo/build/lib/a.o")
		if exists {
			t.Error("Expected subtree file to be removed")
		}
		// Sibling with the removed path as a string prefix survives.
		exists, _ = fs.Exists("/repo/buildinfo")
		if !exists {
			t.Error("Expected /repo/buildinfo to survive")
		}
	})

	t.Run("FailPath injects errors", func(t *testing.T) {
		fs := NewFakeFS()
		injected := errors.New("permission denied")
		fs.FailPath("/repo/dist", injected)

		if err := fs.RemoveAll("/repo/dist"); !errors.Is(err, injected) {
			t.Errorf("Expected injected error, got %v", err)
		}
	})

	t.Run("Glob matches files in a directory", func(t *testing.T) {
		fs := NewFakeFS()
		fs.AddFile("/repo/dist/pkg-1.0.0.tar.gz", []byte("x"))
		fs.AddFile("/repo/dist/pkg-1.0.0-py3-none-any.whl", []byte("y"))
		fs.AddFile("/repo/other.txt", []byte("z"))

		matches, err := fs.Glob("/repo/dist/*")
		if err != nil {
			t.Fatalf("Glob failed: %v", err)
		}
		if len(matches) != 2 {
			t.Errorf("Expected 2 matches, got %d: %v", len(matches), matches)
		}
	})
}
