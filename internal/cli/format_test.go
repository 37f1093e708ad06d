package cli

import (
	"io"
	"os"
	"testing"

	"github.com/fatih/color"
)

func TestPrintError(t *testing.T) {
	oldStderr := os.Stderr
	oldNoColor := color.NoColor
	color.NoColor = true
	defer func() {
		os.Stderr = oldStderr
		color.NoColor = oldNoColor
	}()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stderr = w

	PrintError("tag push failed")

	_ = w.Close()
	os.Stderr = oldStderr

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read captured stderr: %v", err)
	}
	if got, want := string(out), "✗ tag push failed\n"; got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}
}
