package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/relkit/relkit/internal/clock"
	"github.com/relkit/relkit/internal/config"
	"github.com/relkit/relkit/internal/fsops"
	"github.com/relkit/relkit/internal/gitx"
	"github.com/relkit/relkit/internal/hash"
	"github.com/relkit/relkit/internal/receipt"
	"github.com/relkit/relkit/internal/registry"
	"github.com/relkit/relkit/internal/toolchain"
)

// testEnv bundles an Engine with its fake collaborators.
type testEnv struct {
	engine   *Engine
	cfg      *config.Config
	git      *gitx.FakeGit
	builder  *toolchain.FakeBuilder
	registry *registry.FakeRegistry
	receipts *receipt.FakeStore
	fs       *fsops.FakeFS
}

// newTestEnv creates an engine for a repo at /repo with version 1.3.0
// declared, a clean worktree on main, and a builder producing two
// artifacts.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fs := fsops.NewFakeFS()
	fs.AddFile("/repo/project.toml", []byte("[project]\nname = \"demo\"\nversion = \"1.3.0\"\n"))
	fs.AddDir("/repo/build")
	fs.AddDir("/repo/dist")

	cfg := config.Default()
	cfg.Registry.IndexURL = ""
	cfg.Build.IsolationEnv = "RELKIT_TEST_ISOLATED"
	t.Setenv("RELKIT_TEST_ISOLATED", "")

	env := &testEnv{
		cfg: cfg,
		git: gitx.NewFakeGit("/repo", "main"),
		builder: toolchain.NewFakeBuilder(
			toolchain.Artifact{Name: "demo-1.3.0.tar.gz", Path: "/repo/dist/demo-1.3.0.tar.gz"},
			toolchain.Artifact{Name: "demo-1.3.0-py3-none-any.whl", Path: "/repo/dist/demo-1.3.0-py3-none-any.whl"},
		),
		registry: registry.NewFakeRegistry(),
		receipts: receipt.NewFakeStore(),
		fs:       fs,
	}

	env.engine = New(
		cfg, "/repo",
		env.git, env.builder, env.registry, env.receipts,
		fs, hash.NewFakeHasher(),
		clock.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)),
		log.New(io.Discard),
	)
	return env
}

func (env *testEnv) setVersion(t *testing.T, version string) {
	t.Helper()
	env.fs.AddFile("/repo/project.toml", []byte("[project]\nname = \"demo\"\nversion = \""+version+"\"\n"))
}

func TestRelease_HappyPath(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.engine.Release(context.Background(), ReleaseRequest{})
	if err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	if result.Version != "1.3.0" || result.Tag != "1.3.0" {
		t.Errorf("Unexpected version/tag: %s/%s", result.Version, result.Tag)
	}
	if len(result.Cleaned) != 2 {
		t.Errorf("Expected 2 cleaned dirs, got %v", result.Cleaned)
	}
	if len(result.Artifacts) != 2 {
		t.Errorf("Expected 2 artifacts, got %d", len(result.Artifacts))
	}
	if !result.Uploaded || !result.TagPushed {
		t.Errorf("Expected uploaded and tag pushed, got %+v", result)
	}

	if len(env.registry.Uploaded) != 1 {
		t.Fatalf("Expected exactly one upload, got %d", len(env.registry.Uploaded))
	}
	if len(env.git.PushedTags) != 1 || env.git.PushedTags[0] != "1.3.0" {
		t.Errorf("Expected tag 1.3.0 pushed, got %v", env.git.PushedTags)
	}

	rec, err := env.receipts.Load("1.3.0")
	if err != nil {
		t.Fatalf("Expected receipt: %v", err)
	}
	if rec.State != receipt.StateReleased {
		t.Errorf("Expected released receipt, got %s", rec.State)
	}
	if rec.TaggedAt == nil {
		t.Error("Expected TaggedAt on released receipt")
	}
	if len(rec.Artifacts) != 2 {
		t.Errorf("Expected 2 artifact digests, got %d", len(rec.Artifacts))
	}
}

func TestRelease_VersionGateShortCircuits(t *testing.T) {
	t.Run("already published version stops the pipeline", func(t *testing.T) {
		env := newTestEnv(t)
		env.registry.SetPublished("demo", "1.3.0")

		_, err := env.engine.Release(context.Background(), ReleaseRequest{})
		if !errors.Is(err, ErrVersion) {
			t.Fatalf("Expected ErrVersion, got %v", err)
		}

		// Precondition short-circuit: nothing built, nothing uploaded.
		if env.builder.Builds != 0 {
			t.Errorf("Expected no build, got %d", env.builder.Builds)
		}
		if len(env.registry.Uploaded) != 0 {
			t.Error("Expected no upload")
		}
		if len(env.git.CreatedTags) != 0 {
			t.Error("Expected no tags created")
		}
	})

	t.Run("existing receipt stops the pipeline", func(t *testing.T) {
		env := newTestEnv(t)
		_ = env.receipts.Save(&receipt.Receipt{Version: "1.3.0", Tag: "1.3.0", State: receipt.StateReleased})

		_, err := env.engine.Release(context.Background(), ReleaseRequest{})
		if !errors.Is(err, ErrVersion) {
			t.Fatalf("Expected ErrVersion, got %v", err)
		}
	})

	t.Run("existing local tag stops the pipeline", func(t *testing.T) {
		env := newTestEnv(t)
		env.git.Tags["1.3.0"] = true

		if _, err := env.engine.Release(context.Background(), ReleaseRequest{}); !errors.Is(err, ErrVersion) {
			t.Fatalf("Expected ErrVersion, got %v", err)
		}
	})

	t.Run("existing remote tag stops the pipeline", func(t *testing.T) {
		env := newTestEnv(t)
		env.git.RemoteTags["1.3.0"] = true

		if _, err := env.engine.Release(context.Background(), ReleaseRequest{}); !errors.Is(err, ErrVersion) {
			t.Fatalf("Expected ErrVersion, got %v", err)
		}
	})

	t.Run("dirty worktree stops the pipeline", func(t *testing.T) {
		env := newTestEnv(t)
		env.git.Clean = false

		if _, err := env.engine.Release(context.Background(), ReleaseRequest{}); !errors.Is(err, ErrVersion) {
			t.Fatalf("Expected ErrVersion, got %v", err)
		}
	})

	t.Run("wrong branch stops the pipeline", func(t *testing.T) {
		env := newTestEnv(t)
		env.git.Branch = "feature/foo"

		if _, err := env.engine.Release(context.Background(), ReleaseRequest{}); !errors.Is(err, ErrVersion) {
			t.Fatalf("Expected ErrVersion, got %v", err)
		}
	})

	t.Run("malformed version stops the pipeline", func(t *testing.T) {
		env := newTestEnv(t)
		env.setVersion(t, "not-a-version")

		if _, err := env.engine.Release(context.Background(), ReleaseRequest{}); !errors.Is(err, ErrVersion) {
			t.Fatalf("Expected ErrVersion, got %v", err)
		}
	})

	t.Run("non-increasing version stops the pipeline", func(t *testing.T) {
		env := newTestEnv(t)
		_ = env.receipts.Save(&receipt.Receipt{Version: "2.0.0", Tag: "2.0.0", State: receipt.StateReleased})

		_, err := env.engine.Release(context.Background(), ReleaseRequest{})
		if !errors.Is(err, ErrVersion) {
			t.Fatalf("Expected ErrVersion, got %v", err)
		}
	})
}

func TestRelease_MissingToolchain(t *testing.T) {
	env := newTestEnv(t)
	env.builder.Present = false

	_, err := env.engine.Release(context.Background(), ReleaseRequest{})
	if !errors.Is(err, ErrBuild) {
		t.Fatalf("Expected ErrBuild, got %v", err)
	}

	// The remediation hint names the install command.
	if msg := err.Error(); !strings.Contains(msg, env.cfg.Build.InstallCommand) {
		t.Errorf("Expected remediation hint in %q", msg)
	}

	if len(env.registry.Uploaded) != 0 {
		t.Error("Expected no upload after build failure")
	}
	if len(env.git.CreatedTags) != 0 {
		t.Error("Expected no tag after build failure")
	}
}

func TestRelease_IsolationBranch(t *testing.T) {
	t.Run("installs dependencies when isolated", func(t *testing.T) {
		env := newTestEnv(t)
		t.Setenv("RELKIT_TEST_ISOLATED", "/home/user/.venv")

		if _, err := env.engine.Release(context.Background(), ReleaseRequest{}); err != nil {
			t.Fatalf("Release failed: %v", err)
		}
		if env.builder.Installs != 1 {
			t.Errorf("Expected 1 install, got %d", env.builder.Installs)
		}
	})

	t.Run("skips install outside isolation", func(t *testing.T) {
		env := newTestEnv(t)

		if _, err := env.engine.Release(context.Background(), ReleaseRequest{}); err != nil {
			t.Fatalf("Release failed: %v", err)
		}
		if env.builder.Installs != 0 {
			t.Errorf("Expected no install, got %d", env.builder.Installs)
		}
	})

	t.Run("install failure is a build error", func(t *testing.T) {
		env := newTestEnv(t)
		t.Setenv("RELKIT_TEST_ISOLATED", "1")
		env.builder.InstallErr = errors.New("pip exploded")

		if _, err := env.engine.Release(context.Background(), ReleaseRequest{}); !errors.Is(err, ErrBuild) {
			t.Fatalf("Expected ErrBuild, got %v", err)
		}
	})
}

func TestRelease_UploadFailureRollsBackTag(t *testing.T) {
	env := newTestEnv(t)
	env.registry.UploadErr = errors.New("registry rejected the upload")

	_, err := env.engine.Release(context.Background(), ReleaseRequest{})
	if !errors.Is(err, ErrPublish) {
		t.Fatalf("Expected ErrPublish, got %v", err)
	}

	// The local tag created before the upload is rolled back.
	if env.git.Tags["1.3.0"] {
		t.Error("Expected local tag to be rolled back")
	}
	if len(env.git.DeletedTags) != 1 {
		t.Errorf("Expected one tag deletion, got %v", env.git.DeletedTags)
	}

	// No receipt: this is a clean failure, not an inconsistent state.
	exists, _ := env.receipts.Exists("1.3.0")
	if exists {
		t.Error("Expected no receipt after upload failure")
	}
}

func TestRelease_TagPushFailureLeavesPendingState(t *testing.T) {
	env := newTestEnv(t)
	env.git.PushTagErr = errors.New("remote unreachable")

	result, err := env.engine.Release(context.Background(), ReleaseRequest{})
	if !errors.Is(err, ErrTagPush) {
		t.Fatalf("Expected ErrTagPush, got %v", err)
	}

	// Distinct from both clean success and clean failure: uploaded but
	// not tagged, with a pending receipt naming the gap.
	if !result.Uploaded {
		t.Error("Expected upload to have happened")
	}
	if result.TagPushed {
		t.Error("Expected tag push to have failed")
	}

	rec, err := env.receipts.Load("1.3.0")
	if err != nil {
		t.Fatalf("Expected pending receipt: %v", err)
	}
	if !rec.Pending() {
		t.Errorf("Expected tag-pending state, got %s", rec.State)
	}

	status, err := env.engine.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if len(status.Pending) != 1 || status.Pending[0] != "1.3.0" {
		t.Errorf("Expected 1.3.0 pending in status, got %v", status.Pending)
	}
	if status.Remote != env.git.URL {
		t.Errorf("Expected remote URL %q in status, got %q", env.git.URL, status.Remote)
	}
}

func TestRepair(t *testing.T) {
	t.Run("retries the tag push and promotes the receipt", func(t *testing.T) {
		env := newTestEnv(t)
		env.git.PushTagErr = errors.New("remote unreachable")

		if _, err := env.engine.Release(context.Background(), ReleaseRequest{}); !errors.Is(err, ErrTagPush) {
			t.Fatalf("Expected ErrTagPush, got %v", err)
		}

		// Remote is back.
		env.git.PushTagErr = nil

		result, err := env.engine.Repair(context.Background(), RepairRequest{})
		if err != nil {
			t.Fatalf("Repair failed: %v", err)
		}
		if result.Version != "1.3.0" {
			t.Errorf("Expected 1.3.0 repaired, got %s", result.Version)
		}

		rec, _ := env.receipts.Load("1.3.0")
		if rec.State != receipt.StateReleased {
			t.Errorf("Expected released state, got %s", rec.State)
		}
		if rec.TaggedAt == nil {
			t.Error("Expected TaggedAt after repair")
		}
	})

	t.Run("recreates a lost local tag", func(t *testing.T) {
		env := newTestEnv(t)
		_ = env.receipts.Save(&receipt.Receipt{Version: "1.2.0", Tag: "1.2.0", State: receipt.StateTagPending})

		if _, err := env.engine.Repair(context.Background(), RepairRequest{Version: "1.2.0"}); err != nil {
			t.Fatalf("Repair failed: %v", err)
		}
		if len(env.git.CreatedTags) != 1 {
			t.Errorf("Expected tag to be recreated, got %v", env.git.CreatedTags)
		}
	})

	t.Run("nothing pending", func(t *testing.T) {
		env := newTestEnv(t)

		if _, err := env.engine.Repair(context.Background(), RepairRequest{}); !errors.Is(err, ErrNothingToRepair) {
			t.Fatalf("Expected ErrNothingToRepair, got %v", err)
		}
	})

	t.Run("already released version", func(t *testing.T) {
		env := newTestEnv(t)
		_ = env.receipts.Save(&receipt.Receipt{Version: "1.0.0", Tag: "1.0.0", State: receipt.StateReleased})

		if _, err := env.engine.Repair(context.Background(), RepairRequest{Version: "1.0.0"}); !errors.Is(err, ErrNothingToRepair) {
			t.Fatalf("Expected ErrNothingToRepair, got %v", err)
		}
	})
}

func TestClean_Idempotent(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.engine.Clean()
	if err != nil {
		t.Fatalf("first Clean failed: %v", err)
	}
	if len(first.Removed) != 2 {
		t.Errorf("Expected 2 removed dirs, got %v", first.Removed)
	}

	second, err := env.engine.Clean()
	if err != nil {
		t.Fatalf("second Clean failed: %v", err)
	}
	if len(second.Removed) != 0 {
		t.Errorf("Expected nothing left to remove, got %v", second.Removed)
	}
}

func TestClean_PermissionError(t *testing.T) {
	env := newTestEnv(t)
	env.fs.FailPath("/repo/build", errors.New("permission denied"))

	_, err := env.engine.Clean()
	if !errors.Is(err, ErrFilesystem) {
		t.Fatalf("Expected ErrFilesystem, got %v", err)
	}
}

func TestRelease_DryRun(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.engine.Release(context.Background(), ReleaseRequest{DryRun: true})
	if err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	if !result.DryRun {
		t.Error("Expected DryRun result")
	}
	if len(result.Artifacts) != 2 {
		t.Errorf("Expected artifacts to be built, got %d", len(result.Artifacts))
	}
	if result.Uploaded || result.TagPushed {
		t.Error("Expected no upload or tag push in dry run")
	}
	if len(env.registry.Uploaded) != 0 || len(env.git.CreatedTags) != 0 {
		t.Error("Expected no side effects in dry run")
	}
}

func TestRelease_Interrupt(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.engine.Release(ctx, ReleaseRequest{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if env.builder.Builds != 0 || len(env.registry.Uploaded) != 0 {
		t.Error("Expected no steps to run after interrupt")
	}
}

func TestPublish_RequiresArtifacts(t *testing.T) {
	env := newTestEnv(t)
	env.builder.Artifacts = nil

	_, err := env.engine.Publish(context.Background())
	if !errors.Is(err, ErrPublish) {
		t.Fatalf("Expected ErrPublish, got %v", err)
	}
}

func TestPublish_UploadsExistingArtifacts(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.engine.Publish(context.Background())
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if !result.Uploaded || !result.TagPushed {
		t.Errorf("Expected full publish, got %+v", result)
	}
	if env.builder.Builds != 0 {
		t.Error("Expected Publish to not build")
	}
}
