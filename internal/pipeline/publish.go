package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/relkit/relkit/internal/receipt"
	"github.com/relkit/relkit/internal/toolchain"
)

// publish uploads the artifact set and pushes the tag.
//
// Ordering is deliberate: the tag is created locally before the upload so a
// failed upload can be rolled back by deleting it, leaving no trace. Once
// the upload has succeeded the release is recorded as tag-pending, the tag
// is pushed, and the receipt is promoted to released. A crash or push
// failure between upload and promotion therefore always leaves a receipt
// naming the gap.
func (e *Engine) publish(ctx context.Context, check *CheckResult, artifacts []toolchain.Artifact) (*PublishResult, error) {
	result := &PublishResult{Version: check.Version, Tag: check.Tag}

	if err := e.git.CreateTag(e.root, check.Tag, "release "+check.Version); err != nil {
		return result, fmt.Errorf("%w: %w", ErrTagPush, err)
	}

	if err := e.registry.Upload(ctx, artifacts); err != nil {
		// Nothing was published: roll the local tag back.
		if derr := e.git.DeleteTag(e.root, check.Tag); derr != nil {
			e.logger.Warn("could not roll back local tag", "tag", check.Tag, "err", derr)
		}
		return result, fmt.Errorf("%w: %w", ErrPublish, err)
	}
	result.Uploaded = true
	e.logger.Info("artifacts uploaded", "version", check.Version, "count", len(artifacts))

	rec := &receipt.Receipt{
		Version:     check.Version,
		Tag:         check.Tag,
		State:       receipt.StateTagPending,
		Artifacts:   e.digest(artifacts),
		PublishedAt: e.clock.Now(),
	}
	if err := e.receipts.Save(rec); err != nil {
		return result, fmt.Errorf("%w: artifacts uploaded but receipt not recorded: %w", ErrTagPush, err)
	}
	result.State = rec.State

	if err := e.git.PushTag(ctx, e.root, e.cfg.Git.Remote, check.Tag); err != nil {
		return result, fmt.Errorf("%w: artifacts for %s are published but the tag is not pushed; run repair: %w",
			ErrTagPush, check.Version, err)
	}
	result.TagPushed = true

	now := e.clock.Now()
	rec.State = receipt.StateReleased
	rec.TaggedAt = &now
	if err := e.receipts.Save(rec); err != nil {
		return result, fmt.Errorf("%w: tag pushed but receipt not promoted: %w", ErrTagPush, err)
	}
	result.State = rec.State

	e.logger.Info("release finished", "version", check.Version, "tag", check.Tag)
	return result, nil
}

// digest fingerprints the artifact set for the receipt. A digest failure
// is recorded rather than fatal: the artifacts are already uploaded.
func (e *Engine) digest(artifacts []toolchain.Artifact) []receipt.Artifact {
	records := make([]receipt.Artifact, 0, len(artifacts))
	for _, a := range artifacts {
		d, err := e.hasher.HashFile(a.Path)
		if err != nil {
			e.logger.Warn("could not digest artifact", "artifact", a.Name, "err", err)
			d = ""
		}
		records = append(records, receipt.Artifact{Name: a.Name, Digest: d})
	}
	return records
}

// Repair retries the tag push of a release stuck in the tag-pending state.
// Pushing a tag that already reached the remote is a no-op, so repair is
// idempotent.
func (e *Engine) Repair(ctx context.Context, req RepairRequest) (*RepairResult, error) {
	rec, err := e.findPending(req.Version)
	if err != nil {
		return nil, err
	}

	// The local tag may have been lost between runs; recreate it.
	exists, err := e.git.TagExists(e.root, rec.Tag)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTagPush, err)
	}
	if !exists {
		if err := e.git.CreateTag(e.root, rec.Tag, "release "+rec.Version); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTagPush, err)
		}
	}

	if err := e.git.PushTag(ctx, e.root, e.cfg.Git.Remote, rec.Tag); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTagPush, err)
	}

	now := e.clock.Now()
	rec.State = receipt.StateReleased
	rec.TaggedAt = &now
	if err := e.receipts.Save(rec); err != nil {
		return nil, fmt.Errorf("%w: tag pushed but receipt not promoted: %w", ErrTagPush, err)
	}

	e.logger.Info("release repaired", "version", rec.Version, "tag", rec.Tag)
	return &RepairResult{Version: rec.Version, Tag: rec.Tag}, nil
}

// findPending resolves the receipt to repair: the named version, or the
// most recent pending release when no version is given.
func (e *Engine) findPending(version string) (*receipt.Receipt, error) {
	if version != "" {
		rec, err := e.receipts.Load(version)
		if err != nil {
			if errors.Is(err, receipt.ErrNotFound) {
				return nil, fmt.Errorf("%w: version %s has no release receipt", ErrNothingToRepair, version)
			}
			return nil, err
		}
		if !rec.Pending() {
			return nil, fmt.Errorf("%w: version %s is already fully released", ErrNothingToRepair, version)
		}
		return rec, nil
	}

	receipts, err := e.receipts.List()
	if err != nil {
		return nil, err
	}
	for i := len(receipts) - 1; i >= 0; i-- {
		if receipts[i].Pending() {
			return receipts[i], nil
		}
	}
	return nil, ErrNothingToRepair
}
