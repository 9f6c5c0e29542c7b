package driver

import (
	"context"
	"errors"

	"eqlint/internal/fix"
	"eqlint/internal/logging"
)

// Fix diagnoses targets with fixes attached and applies them according to apply.
// The diagnose result is returned even when no fix applies.
func Fix(ctx context.Context, opts DiagnoseOptions, apply fix.ApplyOptions, targets ...string) (*DiagnoseResult, *fix.ApplyResult, error) {
	opts.Suggest = true
	res, err := Diagnose(ctx, opts, targets...)
	if err != nil {
		return nil, nil, err
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	out, err := fix.Apply(res.FileSet, res.Bag.Items(), apply)
	if err != nil && !errors.Is(err, fix.ErrNoFixes) {
		return res, out, err
	}
	if out != nil {
		for _, s := range out.Skipped {
			log.Debug("fix skipped", "id", s.ID, "title", s.Title, "reason", s.Reason)
		}
		log.Info("fixes applied", "applied", len(out.Applied), "files", len(out.FileChanges), "dry_run", apply.DryRun)
	}
	return res, out, err
}
