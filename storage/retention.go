package storage

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"
)

// Prune deletes the objects under prefix last modified before cutoff and
// returns how many went. It keeps going past individual delete failures
// and reports them together.
func Prune(ctx context.Context, archive Storage, prefix string, cutoff time.Time) (int, error) {
	objects, err := archive.List(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("storage: list %s: %w", prefix, err)
	}
	removed := 0
	var errs []error
	for _, obj := range objects {
		if !obj.LastModified.Before(cutoff) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := archive.Delete(ctx, obj.Path); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", obj.Path, err))
			continue
		}
		removed++
	}
	return removed, stderrors.Join(errs...)
}
