package app

import (
	"context"
	"fmt"

	"bibleapi/pkg/domain"
)

// ResolveRange finds the row-id bounds of rng. The start is the first row
// at rng.From; the end is the last row at rng.To, so an open To runs
// through the end of its chapter. ok is false when either end is missing.
func (a *App) ResolveRange(ctx context.Context, translationID int64, rng domain.Range) (domain.ResolvedRange, bool, error) {
	start, ok, err := a.store.ResolveRangeStart(ctx, translationID, rng.From)
	if err != nil {
		return domain.ResolvedRange{}, false, fmt.Errorf("resolve range start: %w", err)
	}
	if !ok {
		return domain.ResolvedRange{}, false, nil
	}
	end, ok, err := a.store.ResolveRangeEnd(ctx, translationID, rng.To)
	if err != nil {
		return domain.ResolvedRange{}, false, fmt.Errorf("resolve range end: %w", err)
	}
	if !ok {
		return domain.ResolvedRange{}, false, nil
	}
	return domain.ResolvedRange{StartID: start, EndID: end}, true, nil
}

// Aggregate resolves every range in order and concatenates the verses
// between each pair of ids. Overlapping or out-of-order ranges are kept
// as given. If any range fails to resolve, ok is false and no verses are
// returned.
func (a *App) Aggregate(ctx context.Context, translationID int64, ranges []domain.Range) ([]domain.Verse, bool, error) {
	var all []domain.Verse
	for _, rng := range ranges {
		resolved, ok, err := a.ResolveRange(ctx, translationID, rng)
		if err != nil || !ok {
			return nil, false, err
		}
		verses, err := a.store.ListVersesBetween(ctx, translationID, resolved.StartID, resolved.EndID)
		if err != nil {
			return nil, false, fmt.Errorf("list verses: %w", err)
		}
		all = append(all, verses...)
	}
	return all, true, nil
}
