package screening

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Ganeshcj/Optimedix/internal/platform/store"
)

// StoreRepo persists screening results as the "screening_results" collection
// in the KV store.
type StoreRepo struct {
	store *store.Store
}

func NewStoreRepo(s *store.Store) *StoreRepo {
	return &StoreRepo{store: s}
}

func (r *StoreRepo) Create(ctx context.Context, result *ScreeningResult) error {
	return store.Append(ctx, r.store, store.CollectionResults, *result)
}

func (r *StoreRepo) GetByID(ctx context.Context, id uuid.UUID) (*ScreeningResult, error) {
	results, err := store.Load[ScreeningResult](ctx, r.store, store.CollectionResults)
	if err != nil {
		return nil, err
	}
	for i := range results {
		if results[i].ID == id {
			return &results[i], nil
		}
	}
	return nil, ErrResultNotFound
}

func (r *StoreRepo) List(ctx context.Context) ([]*ScreeningResult, error) {
	results, err := store.Load[ScreeningResult](ctx, r.store, store.CollectionResults)
	if err != nil {
		return nil, err
	}
	out := make([]*ScreeningResult, len(results))
	for i := range results {
		out[i] = &results[i]
	}
	return out, nil
}

func (r *StoreRepo) SetStatus(ctx context.Context, id uuid.UUID, from, to string) error {
	return store.Update(ctx, r.store, store.CollectionResults, func(results []ScreeningResult) ([]ScreeningResult, error) {
		for i := range results {
			if results[i].ID != id {
				continue
			}
			if results[i].Status != from {
				return nil, fmt.Errorf("status is %s, expected %s: %w",
					results[i].Status, from, ErrInvalidTransition)
			}
			results[i].Status = to
			return results, nil
		}
		return nil, ErrResultNotFound
	})
}
