package patient

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Ganeshcj/Optimedix/internal/platform/store"
)

// StoreRepo persists patients as the "patients" collection in the KV store.
type StoreRepo struct {
	store *store.Store
}

func NewStoreRepo(s *store.Store) *StoreRepo {
	return &StoreRepo{store: s}
}

func (r *StoreRepo) Create(ctx context.Context, p *Patient) error {
	return store.Append(ctx, r.store, store.CollectionPatients, *p)
}

func (r *StoreRepo) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	patients, err := store.Load[Patient](ctx, r.store, store.CollectionPatients)
	if err != nil {
		return nil, err
	}
	for i := range patients {
		if patients[i].ID == id {
			return &patients[i], nil
		}
	}
	return nil, ErrPatientNotFound
}

func (r *StoreRepo) List(ctx context.Context) ([]*Patient, error) {
	patients, err := store.Load[Patient](ctx, r.store, store.CollectionPatients)
	if err != nil {
		return nil, err
	}
	out := make([]*Patient, len(patients))
	for i := range patients {
		out[i] = &patients[i]
	}
	return out, nil
}

func (r *StoreRepo) TouchLastScreening(ctx context.Context, id uuid.UUID, at time.Time) error {
	return store.Update(ctx, r.store, store.CollectionPatients, func(patients []Patient) ([]Patient, error) {
		for i := range patients {
			if patients[i].ID == id {
				patients[i].LastScreeningDate = &at
				return patients, nil
			}
		}
		return nil, ErrPatientNotFound
	})
}
