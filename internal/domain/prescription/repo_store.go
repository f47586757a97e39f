package prescription

import (
	"context"

	"github.com/google/uuid"

	"github.com/Ganeshcj/Optimedix/internal/platform/store"
)

// StoreRepo persists prescriptions as the "prescriptions" collection in the
// KV store.
type StoreRepo struct {
	store *store.Store
}

func NewStoreRepo(s *store.Store) *StoreRepo {
	return &StoreRepo{store: s}
}

func (r *StoreRepo) Create(ctx context.Context, p *Prescription) error {
	return store.Append(ctx, r.store, store.CollectionPrescriptions, *p)
}

func (r *StoreRepo) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	prescriptions, err := store.Load[Prescription](ctx, r.store, store.CollectionPrescriptions)
	if err != nil {
		return nil, err
	}
	for i := range prescriptions {
		if prescriptions[i].ID == id {
			return &prescriptions[i], nil
		}
	}
	return nil, ErrPrescriptionNotFound
}

func (r *StoreRepo) GetByResultID(ctx context.Context, resultID uuid.UUID) (*Prescription, error) {
	prescriptions, err := store.Load[Prescription](ctx, r.store, store.CollectionPrescriptions)
	if err != nil {
		return nil, err
	}
	for i := range prescriptions {
		if prescriptions[i].ResultID == resultID {
			return &prescriptions[i], nil
		}
	}
	return nil, ErrPrescriptionNotFound
}

func (r *StoreRepo) List(ctx context.Context) ([]*Prescription, error) {
	prescriptions, err := store.Load[Prescription](ctx, r.store, store.CollectionPrescriptions)
	if err != nil {
		return nil, err
	}
	out := make([]*Prescription, len(prescriptions))
	for i := range prescriptions {
		out[i] = &prescriptions[i]
	}
	return out, nil
}
