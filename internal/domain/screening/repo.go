package screening

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *ScreeningResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*ScreeningResult, error)
	List(ctx context.Context) ([]*ScreeningResult, error)
	// SetStatus moves a result from one status to another atomically,
	// rejecting the write if the stored status no longer matches from.
	SetStatus(ctx context.Context, id uuid.UUID, from, to string) error
}
