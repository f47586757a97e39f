package prescription

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	GetByResultID(ctx context.Context, resultID uuid.UUID) (*Prescription, error)
	List(ctx context.Context) ([]*Prescription, error)
}
