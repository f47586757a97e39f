package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Ganeshcj/Optimedix/internal/platform/store"
)

// StoreRepo persists users as the "users" collection in the KV store.
type StoreRepo struct {
	store *store.Store
}

func NewStoreRepo(s *store.Store) *StoreRepo {
	return &StoreRepo{store: s}
}

func (r *StoreRepo) Create(ctx context.Context, u *User) error {
	return store.Update(ctx, r.store, store.CollectionUsers, func(users []User) ([]User, error) {
		for _, existing := range users {
			if strings.EqualFold(existing.Email, u.Email) {
				return nil, ErrEmailTaken
			}
		}
		return append(users, *u), nil
	})
}

func (r *StoreRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	users, err := store.Load[User](ctx, r.store, store.CollectionUsers)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *StoreRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	users, err := store.Load[User](ctx, r.store, store.CollectionUsers)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *StoreRepo) List(ctx context.Context) ([]*User, error) {
	users, err := store.Load[User](ctx, r.store, store.CollectionUsers)
	if err != nil {
		return nil, err
	}
	out := make([]*User, len(users))
	for i := range users {
		out[i] = &users[i]
	}
	return out, nil
}
