package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Ganeshcj/Optimedix/internal/platform/auth"
)

type Service struct {
	users    Repository
	sessions *auth.Manager
	log      zerolog.Logger
}

func NewService(users Repository, sessions *auth.Manager, log zerolog.Logger) *Service {
	return &Service{users: users, sessions: sessions, log: log}
}

// SignupInput carries the fields a signup or mock login supplies.
type SignupInput struct {
	Name           string `json:"name"`
	Mobile         string `json:"mobile"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	ClinicName     string `json:"clinic_name"`
	District       string `json:"district"`
	State          string `json:"state"`
	Specialization string `json:"specialization"`
}

// Signup creates a new user and issues a session token.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*User, string, error) {
	u := &User{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(in.Name),
		Mobile:         in.Mobile,
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		Role:           in.Role,
		ClinicName:     in.ClinicName,
		District:       in.District,
		State:          in.State,
		Specialization: in.Specialization,
		CreatedAt:      time.Now().UTC(),
	}
	if err := u.Validate(); err != nil {
		return nil, "", err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.issue(u)
	if err != nil {
		return nil, "", err
	}
	s.log.Info().Str("user_id", u.ID.String()).Str("role", u.Role).Msg("user signed up")
	return u, token, nil
}

// Login is a mocked login: no password is checked. An unknown email
// fabricates a user record with the submitted name and role; a known email
// returns the stored record regardless of the submitted role.
func (s *Service) Login(ctx context.Context, in SignupInput) (*User, string, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if errors.Is(err, ErrUserNotFound) {
		return s.Signup(ctx, in)
	}
	if err != nil {
		return nil, "", err
	}

	token, err := s.issue(u)
	if err != nil {
		return nil, "", err
	}
	s.log.Info().Str("user_id", u.ID.String()).Str("role", u.Role).Msg("user logged in")
	return u, token, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) issue(u *User) (string, error) {
	token, err := s.sessions.IssueToken(auth.Session{UserID: u.ID, Name: u.Name, Role: u.Role})
	if err != nil {
		return "", fmt.Errorf("issue session token: %w", err)
	}
	return token, nil
}
