// Package identity manages user records and session issuance. Login is a
// mocked form: it fabricates a user record on first sight of an email and
// never verifies a password.
package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Ganeshcj/Optimedix/internal/platform/auth"
)

// Roles a user can hold. There is exactly one role per user.
const (
	RoleNurse   = auth.RoleNurse
	RoleDoctor  = auth.RoleDoctor
	RolePatient = auth.RolePatient
	RoleAdmin   = auth.RoleAdmin
)

var validRoles = map[string]bool{
	RoleNurse: true, RoleDoctor: true, RolePatient: true, RoleAdmin: true,
}

// User is an identity plus role plus facility metadata. Created at signup or
// mock login; immutable afterwards.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Mobile         string    `json:"mobile,omitempty"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	ClinicName     string    `json:"clinic_name,omitempty"`
	District       string    `json:"district,omitempty"`
	State          string    `json:"state,omitempty"`
	Specialization string    `json:"specialization,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Validate checks the fields required to create a user.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if !validRoles[u.Role] {
		return fmt.Errorf("invalid role: %s", u.Role)
	}
	return nil
}
