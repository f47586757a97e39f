package screening

import (
	"fmt"

	"github.com/Ganeshcj/Optimedix/internal/platform/auth"
)

// Lifecycle actions.
const (
	ActionRefer  = "refer"
	ActionReview = "review"
)

// Transition computes the next status for an action performed by an actor
// with the given role. Every disallowed combination is a named rejection:
// wrong role, wrong current state, or unknown action. There is no risk-score
// gate on referral; the nurse's judgement decides.
func Transition(current, role, action string) (string, error) {
	switch action {
	case ActionRefer:
		if role != auth.RoleNurse {
			return "", fmt.Errorf("refer by %s: %w", role, ErrRoleNotAllowed)
		}
		if current != StatusPending {
			return "", fmt.Errorf("refer from %s: %w", current, ErrInvalidTransition)
		}
		return StatusReferred, nil

	case ActionReview:
		if role != auth.RoleDoctor {
			return "", fmt.Errorf("review by %s: %w", role, ErrRoleNotAllowed)
		}
		if current != StatusReferred {
			return "", fmt.Errorf("review from %s: %w", current, ErrInvalidTransition)
		}
		return StatusReviewed, nil

	default:
		return "", fmt.Errorf("%q: %w", action, ErrUnknownAction)
	}
}
