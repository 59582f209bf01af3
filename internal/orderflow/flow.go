package orderflow

import (
	"errors"
	"fmt"

	"github.com/avagyan/atelier_orders/internal/models"
)

// Action is an operator button press from the admin chat.
type Action string

const (
	ActionConfirm  Action = "confirm"
	ActionReject   Action = "reject"
	ActionShipped  Action = "shipped"
	ActionComplete Action = "completed"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrBadTransition = errors.New("illegal status transition")
)

// Outcome is the effect of an action on an order: either a new status
// or deletion of the row.
type Outcome struct {
	Status string
	Delete bool
}

// Apply validates an operator action against the order's current
// status. Allowed transitions: pending -> confirmed, pending/confirmed
// -> shipped, any -> deleted (reject or completed).
func Apply(status string, action Action) (Outcome, error) {
	switch action {
	case ActionConfirm:
		if status != models.StatusPending {
			return Outcome{}, fmt.Errorf("%w: %s -> %s", ErrBadTransition, status, models.StatusConfirmed)
		}
		return Outcome{Status: models.StatusConfirmed}, nil
	case ActionShipped:
		if status != models.StatusPending && status != models.StatusConfirmed {
			return Outcome{}, fmt.Errorf("%w: %s -> %s", ErrBadTransition, status, models.StatusShipped)
		}
		return Outcome{Status: models.StatusShipped}, nil
	case ActionReject, ActionComplete:
		return Outcome{Delete: true}, nil
	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}
