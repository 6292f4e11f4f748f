package dispute

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnauthorized signals a missing authenticated user; the workflow fails closed.
	ErrUnauthorized = errors.New("dispute: unauthorized")
	// ErrNoItems signals an empty item list.
	ErrNoItems = errors.New("dispute: at least one item required")
	// ErrTooManyItems signals the round exceeds the selection cap.
	ErrTooManyItems = errors.New("dispute: at most 5 items per round")
	// ErrIncompleteItem signals an item missing a reason or instruction.
	ErrIncompleteItem = errors.New("dispute: item reason and instruction required")
	// ErrUnknownDelivery signals a delivery method outside premium|self.
	ErrUnknownDelivery = errors.New("dispute: unknown delivery method")
	// ErrNotFound signals no such round or item for this user.
	ErrNotFound = errors.New("dispute: not found")
	// ErrBadTransition signals an illegal status transition.
	ErrBadTransition = errors.New("dispute: invalid status transition")
)

// CooldownError rejects round creation while the 35-day wait is active.
type CooldownError struct {
	DaysLeft int
	NextAt   time.Time
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("dispute: cooldown active, come back in %d days", e.DaysLeft)
}
