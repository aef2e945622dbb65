package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/shared"
)

// Actor is the authenticated caller of an operation
type Actor struct {
	UserID       uuid.UUID
	RestaurantID uuid.UUID
}

// Validate checks the caller is identified
func (a Actor) Validate() error {
	if a.UserID == uuid.Nil {
		return shared.ErrUnauthorized
	}
	return nil
}

// AccessChecker answers whether a user may act on a restaurant's inventory.
// Role-based rules live behind it; callers only consult it as a precondition.
type AccessChecker interface {
	UserHasAccess(ctx context.Context, restaurantID, userID uuid.UUID) (bool, error)
}

// RequireAccess returns shared.ErrUnauthorized unless the checker grants access.
func RequireAccess(ctx context.Context, checker AccessChecker, restaurantID uuid.UUID, actor Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if restaurantID == uuid.Nil {
		return shared.ErrUnauthorized
	}
	ok, err := checker.UserHasAccess(ctx, restaurantID, actor.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrUnauthorized
	}
	return nil
}
