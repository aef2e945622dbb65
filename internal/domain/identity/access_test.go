package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticChecker struct {
	allowed bool
	err     error
	calls   int
}

func (s *staticChecker) UserHasAccess(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	s.calls++
	return s.allowed, s.err
}

func TestRequireAccess(t *testing.T) {
	ctx := context.Background()
	restaurantID := uuid.New()
	actor := Actor{UserID: uuid.New(), RestaurantID: restaurantID}

	t.Run("granted", func(t *testing.T) {
		checker := &staticChecker{allowed: true}
		assert.NoError(t, RequireAccess(ctx, checker, restaurantID, actor))
		assert.Equal(t, 1, checker.calls)
	})

	t.Run("denied", func(t *testing.T) {
		err := RequireAccess(ctx, &staticChecker{}, restaurantID, actor)
		assert.True(t, errors.Is(err, shared.ErrUnauthorized))
	})

	t.Run("anonymous actor is never checked", func(t *testing.T) {
		checker := &staticChecker{allowed: true}
		err := RequireAccess(ctx, checker, restaurantID, Actor{})
		assert.True(t, errors.Is(err, shared.ErrUnauthorized))
		assert.Zero(t, checker.calls)
	})

	t.Run("checker failure propagates", func(t *testing.T) {
		boom := errors.New("directory unavailable")
		err := RequireAccess(ctx, &staticChecker{err: boom}, restaurantID, actor)
		assert.ErrorIs(t, err, boom)
	})
}

type memberSet map[[2]uuid.UUID]bool

func (m memberSet) Exists(_ context.Context, restaurantID, userID uuid.UUID) (bool, error) {
	return m[[2]uuid.UUID{restaurantID, userID}], nil
}

func (m memberSet) Save(_ context.Context, member *RestaurantMember) error {
	m[[2]uuid.UUID{member.RestaurantID, member.UserID}] = true
	return nil
}

func TestMembershipAccessChecker(t *testing.T) {
	ctx := context.Background()
	repo := memberSet{}
	restaurantID, userID := uuid.New(), uuid.New()

	m, err := NewRestaurantMember(restaurantID, userID, MemberRoleCook)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, m))

	checker := NewMembershipAccessChecker(repo)
	ok, err := checker.UserHasAccess(ctx, restaurantID, userID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = checker.UserHasAccess(ctx, uuid.New(), userID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRestaurantMember(t *testing.T) {
	_, err := NewRestaurantMember(uuid.New(), uuid.New(), "dishwasher")
	assert.Error(t, err)
	_, err = NewRestaurantMember(uuid.Nil, uuid.New(), MemberRoleOwner)
	assert.Error(t, err)
}
