package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test-issuer",
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	svc := newTestJWTService()
	restaurantID, userID := uuid.New(), uuid.New()

	token, err := svc.GenerateAccessToken(GenerateTokenInput{
		RestaurantID: restaurantID,
		UserID:       userID,
		Username:     "chef",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), token.ExpiresAt, 5*time.Second)

	claims, err := svc.ValidateAccessToken(token.AccessToken)
	require.NoError(t, err)

	gotRestaurant, err := claims.RestaurantUUID()
	require.NoError(t, err)
	gotUser, err := claims.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, restaurantID, gotRestaurant)
	assert.Equal(t, userID, gotUser)
	assert.Equal(t, "chef", claims.Username)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: -time.Minute,
		Issuer:                "test-issuer",
	})
	token, err := svc.GenerateAccessToken(GenerateTokenInput{RestaurantID: uuid.New(), UserID: uuid.New()})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	token, err := newTestJWTService().GenerateAccessToken(GenerateTokenInput{RestaurantID: uuid.New(), UserID: uuid.New()})
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "another-secret-key-of-32-characters", Issuer: "test-issuer", AccessTokenExpiration: time.Minute})
	_, err = other.ValidateAccessToken(token.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_WrongIssuer(t *testing.T) {
	token, err := newTestJWTService().GenerateAccessToken(GenerateTokenInput{RestaurantID: uuid.New(), UserID: uuid.New()})
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", Issuer: "someone-else", AccessTokenExpiration: time.Minute})
	_, err = other.ValidateAccessToken(token.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	_, err := newTestJWTService().ValidateAccessToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_MissingClaims(t *testing.T) {
	svc := newTestJWTService()
	sign := func(c *Claims) string {
		c.Issuer = "test-issuer"
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Minute))
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(svc.secret)
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name   string
		claims *Claims
		want   error
	}{
		{"no restaurant", &Claims{UserID: uuid.NewString()}, ErrMissingRestaurantID},
		{"no user", &Claims{RestaurantID: uuid.NewString()}, ErrMissingUserID},
		{"malformed restaurant", &Claims{RestaurantID: "kitchen-1", UserID: uuid.NewString()}, ErrInvalidClaims},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(sign(tt.claims))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
