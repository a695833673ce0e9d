package auth

import (
	"context"
	"testing"
	"time"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	"github.com/Temutjin2k/kekelink/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *TokenService {
	t.Helper()
	s, err := NewTokenService("test-secret", time.Hour, logger.Discard())
	require.NoError(t, err)
	return s
}

func TestNewTokenService_RejectsBadConfig(t *testing.T) {
	_, err := NewTokenService("", time.Hour, logger.Discard())
	require.Error(t, err)

	_, err = NewTokenService("secret", 0, logger.Discard())
	require.Error(t, err)
}

func TestIssueAndValidate(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	token, exp, err := s.Issue(ctx, models.User{ID: 7, Name: "Aisha", Role: types.RoleAdmin})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	user, err := s.Validate(ctx, token)
	require.NoError(t, err)
	require.Equal(t, int64(7), user.ID)
	require.Equal(t, "Aisha", user.Name)
	require.Equal(t, types.RoleAdmin, user.Role)
}

func TestIssue_RejectsIncompleteUser(t *testing.T) {
	s := newService(t)

	_, _, err := s.Issue(context.Background(), models.User{ID: 0, Role: types.RoleAdmin})
	require.ErrorIs(t, err, types.ErrInvalidIdentity)

	_, _, err = s.Issue(context.Background(), models.User{ID: 3})
	require.ErrorIs(t, err, types.ErrInvalidIdentity)
}

func TestValidate_Expired(t *testing.T) {
	s := newService(t)
	issued := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issued }

	token, _, err := s.Issue(context.Background(), models.User{ID: 1, Role: types.RoleAdmin})
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = s.Validate(context.Background(), token)
	require.ErrorIs(t, err, types.ErrExpiredToken)
}

func TestValidate_WrongSecret(t *testing.T) {
	s := newService(t)
	token, _, err := s.Issue(context.Background(), models.User{ID: 1, Role: types.RoleAdmin})
	require.NoError(t, err)

	other, err := NewTokenService("another-secret", time.Hour, logger.Discard())
	require.NoError(t, err)

	_, err = other.Validate(context.Background(), token)
	require.ErrorIs(t, err, types.ErrInvalidToken)
}

func TestValidate_RejectsOtherAlgorithms(t *testing.T) {
	s := newService(t)
	claims := Claims{
		UserID: 1,
		Role:   types.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = s.Validate(context.Background(), token)
	require.ErrorIs(t, err, types.ErrInvalidToken)
}

func TestValidate_Garbage(t *testing.T) {
	s := newService(t)
	_, err := s.Validate(context.Background(), "not.a.token")
	require.ErrorIs(t, err, types.ErrInvalidToken)
}
