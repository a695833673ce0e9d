package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	"github.com/Temutjin2k/kekelink/pkg/logger"
	wrap "github.com/Temutjin2k/kekelink/pkg/logger/wrapper"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "kekelink"

// Claims is the payload of an access token.
type Claims struct {
	UserID int64          `json:"user_id"`
	Name   string         `json:"name,omitempty"`
	Role   types.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 access tokens for the HTTP API.
type TokenService struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
	log       logger.Logger
}

func NewTokenService(secret string, accessTTL time.Duration, log logger.Logger) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("auth: empty signing secret")
	}
	if accessTTL <= 0 {
		return nil, errors.New("auth: access ttl must be positive")
	}
	return &TokenService{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		now:       time.Now,
		log:       log,
	}, nil
}

// Issue signs an access token for user and returns it with its expiry.
func (s *TokenService) Issue(ctx context.Context, user models.User) (string, time.Time, error) {
	ctx = wrap.WithAction(ctx, types.ActionIssueToken)
	if user.ID <= 0 || user.Role == "" {
		return "", time.Time{}, wrap.Error(ctx, types.ErrInvalidIdentity)
	}

	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.accessTTL)

	claims := Claims{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, wrap.Error(ctx, fmt.Errorf("sign token: %w", err))
	}

	s.log.Debug(ctx, "access token issued", "user_id", user.ID, "role", user.Role, "expires_at", expiresAt)
	return token, expiresAt, nil
}

// Validate parses token and returns the user it was issued for.
// Expired tokens yield types.ErrExpiredToken, anything else types.ErrInvalidToken.
func (s *TokenService) Validate(ctx context.Context, token string) (*models.User, error) {
	ctx = wrap.WithAction(ctx, types.ActionValidateToken)

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, wrap.Error(ctx, types.ErrExpiredToken)
	case err != nil || !parsed.Valid:
		return nil, wrap.Error(ctx, types.ErrInvalidToken)
	}

	if claims.UserID <= 0 || claims.Role == "" {
		return nil, wrap.Error(ctx, types.ErrInvalidToken)
	}

	return &models.User{ID: claims.UserID, Name: claims.Name, Role: claims.Role}, nil
}
