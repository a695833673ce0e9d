package middleware

import (
	"context"
	"net/netip"
	"time"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/pkg/logger"
)

type (
	TokenValidator interface {
		Validate(ctx context.Context, token string) (*models.User, error)
	}

	// RateLimiter counts requests per scope and client. A nil limiter
	// disables rate limiting.
	RateLimiter interface {
		Allow(ctx context.Context, scope, clientID string) (bool, time.Duration, error)
	}

	Middleware struct {
		auth    TokenValidator
		limiter RateLimiter
		proxies []netip.Prefix
		log     logger.Logger
	}
)

// NewMiddleware builds the middleware set. X-Forwarded-For is only believed
// when the peer address falls inside one of proxies.
func NewMiddleware(auth TokenValidator, limiter RateLimiter, proxies []netip.Prefix, log logger.Logger) *Middleware {
	return &Middleware{
		auth:    auth,
		limiter: limiter,
		proxies: proxies,
		log:     log,
	}
}
