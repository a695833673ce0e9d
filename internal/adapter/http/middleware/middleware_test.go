package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	"github.com/Temutjin2k/kekelink/pkg/logger"
	wrap "github.com/Temutjin2k/kekelink/pkg/logger/wrapper"
	"github.com/stretchr/testify/require"
)

type fakeValidator struct {
	users map[string]*models.User
	err   error
}

func (f fakeValidator) Validate(_ context.Context, token string) (*models.User, error) {
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	if f.err != nil {
		return nil, f.err
	}
	return nil, types.ErrInvalidToken
}

type fakeLimiter struct {
	allow bool
	err   error
	seen  []string
}

func (f *fakeLimiter) Allow(_ context.Context, scope, clientID string) (bool, time.Duration, error) {
	f.seen = append(f.seen, scope+"|"+clientID)
	return f.allow, 1500 * time.Millisecond, f.err
}

// windowLimiter allows limit requests per scope and client, like one
// fixed window of the Redis limiter.
type windowLimiter struct {
	limit int
	seen  map[string]int
}

func (f *windowLimiter) Allow(_ context.Context, scope, clientID string) (bool, time.Duration, error) {
	if f.seen == nil {
		f.seen = map[string]int{}
	}
	key := scope + "|" + clientID
	f.seen[key]++
	return f.seen[key] <= f.limit, time.Minute, nil
}

func newMiddleware(limiter RateLimiter, proxies ...string) *Middleware {
	v := fakeValidator{users: map[string]*models.User{
		"admin-token":     {ID: 1, Role: types.RoleAdmin},
		"passenger-token": {ID: 2, Role: types.RolePassenger},
	}}
	var trusted []netip.Prefix
	for _, p := range proxies {
		trusted = append(trusted, netip.MustParsePrefix(p))
	}
	return NewMiddleware(v, limiter, trusted, logger.Discard())
}

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthAndRequireRoles(t *testing.T) {
	m := newMiddleware(nil)
	h := m.Auth(m.RequireRoles(ok, types.RoleAdmin))

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"bad header", "Token abc", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"wrong role", "Bearer passenger-token", http.StatusForbidden},
		{"admin", "Bearer admin-token", http.StatusNoContent},
		{"case insensitive scheme", "bearer admin-token", http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/driver-stats", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			require.Equal(t, tc.want, serve(h, req).Code)
		})
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	m := NewMiddleware(fakeValidator{err: types.ErrExpiredToken}, nil, nil, logger.Discard())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rec := serve(m.Auth(http.HandlerFunc(ok)), req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "token expired")
}

func TestAuth_AnonymousReachesPublicRoutes(t *testing.T) {
	m := newMiddleware(nil)
	var user *models.User
	h := m.Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user = models.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/reports/hotspots", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, user.IsAnonymous())
}

func TestRequestID(t *testing.T) {
	m := newMiddleware(nil)
	var seen string
	h := m.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = wrap.RequestID(r.Context())
	}))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	require.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = serve(h, req)
	require.Equal(t, "abc-123", seen)
	require.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRecover(t *testing.T) {
	m := newMiddleware(nil)
	h := m.Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "close", rec.Header().Get("Connection"))
	require.NotContains(t, rec.Body.String(), "boom")
}

func TestRateLimit(t *testing.T) {
	limiter := &fakeLimiter{allow: true}
	// httptest requests come from 192.0.2.1.
	m := newMiddleware(limiter, "192.0.2.0/24", "172.16.0.0/12")
	h := m.RateLimit("reports", ok)

	req := httptest.NewRequest(http.MethodPost, "/api/reports/safety", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.9, 172.16.0.1")
	require.Equal(t, http.StatusNoContent, serve(h, req).Code)
	require.Equal(t, []string{"reports|10.0.0.9"}, limiter.seen)

	limiter.allow = false
	rec := serve(h, httptest.NewRequest(http.MethodPost, "/api/reports/safety", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "2", rec.Header().Get("Retry-After"))
	require.Equal(t, "reports|192.0.2.1", limiter.seen[1])
}

func TestRateLimit_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	h := newMiddleware(&windowLimiter{limit: 2}).RateLimit("reports", ok)

	var codes []int
	for i := range 5 {
		req := httptest.NewRequest(http.MethodPost, "/api/reports/safety", nil)
		req.RemoteAddr = "203.0.113.50:41000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		codes = append(codes, serve(h, req).Code)
	}

	require.Equal(t, []int{
		http.StatusNoContent,
		http.StatusNoContent,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, codes)
}

func TestRateLimit_TrustedProxyChain(t *testing.T) {
	limiter := &fakeLimiter{allow: true}
	h := newMiddleware(limiter, "10.0.0.0/8").RateLimit("fares", ok)

	send := func(remote, xff string) {
		req := httptest.NewRequest(http.MethodPost, "/api/fares/estimate", nil)
		req.RemoteAddr = remote
		if xff != "" {
			req.Header.Set("X-Forwarded-For", xff)
		}
		serve(h, req)
	}

	// A spoofed left-most hop is skipped; the proxy appended the real client.
	send("10.0.0.2:80", "6.6.6.6, 198.51.100.7, 10.0.0.3")
	// Garbage stops the walk at the last trusted hop.
	send("10.0.0.2:80", "not-an-ip")
	// Trusted proxy without the header keys on the proxy itself.
	send("10.0.0.2:80", "")
	// Untrusted peer keeps its own address.
	send("203.0.113.9:5000", "198.51.100.7")

	require.Equal(t, []string{
		"fares|198.51.100.7",
		"fares|10.0.0.2",
		"fares|10.0.0.2",
		"fares|203.0.113.9",
	}, limiter.seen)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	m := newMiddleware(&fakeLimiter{err: errors.New("redis down")})
	rec := serve(m.RateLimit("reports", ok), httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimit_NilLimiter(t *testing.T) {
	m := newMiddleware(nil)
	rec := serve(m.RateLimit("reports", ok), httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMetricsAndLogging_PassThrough(t *testing.T) {
	m := newMiddleware(nil)
	h := m.Metrics("kekelink-test")(m.Logging(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	require.Equal(t, http.StatusTeapot, serve(h, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}
