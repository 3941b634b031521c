package httpclient

import (
	"errors"
	"net/http"
	"time"

	"fulfillment-tracker/internal/core/logger"

	"go.uber.org/zap"
)

// ErrAuthMissing is returned before any network call when no bearer token is
// configured. Fatal to the attempted action, not to the process.
var ErrAuthMissing = errors.New("no auth token available")

// LoggingRoundTripper captures request details for debugging.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
}

// RoundTrip executes the request and logs details.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	logger.Get().Debug("HTTP Request Started",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	)

	resp, err := lrt.Proxied.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		logger.Get().Error("HTTP Request Failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Get().Debug("HTTP Request Completed",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

// BearerRoundTripper attaches a bearer token to every outgoing request and
// refuses to send anything while no token is configured, so a missing
// credential fails fast client-side instead of producing a 401 round trip.
type BearerRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
	// Token is the bearer credential. Empty means unauthenticated.
	Token string
}

// RoundTrip injects the Authorization header and executes the request.
func (brt *BearerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if brt.Token == "" {
		return nil, ErrAuthMissing
	}

	// RoundTrippers must not mutate the caller's request.
	authed := req.Clone(req.Context())
	authed.Header.Set("Authorization", "Bearer "+brt.Token)

	return brt.Proxied.RoundTrip(authed)
}

// NewClient returns an http.Client with logging middleware.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &LoggingRoundTripper{
			Proxied: http.DefaultTransport,
		},
		Timeout: timeout,
	}
}

// NewBearerClient returns an http.Client that authenticates every request
// with the given bearer token, with logging middleware underneath.
func NewBearerClient(token string, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &BearerRoundTripper{
			Proxied: &LoggingRoundTripper{
				Proxied: http.DefaultTransport,
			},
			Token: token,
		},
		Timeout: timeout,
	}
}
