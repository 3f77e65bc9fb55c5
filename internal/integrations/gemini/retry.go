// Package gemini provides the optional Gemini-backed label suggester.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// jitterRatio spreads retry delays by up to 25% so concurrent batch
// workers hitting the same quota don't retry in lockstep.
const jitterRatio = 0.25

// RetryConfig bounds the exponential backoff applied to transient
// Gemini API failures.
type RetryConfig struct {
	MaxRetries int           // retries after the initial attempt
	BaseDelay  time.Duration // delay before the first retry
	MaxDelay   time.Duration // cap on any single delay
}

// DefaultRetryConfig returns the backoff the suggester uses:
// 5 retries starting at 1s, capped at 60s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 5,
		BaseDelay:  1 * time.Second,
		MaxDelay:   60 * time.Second,
	}
}

// isRetryableError reports whether err is a transient Gemini API error
// worth retrying. Both transports the SDK can use are checked by type:
// *googleapi.Error for REST (HTTP 429 / 5xx) and gRPC status codes
// (ResourceExhausted, Unavailable, Internal). Other client errors fail
// immediately.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 429 || (gerr.Code >= 500 && gerr.Code < 600)
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.ResourceExhausted, codes.Unavailable, codes.Internal:
			return true
		}
	}

	return false
}

// backoffDelay returns the jittered delay before the given retry
// attempt (0-based): base * 2^attempt plus jitter, capped at MaxDelay.
func backoffDelay(cfg RetryConfig, attempt int) time.Duration {
	delay := cfg.BaseDelay << uint(attempt)
	delay += time.Duration(rand.Float64() * jitterRatio * float64(delay))
	if delay > cfg.MaxDelay || delay <= 0 {
		delay = cfg.MaxDelay
	}
	return delay
}

// withRetry executes fn, backing off and retrying on transient errors
// until cfg.MaxRetries is exhausted or ctx is cancelled.
func withRetry[T any](ctx context.Context, cfg RetryConfig, operation string, fn func() (T, error)) (T, error) {
	var zero T

	for attempt := 0; ; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		if !isRetryableError(err) {
			return zero, err
		}

		if attempt == cfg.MaxRetries {
			return zero, fmt.Errorf("%s failed after %d retries: %w", operation, cfg.MaxRetries, err)
		}

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("%s: context cancelled during retry: %w", operation, ctx.Err())
		case <-time.After(backoffDelay(cfg, attempt)):
		}
	}
}
