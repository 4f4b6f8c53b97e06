// Package httputil provides HTTP utilities for the resolution engine
// client.
//
// # Retry
//
// [Retry] wraps HTTP requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Only errors wrapped in [RetryableError] are retried; everything else is
// returned immediately. The delay doubles after each failed attempt.
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return callEngine()
//	})
//
// Response caching lives in pkg/cache, keyed by source file content
// hashes rather than URLs, since engine calls are POSTs.
package httputil
