// Package httputil provides retry plumbing for the GitHub API client.
//
// # Retry
//
// [Retry] wraps an operation with bounded retries. Two error wrappers control
// the timing:
//
//   - [RetryableError]: transient failures (network errors, 5xx responses).
//     Retried with exponential backoff from the base delay.
//   - [RetryAfterError]: failures where the provider names the wait — a rate
//     limit window about to reset, or a statistic still being computed.
//     Retried after exactly the carried delay.
//
// Any other error returns immediately. Callers decide the attempt budget;
// the fetch layer uses 3 attempts (2 retries) for rate limits and 4 attempts
// (3 retries) for still-computing statistics.
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return doRequest()
//	})
//
// Retries are invisible to callers of the fetch layer except as latency;
// the budgeted error only surfaces once attempts are exhausted.
package httputil
