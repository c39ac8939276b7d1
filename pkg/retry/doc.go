// Package retry provides exponential backoff and retry logic for transient
// failures when talking to the Commons API and file endpoints.
//
// Rate-limit responses (HTTP 429) can be given their own, longer backoff
// schedule via ErrorTypeBackoff, while network and server errors retry on the
// default schedule:
//
//	backoff := retry.NewErrorTypeBackoff(
//		&retry.ExponentialBackoff{BaseDelay: 4 * time.Second, MaxDelay: 64 * time.Second, Multiplier: 2.0},
//		&retry.ExponentialBackoff{BaseDelay: time.Second, MaxDelay: 8 * time.Second, Multiplier: 2.0},
//	)
//	err := retry.Do(operation, &retry.Config{
//		MaxAttempts: 5,
//		Backoff:     backoff,
//		RetryIf:     retry.DefaultRetryIf,
//		Context:     ctx,
//	})
//
// All waits respect the configured context; cancellation aborts the retry
// loop immediately.
package retry
