// Package retry provides exponential backoff and retry logic for handling
// transient failures in browser operations, particularly page navigation.
//
// Features:
//   - Exponential and constant backoff strategies
//   - Jitter so retries don't land on a schedule
//   - Context support for cancellation
//   - Configurable retry predicates tied to harvest error types
//
// Basic usage:
//
//	// Simple retry with defaults
//	err := retry.Do(func() error {
//		return page.Navigate(searchURL)
//	}, nil)
//
//	// Custom configuration
//	cfg := &retry.Config{
//		MaxAttempts: 5,
//		Backoff: &retry.ExponentialBackoff{
//			BaseDelay:    2 * time.Second,
//			MaxDelay:     30 * time.Second,
//			Multiplier:   2.0,
//			JitterFactor: 0.1,
//		},
//		RetryIf: retry.DefaultRetryIf,
//		Logger:  logger.GetLogger(),
//	}
//	err := retry.Do(operation, cfg)
//
//	// Navigation-tuned retrier built from the retry config section
//	retrier := retry.NewNavigationRetrier(&cfg.Retry, logger.GetLogger())
//	err := retrier.Do(func() error {
//		return page.Navigate(searchURL)
//	})
//
// Only navigation and timeout errors are retried by the default predicate;
// filter, parsing and storage errors are returned immediately.
package retry
