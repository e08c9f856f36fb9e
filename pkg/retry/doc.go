// Package retry provides bounded retry with backoff for browser operations.
//
// The status reader uses it for its single reload-and-retry: two attempts,
// no delay between them, and an OnRetry hook that reloads the page:
//
//	err := retry.Do(func() error {
//		el, err = drv.WaitVisible(ctx, xpath, wait)
//		return err
//	}, &retry.Config{
//		MaxAttempts: 2,
//		Backoff:     &retry.ConstantBackoff{},
//		OnRetry:     func(int, error) error { return drv.Reload(ctx) },
//		Context:     ctx,
//	})
//
// Store, config, auth and not-found errors are never retried by DefaultRetryIf.
package retry
