package feed

import "context"

// Await issues one Load and blocks until its completion fires or ctx is done.
func Await(ctx context.Context, loader Loader) ([]Item, error) {
	done := make(chan Result, 1)
	loader.Load(ctx, func(result Result) {
		done <- result
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-done:
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Items, nil
	}
}
