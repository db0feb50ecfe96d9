package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "roster-lab/errors"

	"github.com/cenkalti/backoff/v5"
	"github.com/dgraph-io/badger/v4"
)

// retryOnConflict replays op while Badger reports an optimistic conflict, with
// a jittered exponential backoff and at most maxAttempts calls. Running out of
// attempts yields ErrConflict; any other error stops at once.
func retryOnConflict[T any](ctx context.Context, log *slog.Logger, target string,
	maxAttempts int, delay time.Duration, op func() (T, error)) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = delay
	policy.MaxInterval = 16 * delay

	attempt := 0
	result, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		result, err := op()
		switch {
		case err == nil:
			return result, nil
		case errors.Is(err, badger.ErrConflict):
			log.Debug("Write conflict, retrying", "target", target, "attempt", attempt)
			return result, err
		default:
			return result, backoff.Permanent(err)
		}
	}, backoff.WithBackOff(policy), backoff.WithMaxTries(uint(max(1, maxAttempts))))

	if errors.Is(err, badger.ErrConflict) {
		var zero T
		return zero, fmt.Errorf("%w: %s after %d attempts", apperrors.ErrConflict, target, attempt)
	}
	return result, err
}
