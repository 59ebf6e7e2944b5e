package connection

import (
	"context"
	"time"
)

func hasError(err error) bool {
	return err != nil
}

func isEmpty(data string) bool {
	return len(data) == 0
}

// deadline picks the earlier of the context deadline and now+timeout. A zero
// time clears any previous deadline.
func deadline(ctx context.Context, timeout time.Duration) time.Time {
	var limit time.Time

	if timeout > 0 {
		limit = time.Now().Add(timeout)
	}

	if ctxDeadline, ok := ctx.Deadline(); ok && (limit.IsZero() || ctxDeadline.Before(limit)) {
		limit = ctxDeadline
	}

	return limit
}
