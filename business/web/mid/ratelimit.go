package mid

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/web"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when a request can't be admitted by the limiter.
var ErrRateLimited = errors.New("too many requests")

// maxRateDelay is the longest a request waits for its turn before it is
// refused.
const maxRateDelay = 2 * time.Second

// RateLimit admits perSecond requests with the specified burst across every
// route it wraps. Requests over the limit wait for their reservation, up to
// maxRateDelay, and are refused with a 429 beyond that.
func RateLimit(perSecond float64, burst int) web.Middleware {
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			res := limiter.Reserve()
			if !res.OK() {
				return errs.NewTrusted(ErrRateLimited, http.StatusTooManyRequests)
			}

			delay := res.Delay()
			if delay > maxRateDelay {
				res.Cancel()
				return errs.NewTrusted(ErrRateLimited, http.StatusTooManyRequests)
			}

			if delay > 0 {
				timer := time.NewTimer(delay)
				defer timer.Stop()

				select {
				case <-timer.C:
				case <-ctx.Done():
					res.Cancel()
					return ctx.Err()
				}
			}

			// Call the next handler.
			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
