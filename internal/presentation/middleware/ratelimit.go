package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
)

// rateLimitWindow is the rolling window the per-IP limit applies to.
const rateLimitWindow = time.Minute

// RateLimiter limits each client IP to requestsPerMinute requests per
// rolling minute. Rejected requests get a 429 with a Retry-After header
// and a JSON body.
func RateLimiter(requestsPerMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(
		requestsPerMinute,
		rateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rateLimitExceeded),
	)
}

func rateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	retryAfter := int(rateLimitWindow.Seconds())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error":       "Rate limit exceeded",
		"message":     "Too many requests. Please try again later.",
		"retry_after": retryAfter,
	})
}
