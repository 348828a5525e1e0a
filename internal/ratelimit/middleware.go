package ratelimit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/af-corp/voicechat-gateway/internal/config"
	"github.com/af-corp/voicechat-gateway/internal/httputil"
	"github.com/af-corp/voicechat-gateway/internal/telemetry"
)

const (
	headerRateLimitRequests          = "X-RateLimit-Limit-Requests"
	headerRateLimitRemainingRequests = "X-RateLimit-Remaining-Requests"
	headerRateLimitReset             = "X-RateLimit-Reset-Requests"
	headerRetryAfter                 = "Retry-After"
)

// Middleware enforces the named rate class's budget per client key. A denied
// request is answered before any handler work, so no upstream call or state
// mutation can happen for it.
func Middleware(limiter Limiter, class string, limits func() config.LimitsConfig, metrics *telemetry.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := httputil.RequestIDFrom(r)

			cfg := limits()
			window := cfg.Window
			if window <= 0 {
				window = time.Minute
			}
			budget := int64(cfg.Budget(class))

			key := class + ":" + httputil.ClientKey(r)
			result, _ := limiter.Check(r.Context(), key, budget, window)

			w.Header().Set(headerRateLimitRequests, strconv.FormatInt(budget, 10))
			w.Header().Set(headerRateLimitRemainingRequests, strconv.FormatInt(result.Remaining, 10))
			w.Header().Set(headerRateLimitReset, result.ResetAt.Format(time.RFC3339))

			if !result.Allowed {
				slog.Warn("rate limit exceeded",
					"request_id", reqID,
					"class", class,
					"client", httputil.ClientKey(r),
					"limit", budget,
				)
				if metrics != nil {
					metrics.RecordRateLimitHit(class)
				}
				w.Header().Set(headerRetryAfter, strconv.Itoa(int(result.RetryAfter.Seconds())))
				httputil.WriteKind(w, reqID, httputil.KindRateLimit,
					fmt.Sprintf("Rate limit exceeded: %d requests per minute. Retry after %s", budget, result.ResetAt.Format(time.RFC3339)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
