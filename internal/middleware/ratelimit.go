package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// idleLimiterTTL is how long a client's bucket survives without requests.
const idleLimiterTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client key.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

// NewRateLimiter allows perMinute requests per client per minute, with
// bursts of up to perMinute. A non-positive perMinute disables limiting.
func NewRateLimiter(perMinute int) *RateLimiter {
	limit := rate.Inf
	burst := 0
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / time.Minute.Seconds())
		burst = perMinute
	}
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		limit:    limit,
		burst:    burst,
		now:      time.Now,
	}
}

// Allow reports whether key may make a request now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cl, ok := rl.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = cl
	}
	cl.lastSeen = now
	allowed := cl.limiter.AllowN(now, 1)

	// Sweep idle clients while the lock is held anyway. The map stays
	// small for a share-link endpoint so a full scan is fine.
	for k, c := range rl.limiters {
		if now.Sub(c.lastSeen) > idleLimiterTTL {
			delete(rl.limiters, k)
		}
	}
	return allowed
}

// Len reports how many clients currently hold a bucket.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Handler returns a middleware that answers 429 Too Many Requests once the
// client's bucket is empty. Clients are keyed by IP; wire it after chi's
// RealIP middleware so proxies are accounted for.
func (rl *RateLimiter) Handler(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			if !rl.Allow(key) {
				log.WarnContext(r.Context(), "rate limit exceeded", "ip", key, "path", r.URL.Path)
				retry := 60
				if rl.limit > 0 && rl.limit != rate.Inf {
					retry = max(1, int(1/float64(rl.limit)))
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewClientAddr returns chi's RealIP when trustProxy is set, so RemoteAddr
// comes from X-Forwarded-For / X-Real-IP. Otherwise RemoteAddr stays the
// peer address and those headers cannot move a client to a fresh bucket.
func NewClientAddr(trustProxy bool) func(http.Handler) http.Handler {
	if trustProxy {
		return chimiddleware.RealIP
	}
	return func(next http.Handler) http.Handler { return next }
}

// clientIP strips the port from RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
