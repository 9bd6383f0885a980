package middlewares

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/CameronXie/nsa-protrack/internal/api/rest/response"
)

const (
	tooManyRequestsCode    = "too_many_requests"
	tooManyRequestsMessage = "Too many attempts, please try again later"

	visitorIdleTimeout = 10 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware throttles requests per client IP with a token bucket.
type RateLimitMiddleware struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
	logger   *slog.Logger
}

// NewRateLimitMiddleware allows perMinute requests per IP with the given burst.
func NewRateLimitMiddleware(perMinute, burst int, logger *slog.Logger) *RateLimitMiddleware {
	if perMinute <= 0 {
		perMinute = 1
	}
	if burst <= 0 {
		burst = 1
	}

	return &RateLimitMiddleware{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		now:      time.Now,
		logger:   logger,
	}
}

func (m *RateLimitMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		reservation := m.limiter(ip).ReserveN(m.now(), 1)
		if delay := reservation.DelayFrom(m.now()); delay > 0 {
			reservation.CancelAt(m.now())
			m.logger.WarnContext(r.Context(), "rate_limited", "ip", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			response.JSONErrorResponse(w, http.StatusTooManyRequests, tooManyRequestsCode, tooManyRequestsMessage)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *RateLimitMiddleware) limiter(ip string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, v := range m.visitors {
		if now.Sub(v.lastSeen) > visitorIdleTimeout {
			delete(m.visitors, k)
		}
	}

	v, ok := m.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.visitors[ip] = v
	}
	v.lastSeen = now

	return v.limiter
}

// clientIP prefers the first X-Forwarded-For hop, then the connection address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
