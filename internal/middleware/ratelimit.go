package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var log = logrus.StandardLogger().WithFields(logrus.Fields{
	"component": "middleware",
})

// idleVisitor is how long a client's limiter is kept after its last request.
const idleVisitor = 5 * time.Minute

type RateLimit struct {
	RequestsPerMinute float64
	Burst             int

	// TrustedProxies are the peers whose X-Real-IP and X-Forwarded-For
	// headers name the client. Everyone else is keyed on RemoteAddr.
	TrustedProxies []netip.Prefix
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands every client its own token bucket.
type RateLimiter struct {
	limit     RateLimit
	onLimited func(route string)

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	clockNow  func() time.Time
}

// NewRateLimiter returns nil when limit allows unlimited traffic; a nil
// RateLimiter's middleware passes every request through.
func NewRateLimiter(limit RateLimit, onLimited func(route string)) *RateLimiter {
	if limit.RequestsPerMinute <= 0 {
		return nil
	}
	if limit.Burst <= 0 {
		limit.Burst = 1
	}
	return &RateLimiter{
		limit:     limit,
		onLimited: onLimited,
		visitors:  make(map[string]*visitor),
		clockNow:  time.Now,
	}
}

func (r *RateLimiter) Middleware(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if r == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			id := clientID(req, r.limit.TrustedProxies)
			if !r.allow(id) {
				log.WithFields(logrus.Fields{"client": id, "route": route}).Info("rate limited")
				if r.onLimited != nil {
					r.onLimited(route)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "too many requests"})
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func (r *RateLimiter) allow(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clockNow()
	if now.Sub(r.lastSweep) > idleVisitor {
		for k, v := range r.visitors {
			if now.Sub(v.lastSeen) > idleVisitor {
				delete(r.visitors, k)
			}
		}
		r.lastSweep = now
	}

	v, ok := r.visitors[id]
	if !ok {
		perSecond := r.limit.RequestsPerMinute / 60.0
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(perSecond), r.limit.Burst)}
		r.visitors[id] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// clientID names the client a request is charged to. Forwarding headers
// count only when the direct peer is a trusted proxy; X-Forwarded-For is
// read right to left and the first hop outside the trusted set wins.
func clientID(r *http.Request, trusted []netip.Prefix) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	peer, err := netip.ParseAddr(host)
	if err != nil || !contains(trusted, peer) {
		return host
	}

	if ip, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return ip.Unmap().String()
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		if !contains(trusted, hop) {
			return hop.Unmap().String()
		}
	}
	return host
}

func contains(prefixes []netip.Prefix, addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
