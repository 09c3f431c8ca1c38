package httpmw

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	bucketIdleTTL = 10 * time.Minute
	sweepInterval = time.Minute
)

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// ClientLimiter keeps one token bucket per client key for flag submissions.
// Buckets idle for bucketIdleTTL are dropped, at most once per sweepInterval.
type ClientLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func NewClientLimiter(limit rate.Limit, burst int) *ClientLimiter {
	return &ClientLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		burst:   burst,
		now:     time.Now,
	}
}

// Allow spends a token from key's bucket. When the bucket is empty it reports
// how long until the next token, or 0 if none will ever arrive.
func (l *ClientLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= sweepInterval {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > bucketIdleTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now

	res := b.lim.ReserveN(now, 1)
	if !res.OK() {
		return false, 0
	}
	if wait := res.DelayFrom(now); wait > 0 {
		res.CancelAt(now)
		return false, wait
	}
	return true, 0
}

func (l *ClientLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// LimitByClient answers 429 once the remote host spends its budget. Behind
// the identity proxy chi's RealIP must run first so RemoteAddr is the client.
func LimitByClient(l *ClientLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			ok, wait := l.Allow(host)
			if !ok {
				if wait > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				}
				http.Error(w, "too many submissions", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
