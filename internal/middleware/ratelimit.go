package middleware

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// maxLimiters — при превышении кэш лимитеров сбрасывается целиком.
const maxLimiters = 10000

type limiterCache struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newLimiterCache(rps float64, burst int) *limiterCache {
	return &limiterCache{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

func (lc *limiterCache) get(key string) *rate.Limiter {
	lc.mu.RLock()
	l, ok := lc.limiters[key]
	lc.mu.RUnlock()
	if ok {
		return l
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()
	if l, ok = lc.limiters[key]; ok {
		return l
	}
	if len(lc.limiters) >= maxLimiters {
		lc.limiters = make(map[string]*rate.Limiter)
	}
	l = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = l
	return l
}

// RateLimit ограничивает частоту запросов с одного IP (RemoteAddr; за прокси его выставляет chi middleware.RealIP).
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	cache := newLimiterCache(rps, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cache.get(clientIP(r)).Allow() {
				logger.Warnw("rate limit exceeded", "ip", clientIP(r), "path", r.URL.Path)
				writeError(w, http.StatusTooManyRequests, "Too many requests, please slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
