package middleware

import (
	"net/http"
	"sync"
	"time"

	"novapos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ── Per-IP token bucket ───────────────────────────────────────────────────────

type visitante struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu     sync.Mutex
	ips    map[string]*visitante
	rps    rate.Limit
	burst  int
	maxAge time.Duration
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		ips:    make(map[string]*visitante),
		rps:    rate.Limit(rps),
		burst:  burst,
		maxAge: 10 * time.Minute,
	}
}

func (rl *RateLimiter) limiterPara(ip string, ahora time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	v, ok := rl.ips[ip]
	if !ok {
		v = &visitante{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.ips[ip] = v
	}
	v.lastSeen = ahora
	return v.limiter
}

// Middleware rejects requests over the bucket with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterPara(c.ClientIP(), time.Now()).Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierror.NewCode("rate_limited", "Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

// ── Purge ─────────────────────────────────────────────────────────────────────

const purgeInterval = 5 * time.Minute

// StartPurge drops buckets of IPs idle for longer than maxAge until stop
// is closed.
func (rl *RateLimiter) StartPurge(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				if n := rl.purgar(now); n > 0 {
					log.Debug().Int("purged", n).Msg("rate_limiter: idle entries purged")
				}
			}
		}
	}()
}

func (rl *RateLimiter) purgar(ahora time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	n := 0
	for ip, v := range rl.ips {
		if ahora.Sub(v.lastSeen) > rl.maxAge {
			delete(rl.ips, ip)
			n++
		}
	}
	return n
}
