package middleware

import (
	"fmt"
	"net"
	"runtime/debug"
	"sync"
	"time"

	"github.com/abhissng/chargehub/blame"
	"github.com/abhissng/chargehub/utils/constant"
	"github.com/abhissng/chargehub/utils/helpers"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const minCleanupInterval = 100 * time.Millisecond

// clientLimiter holds the limiter and the last seen time for a client
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter manages rate limiters for all clients (IPs)
type IPRateLimiter struct {
	clients  map[string]*clientLimiter
	mu       *sync.Mutex
	rate     rate.Limit    // The rate of token generation (e.g., 10 requests per second)
	burst    int           // The maximum burst size (e.g., 100 requests)
	ttl      time.Duration // Time-to-live for inactive client entries
	stop     chan struct{}
	stopOnce sync.Once
}

// NewIPRateLimiter creates a new rate limiter manager. Each client IP gets its own token bucket;
// limiters idle for longer than ttl are dropped by a background sweep.
// r: The number of events allowed per second.
// b: The burst size (how many requests can be made in a short burst).
// ttl: How long to keep an IP's limiter in memory after its last request.
func NewIPRateLimiter(r rate.Limit, b int, ttl time.Duration) *IPRateLimiter {
	limiter := &IPRateLimiter{
		clients: make(map[string]*clientLimiter),
		mu:      &sync.Mutex{},
		rate:    r,
		burst:   b,
		ttl:     ttl,
		stop:    make(chan struct{}),
	}

	// Start a background goroutine to clean up old entries
	go limiter.cleanupClients()

	return limiter
}

// getLimiter retrieves or creates a limiter for a given IP address.
func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	client, exists := l.clients[ip]
	if !exists {
		// Create a new limiter for this IP
		client = &clientLimiter{
			limiter: rate.NewLimiter(l.rate, l.burst),
		}
		l.clients[ip] = client
	}

	// Update the last seen time
	client.lastSeen = time.Now()
	return client.limiter
}

// cleanupClients periodically removes limiters for inactive IPs.
func (l *IPRateLimiter) cleanupClients() {
	interval := l.ttl / 2
	if interval < minCleanupInterval {
		interval = minCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						helpers.Println(constant.ERROR, "exception: occurred in cleanupClients", "stack:", string(debug.Stack()))
						// Log the panic but continue cleanup loop
					}
				}()
				// Collect IPs to delete without holding lock for entire iteration
				var toDelete []string
				now := time.Now()
				l.mu.Lock()
				for ip, client := range l.clients {
					if now.Sub(client.lastSeen) > l.ttl {
						toDelete = append(toDelete, ip)
					}
				}
				for _, ip := range toDelete {
					delete(l.clients, ip)
				}
				l.mu.Unlock()
			}()
		}
	}
}

// StopCleanup stops the cleanup goroutine.
func (l *IPRateLimiter) StopCleanup() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
}

// Middleware returns the Gin middleware handler. Rejected requests get 429 with the
// too-many-requests error body.
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// RemoteAddr is not spoofable; trusted proxies are configured on the engine instead.
		ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err != nil {
			ip = c.Request.RemoteAddr
		}
		limiter := l.getLimiter(ip)

		if !limiter.Allow() {
			retryAfter := 1
			if l.rate > 0 && l.rate < 1 {
				retryAfter = int(1 / float64(l.rate))
			}
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", l.burst))
			AbortWithBlame(c, blame.TooManyRequestsError())
			return
		}

		c.Next()
	}
}
