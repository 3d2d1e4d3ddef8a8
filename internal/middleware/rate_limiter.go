package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"fanpulse/internal/response"
	"fanpulse/internal/services"

	"go.uber.org/zap"
)

// RateLimiter applies a fixed-window per-client request limit keyed by IP
type RateLimiter struct {
	builder *response.Builder
	logger  *zap.Logger

	limit  int
	window time.Duration

	mu      sync.Mutex
	clients map[string]*clientWindow

	stopOnce sync.Once
	stopCh   chan struct{}
}

type clientWindow struct {
	count   int
	resetAt time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window
func NewRateLimiter(limit int, window time.Duration, builder *response.Builder, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		builder: builder,
		logger:  logger,
		limit:   limit,
		window:  window,
		clients: make(map[string]*clientWindow),
		stopCh:  make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			rl.mu.Lock()
			for key, window := range rl.clients {
				if now.After(window.resetAt) {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

// Middleware enforces the limit
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)

		rl.mu.Lock()
		window, ok := rl.clients[key]
		now := time.Now()
		if !ok || now.After(window.resetAt) {
			window = &clientWindow{resetAt: now.Add(rl.window)}
			rl.clients[key] = window
		}
		window.count++
		exceeded := window.count > rl.limit
		rl.mu.Unlock()

		if exceeded {
			rl.logger.Warn("rate limit exceeded",
				zap.String("client", key),
				zap.String("path", r.URL.Path),
			)
			rl.builder.WriteError(w, r, services.NewRateLimitError("too many requests", map[string]interface{}{
				"limit":  rl.limit,
				"window": rl.window.String(),
			}))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Stop terminates the cleanup loop
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
