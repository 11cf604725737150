package mcp

import (
	"crypto/subtle"
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultMaxBodyBytes int64 = 1 << 20
	defaultPerMinute          = 60
)

type HTTPHandlerConfig struct {
	AuthToken       string
	RateLimitPerMin int
	MaxBodyBytes    int64
}

// httpGate admits a request only with the configured bearer token, within
// the caller's per-minute allowance, and with a bounded body.
type httpGate struct {
	next    http.Handler
	token   []byte
	maxBody int64
	clients *clientLimiter
}

func newHTTPGate(next http.Handler, cfg HTTPHandlerConfig) *httpGate {
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &httpGate{
		next:    next,
		token:   []byte(strings.TrimSpace(cfg.AuthToken)),
		maxBody: maxBody,
		clients: newClientLimiter(cfg.RateLimitPerMin),
	}
}

func (g *httpGate) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	provided, ok := bearerToken(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	if len(g.token) == 0 || subtle.ConstantTimeCompare([]byte(provided), g.token) != 1 {
		writeJSONError(w, http.StatusForbidden, "invalid bearer token")
		return
	}
	if !g.clients.allow(clientKey(provided, r.RemoteAddr)) {
		w.Header().Set("Retry-After", strconv.Itoa(g.clients.retryAfterSecs()))
		writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}
	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, g.maxBody)
	}
	g.next.ServeHTTP(w, r)
}

func bearerToken(r *http.Request) (string, bool) {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	token, found := strings.CutPrefix(authz, "Bearer ")
	token = strings.TrimSpace(token)
	return token, found && token != ""
}

// clientKey scopes the allowance to one token from one host.
func clientKey(token, remoteAddr string) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(remoteAddr))
	if err != nil {
		host = strings.TrimSpace(remoteAddr)
	}
	if host == "" {
		host = "unknown"
	}
	return token + "|" + host
}

// clientLimiter keeps one token bucket per client, starting full.
type clientLimiter struct {
	perMin int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newClientLimiter(perMin int) *clientLimiter {
	if perMin <= 0 {
		perMin = defaultPerMinute
	}
	return &clientLimiter{perMin: perMin, limiters: make(map[string]*rate.Limiter)}
}

func (c *clientLimiter) allow(key string) bool {
	c.mu.Lock()
	l, ok := c.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Minute/time.Duration(c.perMin)), c.perMin)
		c.limiters[key] = l
	}
	c.mu.Unlock()
	return l.Allow()
}

// retryAfterSecs is how long one token takes to refill, rounded up.
func (c *clientLimiter) retryAfterSecs() int {
	secs := int(math.Ceil(60 / float64(c.perMin)))
	if secs < 1 {
		return 1
	}
	return secs
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
