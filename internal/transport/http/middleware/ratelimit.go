package middleware

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimit caps requests per client over a fixed window, counted in Redis
// so the cap holds across replicas. Redis being down never blocks traffic;
// the limiter fails open and only logs.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rdb == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := fmt.Sprintf("ratelimit:%s:%d", clientKey(r), time.Now().Unix()/int64(window.Seconds()))

			count, err := rdb.Incr(r.Context(), key).Result()
			if err != nil {
				log.Printf("ratelimit: redis incr: %v", err)
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				rdb.Expire(r.Context(), key, window)
			}

			if count > int64(limit) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"success":false,"message":"Too many requests"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey prefers the authorization header (one bucket per logged-in
// client) and falls back to the remote IP.
func clientKey(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		return "token:" + header[strings.LastIndexByte(header, ' ')+1:]
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}
