package ratelimit

import (
	"fmt"
	"net"
	"net/http"

	"github.com/rs/zerolog"
)

// Middleware enforces limitType against the requesting IP, returning 429
// with a Retry-After header when exceeded. It relies on chi's RealIP
// middleware having already run ahead of it in the chain to resolve
// X-Forwarded-For/X-Real-IP into r.RemoteAddr.
func Middleware(service Service, limitType string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := LimitKey{Type: limitType, RemoteIP: clientIP(r)}

			if err := service.Allow(r.Context(), key); err != nil {
				if err == ErrLimitExceeded {
					logger.Warn().
						Str("path", r.URL.Path).
						Str("remoteIP", key.RemoteIP).
						Str("type", limitType).
						Msg("rate limit exceeded")
					w.Header().Set("Retry-After", "1")
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusTooManyRequests)
					fmt.Fprint(w, `{"error":"rate_limit_exceeded","message":"too many requests, please retry shortly"}`)
					return
				}
				logger.Error().Err(err).Str("type", limitType).Msg("rate limit store error")
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port off r.RemoteAddr. The address itself is expected
// to already reflect the real client by the time this middleware runs.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
