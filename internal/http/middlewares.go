package http

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"SiteJSON_Frontend/internal/logger"
	"SiteJSON_Frontend/internal/models"
	"SiteJSON_Frontend/internal/ratelimit"

	"github.com/gorilla/mux"
)

// loggingMiddleware creates LogEvent and logs HTTP requests
func loggingMiddleware(loggerService logger.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract client IP and create LogEvent for this request
			clientIP := getClientIP(r)
			logEvent := logger.NewRequestLogEvent(clientIP)

			ctx := logger.WithLogEvent(r.Context(), logEvent)
			r = r.WithContext(ctx)

			// Capture POST bodies for the start log. State polls are GETs
			// and arrive every couple of seconds per viewer, so their
			// (empty) bodies are not worth the read.
			var bodyStr string
			if r.Method == http.MethodPost && r.Body != nil {
				bodyBytes, _ := io.ReadAll(r.Body)
				r.Body.Close()
				r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

				if len(bodyBytes) > 1000 {
					bodyStr = string(bodyBytes[:1000]) + "... (truncated)"
				} else {
					bodyStr = string(bodyBytes)
				}
			}

			requestMetadata := map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"query":      r.URL.RawQuery,
				"user_agent": r.UserAgent(),
				"client_ip":  clientIP,
			}
			if urlParams := mux.Vars(r); len(urlParams) > 0 {
				requestMetadata["url_params"] = urlParams
			}
			if bodyStr != "" {
				requestMetadata["body"] = bodyStr
			}

			loggerService.LogInfo(ctx, "http_request_start", "HTTP request received", requestMetadata)

			// Wrap ResponseWriter to capture status code
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(logEvent.StartTime)

			loggerService.LogInfo(ctx, "http_request_complete", "HTTP request processed", map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status_code": wrapped.statusCode,
				"duration_ms": duration.Milliseconds(),
				"user_agent":  r.UserAgent(),
				"client_ip":   clientIP,
			})
		})
	}
}

// corsMiddleware adds CORS headers for the browser clients that poll state
func corsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(loggerService logger.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					loggerService.LogError(
						r.Context(),
						"panic_recovery",
						"",
						"Panic recovered in HTTP handler",
						fmt.Errorf("panic: %v", err),
						models.LogSeverityHigh,
						map[string]interface{}{
							"panic":  err,
							"path":   r.URL.Path,
							"method": r.Method,
						},
					)

					logEvent := logger.GetLogEvent(r.Context())

					w.Header().Set("Content-Type", "application/json")
					w.Header().Set("X-Request-ID", logEvent.ProcessID)
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"error":"internal server error","message":"An unexpected error occurred"}`))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitingMiddleware applies rate limiting to requests
// Expects LogEvent to already be in context from logging middleware
func rateLimitingMiddleware(rateLimiter ratelimit.Service, loggerService logger.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			logEvent := logger.GetLogEvent(ctx)
			clientIP := logEvent.ClientIP

			if !rateLimiter.Allow(clientIP) {
				loggerService.LogError(ctx, logger.OpRateLimited, "", "Rate limit exceeded", models.ErrRateLimitExceeded, models.LogSeverityMedium, map[string]interface{}{
					"path":   r.URL.Path,
					"method": r.Method,
				})

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Request-ID", logEvent.ProcessID)
				w.Header().Set("X-RateLimit-Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"rate limit exceeded","message":"Please try again later"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// X-Forwarded-For first, the server usually sits behind a proxy
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
