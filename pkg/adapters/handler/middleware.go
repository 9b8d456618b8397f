package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wadjakorntonsri/shippedtoday/pkg/config"
	"github.com/wadjakorntonsri/shippedtoday/pkg/logger"
)

type contextKey string

const userEmailKey contextKey = "user_email"

// UserEmail returns the admin email set by AuthMiddleware.
func UserEmail(ctx context.Context) string {
	email, _ := ctx.Value(userEmailKey).(string)
	return email
}

type Middleware struct {
	jwtSecret      []byte
	allowedOrigins map[string]struct{}
	log            *logger.Logger
}

func NewMiddleware(cfg *config.Config, log *logger.Logger) *Middleware {
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			origins[strings.ToLower(u.Host)] = struct{}{}
		}
	}
	return &Middleware{
		jwtSecret:      []byte(cfg.JWTSecret),
		allowedOrigins: origins,
		log:            log,
	}
}

// AuthMiddleware verifies the JWT token from the cookie
func (m *Middleware) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("auth_token")
		if err != nil {
			m.deny(w, r)
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
			return m.jwtSecret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || !token.Valid {
			m.deny(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), userEmailKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) deny(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	http.Redirect(w, r, "/auth/google/login", http.StatusTemporaryRedirect)
}

// SameOrigin rejects browser requests whose Origin host differs from the
// request Host, unless the origin is explicitly allowed. Requests without
// an Origin header (curl, server-to-server) pass.
func (m *Middleware) SameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && r.Host != "" {
			u, err := url.Parse(origin)
			if err != nil || !m.originAllowed(u.Host, r.Host) {
				m.log.Warn("cross-origin submission blocked", "origin", origin, "host", r.Host)
				writeError(w, http.StatusForbidden, "Cross-origin requests not allowed")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) originAllowed(originHost, host string) bool {
	originHost = strings.ToLower(originHost)
	if originHost == strings.ToLower(host) {
		return true
	}
	_, ok := m.allowedOrigins[originHost]
	return ok
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs one line per request; level follows the status class.
func (m *Middleware) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		fields := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case rec.status >= 500:
			m.log.Error("HTTP request", fields...)
		case rec.status >= 400:
			m.log.Warn("HTTP request", fields...)
		default:
			m.log.Info("HTTP request", fields...)
		}
	})
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}
