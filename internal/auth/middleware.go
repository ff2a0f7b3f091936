package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"gorm.io/gorm"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// AuthContextKey is the key for storing the AuthContext in request context
	AuthContextKey ContextKey = "authContext"
)

// AuthContext is what handlers read back out of the request context.
type AuthContext struct {
	Staff *StaffContext
}

// Middleware creates an HTTP middleware that extracts and injects the staff
// authentication context.
//
// If any step fails (missing token, invalid token, unknown staff member),
// the request proceeds without auth context. Handlers should check for
// context availability. This design allows:
// - Public endpoints (no auth required)
// - Protected endpoints (wrapped in RequireAuth)
// - Optional auth endpoints (use context if available)
func Middleware(authService *AuthService, tokenExtractor *TokenExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")

			// If no Authorization header, continue without auth context
			if authHeader == "" {
				slog.Debug("no authorization header provided")
				next.ServeHTTP(w, r)
				return
			}

			token, err := tokenExtractor.ExtractTokenFromHeader(authHeader)
			if err != nil {
				slog.Warn("failed to extract bearer token",
					"error", err,
					"auth_header_length", len(authHeader),
				)
				next.ServeHTTP(w, r)
				return
			}

			staff, err := authService.GetStaffContextByToken(token)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					slog.Warn("unknown staff token presented")
				} else {
					slog.Warn("failed to resolve staff context", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), AuthContextKey, &AuthContext{Staff: staff})
			r = r.WithContext(ctx)

			slog.Debug("auth context injected successfully",
				"staff_id", staff.ID,
			)

			next.ServeHTTP(w, r)
		})
	}
}

// GetAuthContext extracts the AuthContext from a request context.
// Returns nil if no auth context is available (request had no valid token).
func GetAuthContext(ctx context.Context) *AuthContext {
	authCtx, ok := ctx.Value(AuthContextKey).(*AuthContext)
	if !ok {
		return nil
	}
	return authCtx
}

// RequireAuth returns a middleware that requires authentication.
// If no auth context is found, returns 401 Unauthorized.
func RequireAuth(authService *AuthService, tokenExtractor *TokenExtractor) func(http.Handler) http.Handler {
	// Create the auth middleware once, not on every request
	authMiddleware := Middleware(authService, tokenExtractor)

	return func(next http.Handler) http.Handler {
		return authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := GetAuthContext(r.Context())
			if authCtx == nil {
				slog.Warn("authentication required but not provided",
					"method", r.Method,
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error": "authentication required"}`))
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}
