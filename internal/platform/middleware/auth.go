package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator defines the interface for validating bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims carries the authenticated caller identity attributed to every
// operation. Address is the caller's network identity; Role is "bank" or
// "admin".
type TokenClaims struct {
	Address string
	Role    string
}

type contextKeyAddress struct{}
type contextKeyRole struct{}

// WithIdentity returns a context carrying the caller identity, as RequireAuth
// would after a successful token validation.
func WithIdentity(ctx context.Context, address, role string) context.Context {
	ctx = context.WithValue(ctx, contextKeyAddress{}, address)
	return context.WithValue(ctx, contextKeyRole{}, role)
}

// GetAddress retrieves the authenticated caller address from the context.
func GetAddress(ctx context.Context) string {
	address, ok := ctx.Value(contextKeyAddress{}).(string)
	if !ok {
		return ""
	}
	return address
}

// GetRole retrieves the authenticated caller role from the context.
func GetRole(ctx context.Context) string {
	role, ok := ctx.Value(contextKeyRole{}).(string)
	if !ok {
		return ""
	}
	return role
}

// RequireAuth validates the Authorization header and stores the caller
// identity in the request context. Requests without a valid token never reach
// the ledger workflows.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || token == "" {
				writeUnauthorized(w, "Missing bearer token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := r.Context()
			if tag, ok := ctx.Value(contextKeyCaller{}).(*callerTag); ok {
				tag.address = claims.Address
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, claims.Address, claims.Role)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
