package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/http/response"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/service"
)

type contextKey string

const claimsKey contextKey = "claims"

// TokenVerifier decodes bearer tokens.
type TokenVerifier interface {
	VerifyToken(token string) (*service.Claims, error)
}

// Authenticate rejects requests without a valid bearer token and stores its claims in the context.
func Authenticate(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				response.Error(w, http.StatusUnauthorized, response.CodeUnauthorized, "Login required")
				return
			}

			claims, err := verifier.VerifyToken(token)
			switch {
			case err == nil:
			case errors.Is(err, service.ErrTokenExpired):
				response.Error(w, http.StatusUnauthorized, response.CodeTokenExpired, "Token has expired")
				return
			case errors.Is(err, service.ErrTokenInvalid):
				response.Error(w, http.StatusUnauthorized, response.CodeInvalidToken, "Invalid token")
				return
			case errors.Is(err, service.ErrTokenMissing):
				response.Error(w, http.StatusUnauthorized, response.CodeUnauthorized, "Login required")
				return
			default:
				logger.Error("token verification failed", zap.Error(err))
				response.Error(w, http.StatusInternalServerError, response.CodeAuthError, "Authentication failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth attaches claims when a valid bearer token is present and otherwise serves the request anonymously.
func OptionalAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok {
				if claims, err := verifier.VerifyToken(token); err == nil {
					r = r.WithContext(WithClaims(r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *service.Claims) context.Context {
	if claims != nil {
		noteUserID(ctx, claims.UserID)
	}
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext retrieves the authenticated caller's claims.
func ClaimsFromContext(ctx context.Context) (*service.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*service.Claims)
	return claims, ok && claims != nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
