package middleware

import (
	"context"
	"net/http"
	"strings"

	"gobag/internal/service"
)

type contextKey string

const (
	FacilitatorIDKey contextKey = "facilitatorId"
	SubjectKey       contextKey = "subject"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireFacilitator validates the facilitator JWT from the Authorization header
func (m *AuthMiddleware) RequireFacilitator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateFacilitatorToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), FacilitatorIDKey, claims.FacilitatorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithParticipant attaches the anonymous subject when a participant token is
// present. The token is optional here; handlers that need an identity check
// for the subject themselves, so lesson-mode clients stay credential-free.
func (m *AuthMiddleware) WithParticipant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.authSvc.ValidateParticipantToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), SubjectKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetFacilitatorID extracts the facilitator ID from context
func GetFacilitatorID(ctx context.Context) string {
	if v := ctx.Value(FacilitatorIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetSubject extracts the anonymous participant subject from context
func GetSubject(ctx context.Context) string {
	if v := ctx.Value(SubjectKey); v != nil {
		return v.(string)
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
