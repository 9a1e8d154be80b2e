package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is unexported so no other package can collide with our keys.
type contextKey string

const adminIDKey contextKey = "adminID"

// TokenCookie is the cookie name accepted as an alternative to the Bearer header.
const TokenCookie = "token"

// AdminExists reports whether the admin a token names is still stored.
// *service.AdminService.AdminExists has this shape.
type AdminExists func(ctx context.Context, id int64) (bool, error)

// RequireAuth returns middleware that rejects requests without a valid admin token.
// On success the admin ID is available through AdminIDFromContext.
//
// STATELESS TOKENS:
// A JWT stays valid until it expires, even after its admin is deleted. When exists
// is non-nil every request also checks the store, so a deleted admin is locked
// out immediately and can never become the owner of a new question.
func RequireAuth(tokens *TokenService, exists AdminExists) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			adminID, err := extractAdminID(r, tokens)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			if exists != nil {
				ok, err := exists(r.Context(), adminID)
				if err != nil {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"error":"internal_error","message":"An internal error occurred"}` + "\n"))
					return
				}
				if !ok {
					writeUnauthorized(w)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithAdminID(r.Context(), adminID)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}` + "\n"))
}

// WithAdminID returns a copy of ctx carrying adminID.
func WithAdminID(ctx context.Context, adminID int64) context.Context {
	return context.WithValue(ctx, adminIDKey, adminID)
}

// AdminIDFromContext returns the authenticated admin ID, if any.
func AdminIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(adminIDKey).(int64)
	return id, ok && id > 0
}

// extractAdminID reads the token from "Authorization: Bearer ..." first, then from
// the token cookie.
func extractAdminID(r *http.Request, tokens *TokenService) (int64, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return tokens.Validate(strings.TrimSpace(token))
		}
	}

	cookie, err := r.Cookie(TokenCookie)
	if err != nil {
		return 0, err
	}
	return tokens.Validate(cookie.Value)
}
