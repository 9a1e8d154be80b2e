package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/faq-chatbot/internal/auth"
	"github.com/sakif/faq-chatbot/internal/model"
	"github.com/sakif/faq-chatbot/internal/service"
)

// AuthHandler manages admin login and logout.
//
// HANDLER RESPONSIBILITIES:
//   - HandleLogin  → check username + password, issue a JWT (body and cookie)
//   - HandleLogout → clear the JWT cookie
//
// The token is returned in the body for API clients and set as an HttpOnly cookie
// for browsers; auth.RequireAuth accepts either.
type AuthHandler struct {
	admins *service.AdminService
	logger *slog.Logger
}

func NewAuthHandler(admins *service.AdminService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		admins: admins,
		logger: logger,
	}
}

// LoginRequest is the body of POST /admin/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the token (empty when authentication is disabled) and the
// authenticated admin.
type LoginResponse struct {
	Token string       `json:"token"`
	Admin *model.Admin `json:"admin"`
}

// HandleLogin authenticates an admin.
//
// HTTP: POST /admin/login
//
// A wrong password and an unknown username both answer 401 with the same body.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.admins.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if res.Token != "" {
		// HttpOnly = JavaScript cannot read this cookie (XSS protection).
		// SameSite=Lax = cookie is sent on top-level navigations but not cross-site POSTs.
		// Secure should be true in production (HTTPS only). We leave it false for local dev.
		http.SetCookie(w, &http.Cookie{
			Name:     auth.TokenCookie,
			Value:    res.Token,
			Path:     "/admin",
			Expires:  res.ExpiresAt,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: res.Token, Admin: res.Admin})
}

// HandleLogout clears the JWT cookie.
//
// HTTP: POST /admin/logout
//
// Since we're stateless (JWT), "logout" just means deleting the client-side
// cookie. The token remains technically valid until it expires.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    "",
		Path:     "/admin",
		MaxAge:   -1, // tells the browser to delete the cookie immediately
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeMessage(w, http.StatusOK, "logged out")
}
