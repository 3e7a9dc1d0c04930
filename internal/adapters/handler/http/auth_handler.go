package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
	"github.com/vncsmyrnk/salesvote/internal/core/ports"
)

type AuthHandler struct {
	authService    ports.AuthService
	cookieDomain   string
	cookieSameSite http.SameSite
}

func NewAuthHandler(authService ports.AuthService, cookieDomain string, cookieSameSite http.SameSite) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		cookieDomain:   cookieDomain,
		cookieSameSite: cookieSameSite,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User        *domain.Identity `json:"user"`
	AccessToken string           `json:"access_token"`
}

// SignUp godoc
// @Summary      Registers a new account
// @Description  Creates an email/password account and signs it in. The access token is also set as the access_token cookie.
// @Tags         auth
// @Accept       json
// @Success      201
// @Failure      400
// @Failure      409
// @Router       /auth/signup [post]
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	identity, token, err := h.authService.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, domain.ErrAuth):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, domain.ErrInternal.Error())
		}
		return
	}

	h.setAccessTokenCookie(w, token)
	writeJSON(w, http.StatusCreated, sessionResponse{User: identity, AccessToken: token})
}

// SignIn godoc
// @Summary      Signs an account in
// @Tags         auth
// @Accept       json
// @Success      200
// @Failure      401
// @Router       /auth/signin [post]
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	identity, token, err := h.authService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrAuth) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, domain.ErrInternal.Error())
		return
	}

	h.setAccessTokenCookie(w, token)
	writeJSON(w, http.StatusOK, sessionResponse{User: identity, AccessToken: token})
}

// SignOut godoc
// @Summary      Signs the current account out
// @Description  Clears the access token cookie
// @Tags         auth
// @Success      200
// @Router       /auth/signout [post]
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.expireCookies(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	credential := r.FormValue("credential")
	if credential == "" {
		writeError(w, http.StatusBadRequest, "Missing credential")
		return
	}

	identity, token, err := h.authService.LoginWithGoogle(r.Context(), credential)
	if err != nil {
		if errors.Is(err, domain.ErrAuth) {
			writeError(w, http.StatusUnauthorized, "Authentication failed: "+err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, domain.ErrInternal.Error())
		return
	}

	h.setAccessTokenCookie(w, token)
	writeJSON(w, http.StatusOK, sessionResponse{User: identity, AccessToken: token})
}

func (h *AuthHandler) setAccessTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    token,
		Path:     "/",
		Domain:   h.cookieDomain,
		HttpOnly: true,
		Secure:   true,
		SameSite: h.cookieSameSite,
		MaxAge:   int((24 * time.Hour).Seconds()),
	})
}

func (h *AuthHandler) expireCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: accessTokenCookie, MaxAge: -1, Path: "/", Domain: h.cookieDomain})
}
