package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/luminabrand/storefront/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Role    string `json:"role"`
}

type setupAdminRequest struct {
	SetupToken string `json:"setupToken"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

type AuthHandler struct {
	svc           auth.Service
	tokenTTL      time.Duration
	setupToken    string
	secureCookies bool
}

func NewAuthHandler(svc auth.Service, tokenTTL time.Duration, setupToken string, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		svc:           svc,
		tokenTTL:      tokenTTL,
		setupToken:    setupToken,
		secureCookies: secureCookies,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Email and password are required.")
		return
	}

	if payload.Email == "" || payload.Password == "" {
		respondWithError(w, http.StatusBadRequest, "Email and password are required.")
		return
	}

	user, token, err := h.svc.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		log.Error().Err(err).Msg("login failed")
		respondWithError(w, http.StatusInternalServerError, "Something went wrong.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	respondWithJSON(w, http.StatusOK, loginResponse{Success: true, Role: string(user.Role)})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// SetupAdmin bootstraps the first admin account. Disabled unless a setup
// token is configured, and the caller must present it.
func (h *AuthHandler) SetupAdmin(w http.ResponseWriter, r *http.Request) {
	if h.setupToken == "" {
		respondWithError(w, http.StatusNotFound, "Not found")
		return
	}

	var payload setupAdminRequest

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if payload.SetupToken != h.setupToken {
		respondWithError(w, http.StatusForbidden, "Invalid setup token")
		return
	}

	if payload.Email == "" || payload.Password == "" {
		respondWithError(w, http.StatusBadRequest, "Email and password are required.")
		return
	}

	user, err := h.svc.CreateUser(r.Context(), payload.Email, payload.Password, auth.RoleAdmin)
	if err != nil {
		if errors.Is(err, auth.ErrEmailExists) {
			respondWithError(w, http.StatusConflict, "Email already exists")
			return
		}
		log.Error().Err(err).Msg("failed to create admin user")
		respondWithError(w, http.StatusInternalServerError, "Failed to create admin user")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{
		"id":    user.ID.String(),
		"email": user.Email,
		"role":  string(user.Role),
	})
}
