package httpapi

import (
	"errors"
	"net/http"
	"time"

	"upnd.org/internal/audit"
	"upnd.org/internal/auth"
	"upnd.org/internal/jurisdiction"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type principalPayload struct {
	UserID       string                    `json:"user_id"`
	Email        string                    `json:"email"`
	FullName     string                    `json:"full_name,omitempty"`
	Role         string                    `json:"role"`
	Level        string                    `json:"level"`
	Jurisdiction jurisdiction.Jurisdiction `json:"jurisdiction"`
	Permissions  []string                  `json:"permissions"`
}

type tokenResponse struct {
	AccessToken      string           `json:"access_token"`
	RefreshToken     string           `json:"refresh_token"`
	AccessExpiresAt  time.Time        `json:"access_expires_at"`
	RefreshExpiresAt time.Time        `json:"refresh_expires_at"`
	Principal        principalPayload `json:"principal"`
}

func principalJSON(p auth.Principal) principalPayload {
	return principalPayload{
		UserID:       p.UserID,
		Email:        p.Email,
		FullName:     p.FullName,
		Role:         string(p.Role),
		Level:        string(p.Level),
		Jurisdiction: p.Jurisdiction,
		Permissions:  auth.PermissionsFor(p.Role),
	}
}

func tokenJSON(pair auth.TokenPair, p auth.Principal) tokenResponse {
	return tokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
		Principal:        principalJSON(p),
	}
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	pair, principal, err := a.svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, r, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, auth.ErrAccountDisabled):
			writeError(w, r, http.StatusForbidden, "account disabled")
		default:
			writeError(w, r, http.StatusInternalServerError, "login failed")
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"user_id": principal.UserID,
		"role":    string(principal.Role),
	})
	writeJSON(w, http.StatusOK, tokenJSON(pair, principal))
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	pair, principal, err := a.svc.Auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrRefreshInvalid):
			writeError(w, r, http.StatusUnauthorized, "invalid refresh token")
		case errors.Is(err, auth.ErrAccountDisabled):
			writeError(w, r, http.StatusForbidden, "account disabled")
		default:
			writeError(w, r, http.StatusInternalServerError, "refresh failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, tokenJSON(pair, principal))
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "not authenticated")
		return
	}
	if err := a.svc.Auth.Logout(r.Context(), principal.UserID); err != nil {
		writeError(w, r, http.StatusInternalServerError, "logout failed")
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.logout", nil)
	writeJSON(w, http.StatusOK, map[string]any{"status": "logged_out"})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, principalJSON(principal))
}

type createUserRequest struct {
	Email         string                    `json:"email"`
	Password      string                    `json:"password"`
	FullName      string                    `json:"full_name"`
	Role          string                    `json:"role"`
	Level         string                    `json:"level"`
	Jurisdiction  jurisdiction.Jurisdiction `json:"jurisdiction"`
	PartyPosition string                    `json:"party_position"`
}

func (a *API) handleUsersCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if _, err := a.requirePermission(r.Context(), auth.PermSystemSettings); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}

	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.svc.Auth.CreateUser(r.Context(), auth.NewUser{
		Email:         req.Email,
		Password:      req.Password,
		FullName:      req.FullName,
		Role:          auth.Role(req.Role),
		Level:         jurisdiction.Level(req.Level),
		Jurisdiction:  req.Jurisdiction,
		PartyPosition: req.PartyPosition,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrConflict):
			writeError(w, r, http.StatusConflict, "email already registered")
		default:
			writeError(w, r, http.StatusInternalServerError, "user creation failed")
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.user.create", map[string]any{
		"new_user_id": user.ID,
		"role":        string(user.Role),
	})
	writeJSON(w, http.StatusCreated, principalJSON(auth.PrincipalFor(user)))
}
