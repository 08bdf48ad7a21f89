package api

import (
	"encoding/json"
	"net/http"

	"github.com/starford/linkhub/internal/authn"
	"github.com/starford/linkhub/internal/models"
)

// AuthHandler holds the session and login route handlers.
type AuthHandler struct {
	auth *authn.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *authn.Service) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRequest is the request body for password registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"full_name"`
}

// LoginRequest is the request body for password login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse is returned after any successful login.
type SessionResponse struct {
	Token   string          `json:"token" validate:"required"`
	Profile *models.Profile `json:"profile" validate:"required"`
}

// Register handles POST /api/auth/register.
//
//	@Summary		Register a password-backed profile
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RegisterRequest	true	"Credentials"
//	@Success		201		{object}	SessionResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Router			/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	token, profile, err := h.auth.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		writeError(w, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{Token: token, Profile: profile})
}

// Login handles POST /api/auth/login.
//
//	@Summary		Log in with email and password
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	SessionResponse
//	@Failure		401		{object}	errResponse
//	@Router			/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	token, profile, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Token: token, Profile: profile})
}

// LarkAuthorize handles GET /api/auth/lark. It redirects the browser to
// the Lark consent page.
//
//	@Summary		Start the Lark SSO flow
//	@Tags			auth
//	@Param			state	query	string	false	"Opaque state echoed back on the callback"
//	@Success		302		"Redirect to Lark"
//	@Router			/auth/lark [get]
func (h *AuthHandler) LarkAuthorize(w http.ResponseWriter, r *http.Request) {
	lark := h.auth.Lark()
	if lark == nil {
		writeJSON(w, http.StatusNotFound, errorBody("lark sso not configured"))
		return
	}
	http.Redirect(w, r, lark.AuthCodeURL(r.URL.Query().Get("state")), http.StatusFound)
}

// LarkCallback handles GET /api/auth/lark/callback.
//
//	@Summary		Complete the Lark SSO flow
//	@Tags			auth
//	@Produce		json
//	@Param			code	query		string	true	"Authorization code"
//	@Success		200		{object}	SessionResponse
//	@Failure		401		{object}	errResponse
//	@Router			/auth/lark/callback [get]
func (h *AuthHandler) LarkCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'code' is required"))
		return
	}
	token, profile, err := h.auth.LoginWithLark(r.Context(), code)
	if err != nil {
		writeError(w, "lark callback", err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Token: token, Profile: profile})
}

// Me handles GET /api/auth/me, returning the calling profile.
//
//	@Summary		Current profile
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	models.Profile
//	@Failure		401	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile := profileFrom(r)
	if profile == nil {
		writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
