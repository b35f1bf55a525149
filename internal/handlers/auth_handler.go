package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dinostore/backend/internal/middleware"
	"github.com/dinostore/backend/internal/services"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	identity   *services.IdentityService
	players    *services.PlayerService
	sessions   *services.SessionManager
	cookie     CookieConfig
	baseURL    string
	afterLogin string
}

const defaultPostLoginPath = "/api/v1/me"

func NewAuthHandler(identity *services.IdentityService, players *services.PlayerService, sessions *services.SessionManager, cookie CookieConfig, baseURL string) *AuthHandler {
	return &AuthHandler{
		identity:   identity,
		players:    players,
		sessions:   sessions,
		cookie:     cookie,
		baseURL:    baseURL,
		afterLogin: defaultPostLoginPath,
	}
}

// WithPostLoginPath sets where the browser lands after a successful sign-in.
func (h *AuthHandler) WithPostLoginPath(path string) *AuthHandler {
	if path != "" {
		h.afterLogin = path
	}
	return h
}

// Login redirects to Steam sign-in
// @Summary Sign in with Steam
// @Description Redirects to the Steam OpenID login page. When called with an error code after a failed sign-in, reports the failure instead.
// @Tags Auth
// @Produce json
// @Param error query string false "Failure code from a previous attempt"
// @Success 302
// @Failure 401 {object} services.ErrorResponse
// @Router /login [get]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if code := r.URL.Query().Get("error"); code != "" {
		services.SendErrorResponse(w, "Sign-in failed: "+code, http.StatusUnauthorized, nil)
		return
	}
	http.Redirect(w, r, h.identity.LoginURL(h.baseURL+"/verify", h.baseURL), http.StatusFound)
}

// Verify completes Steam sign-in
// @Summary Complete Steam sign-in
// @Description OpenID return endpoint. Verifies the assertion with Steam, creates the player on first login, starts a session and redirects to the post-login path.
// @Tags Auth
// @Success 302
// @Router /verify [get]
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	externalID, err := h.identity.Verify(ctx, r.URL.Query())
	if err != nil {
		h.failLogin(w, r, err)
		return
	}

	var displayName, avatarURL string
	profile, err := h.identity.FetchProfile(ctx, externalID)
	if err != nil {
		log.WithError(err).WithField("external_id", externalID).Warn("[AUTH] Steam profile lookup failed")
	} else if profile != nil {
		displayName, avatarURL = profile.PersonaName, profile.AvatarFull
	}

	if _, err := h.players.Upsert(ctx, externalID, displayName, avatarURL); err != nil {
		h.failLogin(w, r, err)
		return
	}

	token, expiresAt, err := h.sessions.Create(ctx, externalID)
	if err != nil {
		h.failLogin(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.afterLogin, http.StatusFound)
}

// Logout ends the session
// @Summary Sign out
// @Tags Auth
// @Produce json
// @Success 200 {object} object{success=bool}
// @Failure 500 {object} services.ErrorResponse
// @Router /logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r, h.cookie.Name)
	if err := h.sessions.Destroy(r.Context(), token); err != nil {
		log.WithError(err).Error("[AUTH] Logout failed")
		services.SendError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	services.SendJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) failLogin(w http.ResponseWriter, r *http.Request, err error) {
	code := loginErrorCode(err)
	if code == "internal" {
		log.WithError(err).Error("[AUTH] Sign-in failed")
	} else {
		log.WithError(err).Warn("[AUTH] Sign-in rejected")
	}
	http.Redirect(w, r, "/login?"+url.Values{"error": {code}}.Encode(), http.StatusFound)
}

func loginErrorCode(err error) string {
	switch {
	case errors.Is(err, services.ErrInvalidAssertion):
		return "invalid_assertion"
	case errors.Is(err, services.ErrMalformedIdentity):
		return "malformed_identity"
	case errors.Is(err, services.ErrIdentityUnavailable):
		return "provider_unavailable"
	default:
		return "internal"
	}
}
