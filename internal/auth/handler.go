package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/drive-intranet/internal/config"
	"github.com/drive-intranet/internal/httputil"
	"github.com/drive-intranet/internal/metrics"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	stateCookieName = "oauth_state"
	stateTTL        = 10 * time.Minute

	// GoogleRevokeURL is Google's token revocation endpoint
	GoogleRevokeURL = "https://oauth2.googleapis.com/revoke"
)

// Scopes requested at sign-in
var Scopes = []string{
	"openid",
	"email",
	"profile",
	"https://www.googleapis.com/auth/drive.readonly",
	"https://www.googleapis.com/auth/drive.metadata.readonly",
	"https://www.googleapis.com/auth/drive.activity.readonly",
}

// Handler runs the Google sign-in flow and guards the API with sessions
type Handler struct {
	oauth      *oauth2.Config
	verifier   IDTokenVerifier
	sessions   *Sessions
	allowed    map[string]bool
	secret     []byte
	cookieName string
	secure     bool
	ttl        time.Duration
	revokeURL  string
	httpClient *http.Client
}

// NewHandler creates a new auth handler
func NewHandler(cfg *config.Config, verifier IDTokenVerifier, sessions *Sessions) *Handler {
	allowed := make(map[string]bool, len(cfg.Google.AllowedEmails))
	for _, email := range cfg.Google.AllowedEmails {
		allowed[strings.ToLower(strings.TrimSpace(email))] = true
	}

	return &Handler{
		oauth: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.RedirectURL(),
			Endpoint:     google.Endpoint,
			Scopes:       Scopes,
		},
		verifier:   verifier,
		sessions:   sessions,
		allowed:    allowed,
		secret:     []byte(cfg.Session.Secret),
		cookieName: cfg.Session.CookieName,
		secure:     cfg.Session.SecureCookie,
		ttl:        cfg.Session.TTL,
		revokeURL:  GoogleRevokeURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetEndpoint points the flow at a different authorization server
func (h *Handler) SetEndpoint(endpoint oauth2.Endpoint, revokeURL string) {
	h.oauth.Endpoint = endpoint
	h.revokeURL = revokeURL
}

// Sessions returns the handler's session store
func (h *Handler) Sessions() *Sessions {
	return h.sessions
}

// IsAllowed reports whether email may sign in. An empty allow-list admits everyone.
func (h *Handler) IsAllowed(email string) bool {
	if len(h.allowed) == 0 {
		return true
	}
	return h.allowed[strings.ToLower(strings.TrimSpace(email))]
}

// Login handles GET /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	authURL := h.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback handles GET /auth/callback
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		metrics.RecordAuthAttempt("denied")
		logrus.Warnf("Sign-in rejected by provider: %s", errParam)
		httputil.RespondError(w, http.StatusForbidden, errParam)
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != query.Get("state") {
		metrics.RecordAuthAttempt("error")
		httputil.RespondError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/auth", MaxAge: -1})

	code := query.Get("code")
	if code == "" {
		metrics.RecordAuthAttempt("error")
		httputil.RespondError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	ctx := context.WithValue(r.Context(), oauth2.HTTPClient, h.httpClient)
	token, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		metrics.RecordAuthAttempt("error")
		logrus.Errorf("Token exchange failed: %v", err)
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil {
			httputil.RespondError(w, rerr.Response.StatusCode, string(rerr.Body))
			return
		}
		httputil.RespondError(w, http.StatusBadGateway, err.Error())
		return
	}

	rawIDToken, _ := token.Extra("id_token").(string)
	if rawIDToken == "" {
		metrics.RecordAuthAttempt("error")
		httputil.RespondError(w, http.StatusBadGateway, "token response missing id_token")
		return
	}

	identity, err := h.verifier.Verify(r.Context(), rawIDToken)
	if err != nil {
		metrics.RecordAuthAttempt("error")
		logrus.Warnf("ID token verification failed: %v", err)
		httputil.RespondError(w, http.StatusUnauthorized, "invalid id token")
		return
	}

	if !identity.EmailVerified {
		metrics.RecordAuthAttempt("denied")
		logrus.Warnf("Sign-in denied for %q: email not verified", identity.Email)
		httputil.RespondError(w, http.StatusForbidden, "Access denied")
		return
	}

	if identity.Email == "" || !h.IsAllowed(identity.Email) {
		metrics.RecordAuthAttempt("denied")
		logrus.Warnf("Sign-in denied for %q", identity.Email)
		httputil.RespondError(w, http.StatusForbidden, "Access denied")
		return
	}

	sess := h.sessions.Create(&Session{
		Email:       identity.Email,
		Name:        identity.Name,
		Picture:     identity.Picture,
		Token:       token,
		tokenSource: h.oauth.TokenSource(context.WithValue(context.Background(), oauth2.HTTPClient, h.httpClient), token),
	})

	if err := h.setSessionCookie(w, sess); err != nil {
		metrics.RecordAuthAttempt("error")
		h.sessions.Delete(sess.ID)
		logrus.Errorf("Failed to issue session cookie: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	metrics.RecordAuthAttempt("success")
	logrus.Infof("User %s signed in", sess.Email)
	http.Redirect(w, r, "/", http.StatusFound)
}

// SessionCookie builds the signed cookie that identifies sess
func (h *Handler) SessionCookie(sess *Session) (*http.Cookie, error) {
	signed, err := signSession(h.secret, sess, h.ttl)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     h.cookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(h.ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, sess *Session) error {
	cookie, err := h.SessionCookie(sess)
	if err != nil {
		return err
	}
	http.SetCookie(w, cookie)
	return nil
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionFromRequest resolves the session cookie to a live session
func (h *Handler) sessionFromRequest(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(h.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, fmt.Errorf("missing session cookie")
	}

	claims, err := parseSession(h.secret, cookie.Value)
	if err != nil {
		return nil, err
	}

	sess, ok := h.sessions.Get(claims.ID)
	if !ok {
		return nil, fmt.Errorf("session %s not found", claims.ID)
	}
	if sess.Email != claims.Subject {
		return nil, fmt.Errorf("session subject mismatch")
	}
	return sess, nil
}

// Middleware rejects requests without a valid session
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.sessionFromRequest(r)
		if err != nil {
			logrus.Debugf("Unauthorised request to %s: %v", r.URL.Path, err)
			httputil.RespondError(w, http.StatusUnauthorized, "Unauthorised")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

// Logout handles POST /auth/logout. The Google grant is revoked on a best
// effort basis; the local session is always removed.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, err := h.sessionFromRequest(r); err == nil {
		if err := h.revoke(r.Context(), sess.Token); err != nil {
			logrus.Warnf("Failed to revoke token for %s: %v", sess.Email, err)
		}
		h.sessions.Delete(sess.ID)
		logrus.Infof("User %s signed out", sess.Email)
	}

	h.clearSessionCookie(w)
	httputil.RespondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) revoke(ctx context.Context, token *oauth2.Token) error {
	if token == nil || h.revokeURL == "" {
		return nil
	}
	value := token.RefreshToken
	if value == "" {
		value = token.AccessToken
	}
	if value == "" {
		return nil
	}

	form := url.Values{"token": {value}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("revoke failed: %d %s", resp.StatusCode, string(body))
	}
	return nil
}

// MeResponse describes the signed-in user
type MeResponse struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Me handles GET /api/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if sess == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorised")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, MeResponse{
		Email:   sess.Email,
		Name:    sess.Name,
		Picture: sess.Picture,
	})
}
