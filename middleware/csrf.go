package middleware

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"notepost/pkg/logger"
)

const (
	// CSRFCookieName holds the double-submit token.
	CSRFCookieName = "csrf"
	// CSRFFieldName is the form field every POST must echo.
	CSRFFieldName = "csrf_token"
)

type csrfKey struct{}

// CSRF is the double-submit check behind the CSRFEnabled flag. When
// disabled both middlewares are pass-throughs and forms carry no token.
type CSRF struct {
	Enabled bool
}

// Issue makes sure the client holds a token cookie and exposes the token to
// the templates.
func (c CSRF) Issue(next http.Handler) http.Handler {
	if !c.Enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := cookieToken(r)
		if token == "" {
			var err error
			if token, err = newToken(32); err != nil {
				logger.Sugar.Errorf("Failed to generate CSRF token: %v", err)
			} else {
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   r.TLS != nil,
					SameSite: http.SameSiteStrictMode,
				})
			}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfKey{}, token)))
	})
}

// Verify rejects a request whose form token does not match its cookie.
func (c CSRF) Verify(next http.Handler) http.Handler {
	if !c.Enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sent := r.PostFormValue(CSRFFieldName)
		if sent == "" {
			sent = r.Header.Get("X-CSRF-Token")
		}
		if token := cookieToken(r); token == "" || sent != token {
			logger.Sugar.Warnw("Rejected request with bad CSRF token", "path", r.URL.Path)
			http.Error(w, "The CSRF token is missing or invalid.", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CSRFToken returns the request's token, or "" when the check is disabled.
func CSRFToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfKey{}).(string)
	return token
}

func cookieToken(r *http.Request) string {
	if cookie, err := r.Cookie(CSRFCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func newToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
