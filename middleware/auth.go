package middleware

import (
	"fmt"
	"net/http"
	"time"

	"notepost/internal/apperr"
	"notepost/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName holds the signed session token.
const SessionCookieName = "session"

// Login failures, in the order they are checked.
var (
	ErrUsernameRequired = &apperr.ValidationError{Field: "username", Message: "Username is required."}
	ErrPasswordRequired = &apperr.ValidationError{Field: "password", Message: "Password is required."}
	ErrInvalidUsername  = &apperr.AuthError{Message: "Invalid username"}
	ErrInvalidPassword  = &apperr.AuthError{Message: "Invalid password"}
)

// Credentials are the configured admin username and password. A nil field
// is unset and matches nothing.
type Credentials struct {
	Username *string
	Password *string
}

// Check validates a login attempt. The first failing condition wins.
// Passwords are compared as plain strings, exactly as configured.
func (c Credentials) Check(username, password string) error {
	switch {
	case username == "":
		return ErrUsernameRequired
	case password == "":
		return ErrPasswordRequired
	case c.Username == nil || username != *c.Username:
		return ErrInvalidUsername
	case c.Password == nil || password != *c.Password:
		return ErrInvalidPassword
	}
	return nil
}

type sessionClaims struct {
	LoggedIn bool `json:"logged_in"`
	jwt.RegisteredClaims
}

// SessionGuard stores the logged_in flag in an HS256-signed cookie. Nothing
// is kept server side.
type SessionGuard struct {
	secret []byte
	now    func() time.Time
}

// NewSessionGuard signs sessions with secret.
func NewSessionGuard(secret string) *SessionGuard {
	return &SessionGuard{secret: []byte(secret), now: time.Now}
}

// IsAuthenticated reports the logged_in flag of the request's session. A
// missing, tampered or foreign-signed cookie counts as logged out.
func (g *SessionGuard) IsAuthenticated(r *http.Request) bool {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	var claims sessionClaims
	token, err := jwt.ParseWithClaims(cookie.Value, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return g.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		logger.Sugar.Debugf("Invalid session token: %v", err)
		return false
	}
	return claims.LoggedIn
}

// Establish replaces any previous session with a fresh logged-in one.
func (g *SessionGuard) Establish(w http.ResponseWriter, r *http.Request) error {
	claims := sessionClaims{
		LoggedIn: true,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(g.now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return fmt.Errorf("signing session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear drops the logged_in flag by expiring the session cookie.
func (g *SessionGuard) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// RequireLogin answers 401 unless the request carries a logged-in session.
func (g *SessionGuard) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.IsAuthenticated(r) {
			logger.Sugar.Infow("Rejected unauthenticated request", "method", r.Method, "path", r.URL.Path)
			http.Error(w, apperr.ErrNotAuthenticated.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
