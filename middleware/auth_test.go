package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"notepost/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCredentialsCheckOrder(t *testing.T) {
	creds := Credentials{Username: strPtr("admin"), Password: strPtr("default")}

	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"both empty", "", "", ErrUsernameRequired},
		{"missing password", "admin", "", ErrPasswordRequired},
		{"wrong username wins over wrong password", "bob", "nope", ErrInvalidUsername},
		{"wrong password", "admin", "nope", ErrInvalidPassword},
		{"valid", "admin", "default", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := creds.Check(tt.username, tt.password)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, err)
		})
	}
}

func TestCredentialsUnsetMatchNothing(t *testing.T) {
	creds := Credentials{}
	assert.Equal(t, ErrInvalidUsername, creds.Check("admin", "default"))

	creds = Credentials{Username: strPtr("admin")}
	assert.Equal(t, ErrInvalidPassword, creds.Check("admin", "default"))
}

func TestCredentialsMessages(t *testing.T) {
	assert.Equal(t, "Username is required.", ErrUsernameRequired.Error())
	assert.Equal(t, "Password is required.", ErrPasswordRequired.Error())
	assert.Equal(t, "Invalid username", ErrInvalidUsername.Error())
	assert.Equal(t, "Invalid password", ErrInvalidPassword.Error())

	assert.True(t, apperr.IsAuth(ErrInvalidUsername))
	assert.True(t, apperr.IsAuth(ErrInvalidPassword))
	assert.False(t, apperr.IsAuth(ErrUsernameRequired))
	assert.True(t, apperr.IsValidation(ErrPasswordRequired))
}

// withCookies copies the cookies set on rec onto a new request.
func withCookies(rec *httptest.ResponseRecorder, method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionGuardEstablish(t *testing.T) {
	guard := NewSessionGuard("secret")

	assert.False(t, guard.IsAuthenticated(httptest.NewRequest(http.MethodGet, "/", nil)))

	rec := httptest.NewRecorder()
	require.NoError(t, guard.Establish(rec, httptest.NewRequest(http.MethodPost, "/login", nil)))

	assert.True(t, guard.IsAuthenticated(withCookies(rec, http.MethodGet, "/")))
}

func TestSessionGuardRejectsForeignSignature(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, NewSessionGuard("other").Establish(rec, httptest.NewRequest(http.MethodPost, "/login", nil)))

	assert.False(t, NewSessionGuard("secret").IsAuthenticated(withCookies(rec, http.MethodGet, "/")))
}

func TestSessionGuardRejectsTamperedToken(t *testing.T) {
	guard := NewSessionGuard("secret")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not.a.jwt"})
	assert.False(t, guard.IsAuthenticated(req))
}

func TestSessionGuardRejectsUnsignedToken(t *testing.T) {
	claims := sessionClaims{
		LoggedIn:         true,
		RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(time.Now())},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: unsigned})
	assert.False(t, NewSessionGuard("secret").IsAuthenticated(req))
}

func TestSessionGuardClear(t *testing.T) {
	guard := NewSessionGuard("secret")
	rec := httptest.NewRecorder()
	guard.Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestRequireLogin(t *testing.T) {
	guard := NewSessionGuard("secret")
	called := false
	h := guard.RequireLogin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/add", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)

	login := httptest.NewRecorder()
	require.NoError(t, guard.Establish(login, httptest.NewRequest(http.MethodPost, "/login", nil)))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, withCookies(login, http.MethodPost, "/add"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, called)
}
