package middleware

import "net/http"

// Sessions bundles the per-request client state a page needs: the login
// flag, pending flashes and the CSRF token.
type Sessions struct {
	Guard *SessionGuard
	Flash *FlashStore
}

// NewSessions builds the guard and flash store from one signing secret.
func NewSessions(secret string) *Sessions {
	return &Sessions{
		Guard: NewSessionGuard(secret),
		Flash: NewFlashStore(secret),
	}
}

func (s *Sessions) IsAuthenticated(r *http.Request) bool {
	return s.Guard.IsAuthenticated(r)
}

func (s *Sessions) ConsumeFlashes(w http.ResponseWriter, r *http.Request) []string {
	return s.Flash.Consume(w, r)
}

func (s *Sessions) CSRFToken(r *http.Request) string {
	return CSRFToken(r)
}
