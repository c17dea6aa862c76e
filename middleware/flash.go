package middleware

import (
	"net/http"

	"notepost/pkg/logger"

	"github.com/gorilla/sessions"
)

// FlashCookieName holds pending one-shot messages.
const FlashCookieName = "flash"

// FlashStore keeps flash messages in their own signed cookie so the session
// token only ever carries the logged_in claim.
type FlashStore struct {
	store *sessions.CookieStore
}

// NewFlashStore signs the flash cookie with secret.
func NewFlashStore(secret string) *FlashStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	// Browser-session lifetime; no server-side expiry check.
	store.MaxAge(0)
	return &FlashStore{store: store}
}

func (f *FlashStore) session(r *http.Request) *sessions.Session {
	// A cookie signed with another key still yields a usable empty session.
	s, err := f.store.Get(r, FlashCookieName)
	if err != nil {
		logger.Sugar.Debugf("Discarding unreadable flash cookie: %v", err)
	}
	return s
}

// Add queues msg for the next rendered page. It must run before the
// response header is written.
func (f *FlashStore) Add(w http.ResponseWriter, r *http.Request, msg string) {
	s := f.session(r)
	s.AddFlash(msg)
	if err := s.Save(r, w); err != nil {
		logger.Sugar.Errorf("Failed to save flash message: %v", err)
	}
}

// Consume returns the pending messages and clears them.
func (f *FlashStore) Consume(w http.ResponseWriter, r *http.Request) []string {
	s := f.session(r)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := s.Save(r, w); err != nil {
		logger.Sugar.Errorf("Failed to clear flash messages: %v", err)
	}

	msgs := make([]string, 0, len(raw))
	for _, m := range raw {
		if s, ok := m.(string); ok {
			msgs = append(msgs, s)
		}
	}
	return msgs
}
