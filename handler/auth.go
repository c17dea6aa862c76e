package handlers

import (
	"net/http"

	"notepost/internal/apperr"
	"notepost/middleware"
	"notepost/pkg/logger"
	"notepost/views"
)

// SessionStarter starts and ends the logged-in session.
type SessionStarter interface {
	Establish(w http.ResponseWriter, r *http.Request) error
	Clear(w http.ResponseWriter)
}

// Flasher queues one-shot messages for the next rendered page.
type Flasher interface {
	Add(w http.ResponseWriter, r *http.Request, msg string)
}

// AuthHandler serves the login form and the logout link.
type AuthHandler struct {
	Credentials middleware.Credentials
	Session     SessionStarter
	Flash       Flasher
	Views       *views.Renderer
}

func NewAuthHandler(creds middleware.Credentials, session SessionStarter, flash Flasher, v *views.Renderer) *AuthHandler {
	return &AuthHandler{Credentials: creds, Session: session, Flash: flash, Views: v}
}

// ShowLogin renders the empty login form.
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	h.Views.Render(w, r, views.Login, views.Page{})
}

// Login checks the posted credentials. Failures re-render the form with
// the first failing reason; success starts a fresh session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	if err := h.Credentials.Check(username, password); err != nil {
		if apperr.IsAuth(err) {
			logger.Sugar.Warnw("Login rejected", "username", username, "reason", err.Error())
		} else {
			logger.Sugar.Infow("Login incomplete", "reason", err.Error())
		}
		h.Views.Render(w, r, views.Login, views.Page{Error: err.Error(), Username: username})
		return
	}

	if err := h.Session.Establish(w, r); err != nil {
		logger.Sugar.Errorf("Handler: Failed to start session: %v", err)
		h.Views.Render(w, r, views.Login, views.Page{Error: "An error occurred", Username: username})
		return
	}

	logger.Sugar.Infow("Login successful", "username", username)
	h.Flash.Add(w, r, "You were logged in")
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout clears the session flag.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Session.Clear(w)
	h.Flash.Add(w, r, "You were logged out")
	http.Redirect(w, r, "/", http.StatusFound)
}
