package router

import (
	"fmt"
	"net/http"

	"notepost/config"
	"notepost/config/database"
	handlers "notepost/handler"
	entryHandler "notepost/internal/entry"
	"notepost/internal/entry/repository"
	"notepost/internal/entry/service"
	"notepost/middleware"
	"notepost/pkg/logger"
	"notepost/socket"
	"notepost/views"
)

// Setup wires the routes for cfg on top of db. Entry changes are published
// to hub.
func Setup(cfg *config.Config, db *database.Store, hub *socket.Hub) (http.Handler, error) {
	sessions := middleware.NewSessions(cfg.SecretKey)
	renderer, err := views.New(sessions)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	csrf := middleware.CSRF{Enabled: cfg.CSRFEnabled}

	entryRepo := repository.NewEntryRepository()
	entryService := service.NewEntryService(entryRepo, hub)
	entries := entryHandler.NewEntryHandler(entryService, renderer, sessions.Flash)
	auth := handlers.NewAuthHandler(middleware.Credentials{
		Username: cfg.Username,
		Password: cfg.Password,
	}, sessions.Guard, sessions.Flash, renderer)

	protected := func(h http.HandlerFunc) http.Handler {
		return sessions.Guard.RequireLogin(csrf.Verify(h))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", entries.ShowEntries)
	mux.Handle("POST /add", protected(entries.AddEntry))
	mux.Handle("POST /delete/{id}", protected(entries.DeleteEntry))

	mux.HandleFunc("GET /login", auth.ShowLogin)
	mux.Handle("POST /login", csrf.Verify(http.HandlerFunc(auth.Login)))
	mux.HandleFunc("GET /logout", auth.Logout)

	mux.HandleFunc("GET /feed", func(w http.ResponseWriter, r *http.Request) {
		socket.ServeWs(hub, w, r)
	})
	mux.HandleFunc("GET /healthz", health)

	logger.Sugar.Infow("Routes registered", "profile", cfg.Profile, "csrf", cfg.CSRFEnabled)
	return middleware.RequestLogger(csrf.Issue(middleware.DBScope(db)(mux))), nil
}

func health(w http.ResponseWriter, r *http.Request) {
	db, err := database.FromContext(r.Context())
	if err == nil {
		err = db.Ping(r.Context())
	}
	if err != nil {
		logger.Sugar.Warnf("Health check failed: %v", err)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("ok"))
}
