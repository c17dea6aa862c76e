package middleware

import (
	"net/http"

	"notepost/config/database"
	"notepost/pkg/logger"
)

// DBScope gives every request its own database.Scope and closes it exactly
// once when the handler returns, panics included.
func DBScope(store *database.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := store.NewScope()
			defer func() {
				if err := scope.Close(); err != nil {
					logger.Sugar.Warnf("Failed to release database connection: %v", err)
				}
			}()
			next.ServeHTTP(w, r.WithContext(database.WithScope(r.Context(), scope)))
		})
	}
}
