// Package api implements the OpenNote REST surface using chi.
package api

import (
	"log/slog"
	"net/http"
)

// KeyValidator checks a presented API key against the credential store.
type KeyValidator interface {
	ValidateAPIKey(key string) (bool, error)
}

// APIKeyMiddleware returns middleware that validates the X-API-Key header
// (or apiKey query parameter) against generated credentials. If enabled is
// false, all requests pass through, which is the default for a purely
// local UI.
func APIKeyMiddleware(enabled bool, keys KeyValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("apiKey")
			}
			if key == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody("api key required"))
				return
			}
			ok, err := keys.ValidateAPIKey(key)
			if err != nil {
				slog.Error("api key validation failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
				return
			}
			if !ok {
				writeJSON(w, http.StatusUnauthorized, errorBody("invalid api key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
