// Package owner attaches the caller's owner ID to the request context.
package owner

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"budget/internal/core"
	"budget/internal/log"
)

// Header names the owner of created records until real authentication exists.
const Header = "X-Owner-ID"

// Middleware parses Header as a UUID. Missing or malformed values leave the
// context untouched and the service assigns a fresh owner.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(Header)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			slog.DebugContext(r.Context(), "Ignoring malformed owner header",
				log.FieldComponent, log.ComponentHTTP, "value", raw)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(core.WithOwner(r.Context(), id)))
	})
}
