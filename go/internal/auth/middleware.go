package auth

import (
	"net/http"

	"github.com/google/uuid"
)

// UserIDHeader carries the session user id, set by the frontend proxy after
// it has validated the session cookie.
const UserIDHeader = "X-User-Id"

// Middleware copies the bridged user id from the request header into the
// context. Requests without the header pass through anonymously; the app
// layer rejects them where authentication is required.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get(UserIDHeader); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				r = r.WithContext(WithUserID(r.Context(), id))
			}
		}
		next.ServeHTTP(w, r)
	})
}
