package middleware

import (
	"context"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// incomingRequestID returns the caller's X-Request-Id in canonical lowercase
// UUID form. Braced and urn:uuid: spellings are normalized; the nil UUID and
// anything that is not a UUID are discarded.
func incomingRequestID(r *http.Request) (string, bool) {
	id, err := uuid.Parse(r.Header.Get(chimiddleware.RequestIDHeader))
	if err != nil || id == uuid.Nil {
		return "", false
	}
	return id.String(), true
}

// RequestID stores a request identifier under chi's RequestIDKey and echoes it
// in the X-Request-Id response header. Callers may propagate their own UUID;
// any other value is replaced with a fresh UUIDv4.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := incomingRequestID(r)
			if !ok {
				id = uuid.NewString()
			}
			w.Header().Set(chimiddleware.RequestIDHeader, id)
			ctx := context.WithValue(r.Context(), chimiddleware.RequestIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
