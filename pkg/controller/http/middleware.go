package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/jarvis/pkg/utils/logging"
)

// sessionMiddleware binds the request to a conversation. The session ID is
// taken from the X-Session-ID header, then the jarvis_session cookie. A new
// ID is issued as a cookie when neither is present.
func sessionMiddleware(table *sessionTable) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if !validSessionID(id) {
				id = ""
				if cookie, err := r.Cookie(SessionCookie); err == nil && validSessionID(cookie.Value) {
					id = cookie.Value
				}
			}

			if id == "" {
				id = newSessionID()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(SessionHeader, id)

			sess := table.get(id)
			sess.mu.Lock()
			defer sess.mu.Unlock()

			ctx := logging.With(r.Context(), logging.From(r.Context()).With("session_id", id))
			ctx = contextWithConversation(ctx, sess.conv)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
