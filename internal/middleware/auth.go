package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dcmanaus/laudosgo/internal/utils"
)

type contextKey string

// UserContextKey holds the validated session claims on the request context.
const UserContextKey contextKey = "user"

// SessionCookie is the name of the session cookie set on login.
const SessionCookie = "dc_session"

// Session gates every protected route behind a valid session cookie,
// redirecting browsers to the login form otherwise.
func Session(jwtSecret string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			claims, err := utils.ValidateSessionToken(cookie.Value, jwtSecret)
			if err != nil {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
