package httpapi

import (
	"context"
	"net/http"

	"astro-admin-go/internal/models"
	"astro-admin-go/internal/services"
	"astro-admin-go/internal/store"

	"github.com/go-chi/chi/v5"
)

type contextKey string

const ctxUser contextKey = "user"

// RequireSession rejects requests unless the stored session is signed in
// and unexpired, and puts the stored user on the request context.
func RequireSession(auth *services.Auth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.Current()
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "Authentication failed")
				return
			}
			ctx := context.WithValue(r.Context(), ctxUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func CurrentUser(r *http.Request) (models.User, bool) {
	user, ok := r.Context().Value(ctxUser).(models.User)
	return user, ok
}

// RequireSliceAccess resolves {slice} and checks the user may manage it.
func RequireSliceAccess(st *store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := chi.URLParam(r, "slice")
			if _, ok := st.Handle(name); !ok {
				WriteError(w, http.StatusNotFound, "Unknown collection "+name)
				return
			}
			user, _ := CurrentUser(r)
			if !services.CanManage(user, name) {
				WriteError(w, http.StatusForbidden, "Not allowed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
