package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/nailsxoxi/salon-platform/internal/auth"
	"github.com/nailsxoxi/salon-platform/internal/users"
)

type contextKey string

const principalKey contextKey = "principal"

// UserLoader fetches the account behind a token subject.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
}

// Authenticate verifies the bearer token and re-loads the account on every
// request so blocked or deleted users lose access immediately, not at token
// expiry. The full user is attached to the context as the principal.
func Authenticate(tokens *auth.TokenMaker, loader UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				http.Error(w, "invalid token", http.StatusForbidden)
				return
			}

			user, err := loader.GetByID(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, users.ErrNotFound) {
					http.Error(w, "Cuenta eliminada o inválida", http.StatusForbidden)
					return
				}
				http.Error(w, "server error", http.StatusInternalServerError)
				return
			}
			if user.DeletedAt != nil {
				http.Error(w, "Cuenta eliminada o inválida", http.StatusForbidden)
				return
			}
			if user.IsBlocked {
				http.Error(w, "Cuenta bloqueada", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects non-admin principals. It must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := PrincipalFromContext(r.Context())
		if !ok || !user.IsAdmin() {
			http.Error(w, "Acceso restringido", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PrincipalFromContext returns the authenticated user if present.
func PrincipalFromContext(ctx context.Context) (*users.User, bool) {
	user, ok := ctx.Value(principalKey).(*users.User)
	return user, ok
}

// WithPrincipal attaches a user to the context; exported for handler tests.
func WithPrincipal(ctx context.Context, user *users.User) context.Context {
	return context.WithValue(ctx, principalKey, user)
}
