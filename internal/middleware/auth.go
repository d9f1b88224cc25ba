package middleware

import (
	"net/http"
	"strings"

	"github.com/vidtube/backend/internal/authz"
	"github.com/vidtube/backend/internal/store"
)

// TokenVerifier checks an access token and returns the user it belongs to.
type TokenVerifier interface {
	Verify(accessToken string) (store.ID, error)
}

// Authenticate resolves the Bearer token, when present, into the actor
// identity on the request context. Requests without a token pass through
// anonymously; requests with a bad token are rejected.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			actor, err := verifier.Verify(token)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(authz.WithActor(r.Context(), actor)))
		})
	}
}

// RequireActor rejects requests that did not authenticate.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authz.ActorFromContext(r.Context()).IsZero() {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
