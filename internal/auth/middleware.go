package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/botica-pos/botica/internal/platform/httpx"
	"github.com/botica-pos/botica/internal/shared"
)

// RequireAuth resolves the Authorization bearer token and stores the caller
// identity in the request context. Requests without a valid token get a 401
// problem response.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		identity, err := s.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, ErrTokenInvalid) {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing or expired token")
				return
			}
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), identity)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
