package middlewares

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jcmexdev/storefront-cart/internal/pkg/interceptors/constants"
)

// RequireBearer rejects requests whose Bearer token is not token. An empty
// token disables the check.
func RequireBearer(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get(constants.HeaderAuthorization), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": "Not authorized, token failed"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
