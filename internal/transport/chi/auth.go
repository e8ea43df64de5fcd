package chi

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
)

// HeaderAPIKey is accepted as an alternative to the Authorization header.
const HeaderAPIKey = "X-API-Key"

// publicPaths are served without a key. CORS preflights are public too.
var publicPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// keyring holds SHA-256 digests of the accepted keys so comparison time
// does not depend on key length or content.
type keyring [][sha256.Size]byte

func newKeyring(keys []string) keyring {
	var kr keyring
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			kr = append(kr, sha256.Sum256([]byte(k)))
		}
	}
	return kr
}

func (kr keyring) accepts(token string) bool {
	sum := sha256.Sum256([]byte(token))
	ok := 0
	for i := range kr {
		ok |= subtle.ConstantTimeCompare(kr[i][:], sum[:])
	}
	return ok == 1
}

// bearerToken extracts the credential from "Authorization: Bearer <token>"
// (scheme is case-insensitive) or from X-API-Key.
func bearerToken(r *http.Request) (token, problem string) {
	if key := r.Header.Get(HeaderAPIKey); key != "" {
		return key, ""
	}
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", "missing authorization header"
	}
	scheme, token, found := strings.Cut(auth, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", "authorization header must use Bearer scheme"
	}
	return strings.TrimSpace(token), ""
}

// BearerAuthMiddleware rejects requests without one of apiKeys.
// No keys configured means the API is open.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	kr := newKeyring(apiKeys)

	return func(next http.Handler) http.Handler {
		if len(kr) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, public := publicPaths[r.URL.Path]; public || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token, problem := bearerToken(r)
			if problem != "" {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, problem)
				return
			}
			if !kr.accepts(token) {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
