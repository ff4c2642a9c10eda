package chi

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
)

const (
	bearerPrefix = "Bearer "
	// wsKeyParam carries the key on the WebSocket upgrade, where browsers
	// cannot set headers.
	wsKeyParam = "api_key"
	wsPath     = "/api/chat/ws"
)

var publicPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// keyring holds key digests so lookups compare fixed-length values.
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

func (kr keyring) contains(key string) bool {
	d := sha256.Sum256([]byte(key))
	found := 0
	for i := range kr {
		found |= subtle.ConstantTimeCompare(kr[i][:], d[:])
	}
	return found == 1
}

// BearerAuthMiddleware rejects requests without a configured API key.
// No keys disables the check.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	kr := newKeyring(apiKeys)

	return func(next http.Handler) http.Handler {
		if len(kr) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			key, msg := requestKey(r)
			if msg != "" {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, msg)
				return
			}
			if !kr.contains(key) {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestKey returns the presented key, or a rejection message.
func requestKey(r *http.Request) (string, string) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		if r.URL.Path == wsPath {
			if k := r.URL.Query().Get(wsKeyParam); k != "" {
				return k, ""
			}
		}
		return "", "missing authorization header"
	}
	key, ok := strings.CutPrefix(auth, bearerPrefix)
	if !ok {
		return "", "authorization header must use Bearer scheme"
	}
	return key, ""
}
