package middleware

import "net/http"

// Vary adds Accept to the Vary header: the body format (JSON or CBOR)
// depends on it. The CORS middleware adds Origin separately.
func Vary() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Accept")
			next.ServeHTTP(w, r)
		})
	}
}
