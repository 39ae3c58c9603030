package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
)

// DefaultOrigins allows every origin.
var DefaultOrigins = []string{"*"}

// CORS returns the cross-origin policy applied to every response.
//
// The defaults are permissive: any origin, the common REST methods and any
// request header, without credentials. When all origins are allowed the
// Access-Control-Allow-Origin header is sent even on requests that carry no
// Origin header, so non-browser clients observe the same headers a browser
// would.
func CORS(origins ...string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = DefaultOrigins
	}
	allowAll := slices.Contains(origins, "*")

	handler := cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Link", "X-Request-Id"},
		MaxAge:         300,
	})

	return func(next http.Handler) http.Handler {
		wrapped := handler(next)
		if !allowAll {
			return wrapped
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Origin") == "" {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}
