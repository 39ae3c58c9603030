// Package message serves GET /api/message as an HTTP Cloud Function.
package message

import (
	"net/http"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/go-chi/cors"
)

var body = []byte(`{"message":"Hello from Flask API server!"}` + "\n")

const allowedMethods = "GET, HEAD, OPTIONS"

func init() {
	functions.HTTP("Message", newHandler().ServeHTTP)
}

// newHandler wraps messageHandler in the same permissive cross-origin
// policy the server uses. Preflight requests are answered by the CORS
// layer and never reach messageHandler.
func newHandler() http.Handler {
	withCORS := cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	})
	return withCORS(http.HandlerFunc(messageHandler))
}

func messageHandler(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	// go-chi/cors only answers requests carrying Origin.
	if h.Get("Access-Control-Allow-Origin") == "" {
		h.Set("Access-Control-Allow-Origin", "*")
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	case http.MethodOptions:
		h.Set("Allow", allowedMethods)
		w.WriteHeader(http.StatusOK)
	default:
		h.Set("Allow", allowedMethods)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}
