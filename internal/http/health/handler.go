package health

import "net/http"

// Path is where the liveness probe is served.
const Path = "/health"

var body = []byte(`{"status":"healthy"}` + "\n")

// Handler answers liveness probes. It is mounted on the router directly and
// stays out of the OpenAPI document.
func Handler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}
