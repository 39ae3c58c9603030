// Package respond renders framework-level error responses (404, 405, 500)
// in Huma's problem details shape so every error the API emits looks alike.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/janisto/hello-api/internal/platform/logging"
)

const (
	contentTypeProblemJSON = "application/problem+json"
	contentTypeProblemCBOR = "application/problem+cbor"

	msgNotFound          = "resource not found"
	msgInternalServerErr = "internal server error"
)

// candidate methods probed when building the Allow header
var probeMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// WriteProblem writes a problem details body with the given status. The
// body is CBOR when the client prefers application/cbor, JSON otherwise.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) error {
	problem := &huma.ErrorModel{
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}

	if selectFormat(r.Header.Get("Accept")) {
		body, err := cbor.Marshal(problem)
		if err != nil {
			return fmt.Errorf("encode cbor problem: %w", err)
		}
		w.Header().Set("Content-Type", contentTypeProblemCBOR)
		w.WriteHeader(status)
		_, err = w.Write(body)
		return err
	}

	w.Header().Set("Content-Type", contentTypeProblemJSON)
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(problem)
}

// NotFoundHandler answers unmatched paths with 404.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := WriteProblem(w, r, http.StatusNotFound, msgNotFound); err != nil {
			logging.LogError(r.Context(), "failed to render not found", err)
		}
	}
}

// MethodNotAllowedHandler answers a matched path with an unsupported
// method with 405 and an Allow header listing the supported ones. A plain
// OPTIONS request (not a CORS preflight) gets 200 with the same Allow header.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		allow := allowedMethods(r)
		if len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
		}
		if r.Method == http.MethodOptions && len(allow) > 0 {
			w.WriteHeader(http.StatusOK)
			return
		}
		detail := fmt.Sprintf("method %s not allowed", r.Method)
		if err := WriteProblem(w, r, http.StatusMethodNotAllowed, detail); err != nil {
			logging.LogError(r.Context(), "failed to render method not allowed", err)
		}
	}
}

// Recoverer turns handler panics into 500 responses. If the handler already
// started the response it is left as is. http.ErrAbortHandler is re-panicked
// so net/http can abort the connection.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				if errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				logging.LogError(r.Context(), "panic recovered", err, zap.ByteString("stack", debug.Stack()))
				if rw.wroteHeader {
					return
				}
				if writeErr := WriteProblem(w, r, http.StatusInternalServerError, msgInternalServerErr); writeErr != nil {
					logging.LogError(r.Context(), "failed to render internal error", writeErr)
				}
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

// responseWriter records whether the response has been started.
type responseWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// allowedMethods asks chi which methods the request path is routed for.
// HEAD is implied by GET (the router serves HEAD through the GET handler)
// and OPTIONS by any routed method.
func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}

	routePath := rctx.RoutePath
	if routePath == "" {
		routePath = r.URL.RawPath
		if routePath == "" {
			routePath = r.URL.Path
		}
		if routePath == "" {
			routePath = "/"
		}
	}

	matched := make(map[string]bool, len(probeMethods))
	for _, method := range probeMethods {
		matched[method] = rctx.Routes.Match(chi.NewRouteContext(), method, routePath)
	}
	if matched[http.MethodGet] {
		matched[http.MethodHead] = true
	}

	var allowed []string
	for _, method := range probeMethods {
		if matched[method] {
			allowed = append(allowed, method)
		}
	}
	if len(allowed) > 0 && !matched[http.MethodOptions] {
		allowed = append(allowed, http.MethodOptions)
	}
	return allowed
}

// acceptRange is one media range from an Accept header.
type acceptRange struct {
	typ     string
	subtype string
	q       float64
}

// parseAccept splits an Accept header into media ranges. A part without a
// slash is read as type/*. A missing, malformed or out of range q counts as
// 1.0; when q repeats, the last one wins.
func parseAccept(accept string) []acceptRange {
	var ranges []acceptRange
	for part := range strings.SplitSeq(accept, ",") {
		params := strings.Split(part, ";")
		mediaType := strings.ToLower(strings.TrimSpace(params[0]))
		if mediaType == "" {
			continue
		}
		typ, subtype, ok := strings.Cut(mediaType, "/")
		if !ok || subtype == "" {
			subtype = "*"
		}
		typ = strings.TrimSpace(typ)
		subtype = strings.TrimSpace(subtype)

		q := 1.0
		for _, p := range params[1:] {
			key, value, found := strings.Cut(strings.TrimSpace(p), "=")
			if !found || !strings.EqualFold(strings.TrimSpace(key), "q") {
				continue
			}
			parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil || parsed < 0 || parsed > 1 {
				q = 1.0
				continue
			}
			q = parsed
		}
		ranges = append(ranges, acceptRange{typ: typ, subtype: subtype, q: q})
	}
	return ranges
}

// specificity ranks how closely r names mediaType (an application/*
// type), or returns -1 when r does not match it at all. Structured syntax
// types such as application/problem+cbor rank above their base type.
func (r acceptRange) specificity(mediaType string) int {
	_, subtype, _ := strings.Cut(mediaType, "/")
	switch {
	case r.typ == "*" && r.subtype == "*":
		return 0
	case r.typ != "application":
		return -1
	case r.subtype == "*":
		return 1
	case strings.HasPrefix(r.subtype, "*+"):
		suffix := r.subtype[2:]
		if subtype == suffix || strings.HasSuffix(subtype, "+"+suffix) {
			return 2
		}
		return -1
	case r.subtype == subtype && strings.Contains(subtype, "+"):
		return 4
	case r.subtype == subtype:
		return 3
	}
	return -1
}

// problemFormats lists the types a problem body can be written as, JSON
// first so it wins ties.
var problemFormats = []struct {
	mediaType string
	cbor      bool
}{
	{"application/json", false},
	{contentTypeProblemJSON, false},
	{"application/cbor", true},
	{contentTypeProblemCBOR, true},
}

// selectFormat reports whether the Accept header selects CBOR. Each
// candidate type takes the q of its most specific matching range; the
// highest q wins, ties go to the more specific range and then to JSON.
// q=0 excludes a type. Nothing acceptable means JSON.
func selectFormat(accept string) bool {
	ranges := parseAccept(accept)
	if len(ranges) == 0 {
		return false
	}

	bestQ, bestSpec, useCBOR := 0.0, -1, false
	for _, f := range problemFormats {
		q, spec := 0.0, -1
		for _, r := range ranges {
			if s := r.specificity(f.mediaType); s > spec {
				q, spec = r.q, s
			}
		}
		if spec < 0 || q <= 0 {
			continue
		}
		if q > bestQ || (q == bestQ && spec > bestSpec) {
			bestQ, bestSpec, useCBOR = q, spec, f.cbor
		}
	}
	return useCBOR
}
