// Package routes assembles the Huma API on top of a chi router.
package routes

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"

	"github.com/janisto/hello-api/internal/http/message"
)

const (
	Title    = "Hello API"
	DocsPath = "/api-docs"
)

// NewAPI mounts the Huma API on router and registers every operation.
func NewAPI(router chi.Router, version string) huma.API {
	cfg := huma.DefaultConfig(Title, version)
	cfg.DocsPath = DocsPath
	// Drop the default $schema link transformer: response bodies are
	// fixed literals and must not gain extra fields.
	cfg.CreateHooks = nil

	api := humachi.New(router, cfg)

	// Advertise CBOR next to JSON for every response body.
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation,
		func(_ *huma.OpenAPI, op *huma.Operation) {
			for _, resp := range op.Responses {
				if resp.Content == nil {
					continue
				}
				if jsonContent, ok := resp.Content["application/json"]; ok {
					resp.Content["application/cbor"] = jsonContent
				}
			}
		},
	)

	Register(api)
	return api
}

// Register wires all operations into the provided API.
func Register(api huma.API) {
	message.Register(api)
}
