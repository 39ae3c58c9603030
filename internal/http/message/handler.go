package message

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/janisto/hello-api/internal/platform/logging"
)

const (
	RootPath = "/"
	APIPath  = "/api/message"
)

// Register wires the message routes into the provided API.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-root-message",
		Method:      http.MethodGet,
		Path:        RootPath,
		Summary:     "Root greeting",
		Tags:        []string{"Message"},
	}, rootHandler)

	huma.Register(api, huma.Operation{
		OperationID: "get-api-message",
		Method:      http.MethodGet,
		Path:        APIPath,
		Summary:     "API server message",
		Description: "Returns the message shown by the browser client.",
		Tags:        []string{"Message"},
	}, apiHandler)
}

func rootHandler(ctx context.Context, _ *struct{}) (*Output, error) {
	logging.LoggerFromContext(ctx).Debug("message get", zap.String("path", RootPath))
	return &Output{Body: rootData}, nil
}

func apiHandler(ctx context.Context, _ *struct{}) (*Output, error) {
	logging.LoggerFromContext(ctx).Debug("message get", zap.String("path", APIPath))
	return &Output{Body: apiData}, nil
}
