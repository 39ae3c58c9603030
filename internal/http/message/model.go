package message

// Data is the response payload shared by the message endpoints.
type Data struct {
	Message string `json:"message" doc:"Fixed greeting text" example:"Hello world!"`
}

// Output wraps Data as the response body.
type Output struct {
	Body Data
}

// Payloads are fixed for the life of the process.
var (
	rootData = Data{Message: "Hello world!"}
	apiData  = Data{Message: "Hello from Flask API server!"}
)
