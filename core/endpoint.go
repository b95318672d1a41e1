package core

// EndpointProvider provides a list of endpoints to register dynamically
type EndpointProvider interface {
	Endpoints() []*Endpoint
}

type Endpoint struct {
	Path      string
	Method    string
	Protected bool // requires an authenticated session
	Metadata  EndpointMetadata
}

type EndpointMetadata struct {
	OperationID   string
	Description   string
	SuccessStatus int
}

// MessageResponse is the JSON body of most auth responses, errors included.
type MessageResponse struct {
	Message string `json:"message"`
}
