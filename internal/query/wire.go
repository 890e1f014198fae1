package query

const (
	// GeneratePath is the endpoint of the generation service.
	GeneratePath = "/generate"
	// RefinePath rewrites an earlier answer into a complete sentence.
	RefinePath = "/refine"
)

// Request is the JSON body of POST /generate.
type Request struct {
	ItemType string `json:"itemType"`
	Question string `json:"question"`
}

// Response is the JSON body returned by POST /generate. A non-empty Error takes precedence over Response.
type Response struct {
	Response        string  `json:"response"`
	Error           string  `json:"error,omitempty"`
	InitialResponse string  `json:"initialResponse,omitempty"`
	ContextSnippet  string  `json:"contextSnippet,omitempty"`
	TimeTaken       float64 `json:"timeTaken,omitempty"`
}

// RefineRequest is the JSON body of POST /refine.
type RefineRequest struct {
	Question      string `json:"question"`
	InitialAnswer string `json:"initialAnswer"`
}

// RefineResponse is the JSON body returned by POST /refine.
type RefineResponse struct {
	RefinedResponse string `json:"refinedResponse,omitempty"`
	Error           string `json:"error,omitempty"`
}
