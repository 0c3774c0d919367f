package models

type IngestResponse struct {
	Message string `json:"message"`
	Source  string `json:"source,omitempty"`
	Error   string `json:"error,omitempty"`
}

type QueryResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
	Error   string   `json:"error,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
}
