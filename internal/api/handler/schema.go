package handler

// errorResponse documents the JSON envelope rendered by the API error handler.
type errorResponse struct {
	Error string `json:"error"`
}
