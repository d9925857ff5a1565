package response

type Response struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status,omitempty"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
