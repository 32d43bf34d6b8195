package handler

// ErrorResponse is the JSON envelope of every failed request. Errors is set
// only for validation failures and maps JSON field names to messages.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Errors map[string][]string `json:"errors,omitempty"`
}
