package models

// ErrorResponse is the body of every error returned by the API.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}
