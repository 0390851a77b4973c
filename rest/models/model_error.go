package models

// ModelError is the body of every error response.
type ModelError struct {
	Description string `json:"description"`
}
