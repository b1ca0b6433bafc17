package utils

import (
	"encoding/json"
	"net/http"
)

// MessageResponse is the {"message": "..."} body used for confirmations and errors.
type MessageResponse struct {
	Message string `json:"message"`
}

// FieldErrorResponse names each rejected request parameter with the reason.
type FieldErrorResponse struct {
	Message map[string]string `json:"message"`
}

func NewMessage(message string) MessageResponse {
	return MessageResponse{Message: message}
}

func NewFieldError(field, message string) FieldErrorResponse {
	return FieldErrorResponse{Message: map[string]string{field: message}}
}

// WriteJSON sends data with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}
