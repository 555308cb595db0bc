package response

import (
	"encoding/json"
	"net/http"

	apperrors "coursehub/errors"
	"coursehub/logger"
)

// Envelope is the standard API response body
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// OK sends a success envelope with the given status code and payload
func OK(w http.ResponseWriter, statusCode int, data interface{}) {
	SendJSON(w, statusCode, Envelope{Success: true, Data: data})
}

// OKMessage sends a success envelope with a message and payload
func OKMessage(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	SendJSON(w, statusCode, Envelope{Success: true, Message: message, Data: data})
}

// Fail sends a failure envelope with the given status code and message
func Fail(w http.ResponseWriter, statusCode int, message string) {
	SendJSON(w, statusCode, Envelope{Success: false, Message: message})
}

// Error maps an application error to its HTTP status and failure envelope
func Error(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed: %v", err)
	}
	Fail(w, status, apperrors.MessageOf(err))
}

// SendJSON encodes and sends a JSON response
func SendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}
