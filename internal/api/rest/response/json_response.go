package response

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// JSONResponse writes the given data as a JSON response with the specified status code.
func JSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// JSONErrorResponse writes an error code and a human readable message with the specified status code.
func JSONErrorResponse(w http.ResponseWriter, statusCode int, code, message string) {
	JSONResponse(w, statusCode, ErrorResponse{Error: code, Message: message})
}

// ValidationErrorResponse writes a 400 listing the invalid fields.
func ValidationErrorResponse(w http.ResponseWriter, fields map[string]string) {
	JSONResponse(w, http.StatusBadRequest, ErrorResponse{
		Error:   "validation_failed",
		Message: "One or more fields are invalid",
		Fields:  fields,
	})
}

// NoContent writes an empty 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// FileResponse sends data as a download named filename.
func FileResponse(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
