package helpers

import (
	"encoding/json"
	"net/http"
)

type httpError struct {
	Error string `json:"error"`
}

// RespondJSON writes v as a JSON document with the given status code.
func RespondJSON(rw http.ResponseWriter, statusCode int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		statusCode = http.StatusInternalServerError
		body, _ = json.Marshal(httpError{Error: err.Error()})
	}
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(statusCode)
	_, _ = rw.Write(body)
}

// RespondError writes err as a JSON error document with the given status code.
func RespondError(rw http.ResponseWriter, statusCode int, err error) {
	message := http.StatusText(statusCode)
	if err != nil {
		message = err.Error()
	}
	RespondJSON(rw, statusCode, httpError{Error: message})
}
