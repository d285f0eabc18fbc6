package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"astro-admin-go/internal/services"
	"astro-admin-go/internal/store"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type ErrorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Message: message})
}

// writeFailure maps an operation error to a response. Backend statuses
// pass through; transport failures become 502.
func writeFailure(w http.ResponseWriter, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		fields := make(map[string]string, len(verrs))
		for name, fieldErr := range verrs {
			fields[name] = fieldErr.Error()
		}
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Message: verrs.Error(), Fields: fields})
	case errors.Is(err, store.ErrMissingID), errors.Is(err, store.ErrUnknownOp):
		WriteError(w, http.StatusBadRequest, err.Error())
	case store.IsAborted(err):
		WriteError(w, http.StatusServiceUnavailable, "Request cancelled")
	default:
		status := services.StatusOf(err)
		if status == 0 {
			status = http.StatusBadGateway
		}
		WriteError(w, status, services.Message(err))
	}
}
