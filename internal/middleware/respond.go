package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/burgasvv/parking-service/internal/apperr"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// writeError renders a taxonomy error as the JSON error envelope shared
// with the handlers.
func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(kind.HTTPStatus())
	_ = json.NewEncoder(w).Encode(errorEnvelope{Error: errorBody{
		Code:    kind.String(),
		Message: apperr.Message(err),
	}})
}
