package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/BackofficeGo/pkg/errors"
	"github.com/utafrali/BackofficeGo/pkg/validator"
)

type response struct {
	Data  any            `json:"data,omitempty"`
	Error *errorResponse `json:"error,omitempty"`
}

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response{Data: data})
}

// writeRaw writes the payload without the response envelope. Token
// endpoints return the pair as the top-level object.
func writeRaw(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, r *http.Request, err error, log *slog.Logger) {
	status := apperrors.HTTPStatus(err)

	resp := response{Error: &errorResponse{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	}}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp.Error.Code = appErr.Code
		resp.Error.Message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeValidationError(w http.ResponseWriter, verr *validator.ValidationError) {
	resp := response{Error: &errorResponse{
		Code:    "VALIDATION_FAILED",
		Message: "request validation failed",
		Fields:  verr.Fields(),
	}}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(resp)
}

// decodeAndValidate decodes the JSON body into target and validates it.
// Returns false after writing the error response when the body is bad.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, target any, log *slog.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeError(w, r, apperrors.InvalidInput("invalid JSON body"), log)
		return false
	}

	if err := validator.Validate(target); err != nil {
		var verr *validator.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, verr)
		} else {
			writeError(w, r, apperrors.InvalidInput("request validation failed"), log)
		}
		return false
	}
	return true
}
