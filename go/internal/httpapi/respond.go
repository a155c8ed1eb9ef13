package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/draftforge/cubeleague/go/internal/apperrors"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string         `json:"error"`
	Kind  apperrors.Kind `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError maps an error kind onto an HTTP status. Store and unexpected
// errors are logged in full but surface a generic message.
func writeError(w http.ResponseWriter, err error) {
	kind := apperrors.KindOf(err)

	var status int
	switch kind {
	case apperrors.KindNotAuthenticated:
		status = http.StatusUnauthorized
	case apperrors.KindNotAuthorized:
		status = http.StatusForbidden
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindValidation:
		status = http.StatusBadRequest
	case apperrors.KindConflict:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("internal error")
		message = "internal error"
	}

	writeJSON(w, status, errorBody{Error: message, Kind: kind})
}

// decode reads a JSON request body, rejecting unknown fields.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "invalid request body", err)
	}
	return nil
}

// asValidation converts uuid parse failures and similar into a validation
// error for the client.
func asValidation(err error, message string) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.KindValidation, message, err)
}
