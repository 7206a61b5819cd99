package handlers

import (
	"errors"
	"net/http"

	"fleet-backend/internal/fleet"
	"fleet-backend/internal/upstream"
	"fleet-backend/internal/validation"
	"fleet-backend/pkg/utils"
)

// writeServiceError maps the error taxonomy onto HTTP responses: validation
// failures become 400 with field-keyed messages, backend rejections keep
// their upstream status and envelope, transport failures become 502.
func writeServiceError(w http.ResponseWriter, err error) {
	var fieldErrs validation.FieldErrors
	if errors.As(err, &fieldErrs) {
		utils.FieldErrorsResponse(w, fieldErrs)
		return
	}

	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		utils.JSON(w, apiErr.Status, map[string]string{
			"message": apiErr.Message,
			"type":    apiErr.Type,
			"summary": apiErr.Summary,
		})
		return
	}

	var transportErr *upstream.TransportError
	if errors.As(err, &transportErr) {
		utils.Error(w, http.StatusBadGateway, transportErr.Error())
		return
	}

	if errors.Is(err, fleet.ErrNotReady) {
		utils.Error(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	utils.Error(w, http.StatusInternalServerError, err.Error())
}
