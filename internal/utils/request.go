package utils

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/errors"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

func ParseAndValidate(r *http.Request, w http.ResponseWriter, dest any, validate *validator.Validate) bool {

	if err := DecodeJSONBody(r, dest); err != nil {
		slog.Warn("Invalid request", slog.String("error", err.Error()))
		response.Error(w, errors.BadRequestError("Invalid request body").WithError(err))

		return false
	}

	if err := ValidateStruct(validate, dest); err != nil {
		slog.Warn("Validation failed", slog.String("error", err.Error()))
		response.Error(w, errors.ValidationError("Invalid input data").WithError(err))

		return false
	}

	return true
}

// ParseID reads a UUID path value from the request.
func ParseID(r *http.Request, name string) (uuid.UUID, error) {

	raw := r.PathValue(name)
	if raw == "" {
		return uuid.Nil, errors.BadRequestError("Missing " + name + " path parameter")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.BadRequestError("Invalid " + name + " format").WithError(err)
	}

	return id, nil
}
