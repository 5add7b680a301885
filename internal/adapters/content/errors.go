package content

import (
	"context"
	"errors"
	"net/http"

	"github.com/zatekoja/woundtrack/internal/infrastructure/clients/contentapi"
	apperrors "github.com/zatekoja/woundtrack/pkg/errors"
	"github.com/zatekoja/woundtrack/pkg/retry"
)

// mapError translates content API failures into application errors.
func mapError(err error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *contentapi.APIError
	if errors.As(err, &apiErr) {
		msg := action
		if apiErr.Message != "" {
			msg = action + ": " + apiErr.Message
		}
		switch apiErr.StatusCode {
		case http.StatusNotFound:
			return &apperrors.AppError{Type: apperrors.ErrorTypeNotFound, Message: msg, Err: err}
		case http.StatusUnauthorized, http.StatusForbidden:
			return &apperrors.AppError{Type: apperrors.ErrorTypeUnauthorized, Message: msg, Err: err}
		case http.StatusBadRequest:
			return &apperrors.AppError{Type: apperrors.ErrorTypeValidation, Message: msg, Err: err}
		}
		return apperrors.NewExternalError(msg, err)
	}

	if errors.Is(err, contentapi.ErrMalformedResponse) {
		return &apperrors.AppError{Type: apperrors.ErrorTypeValidation, Message: action, Err: err}
	}
	return apperrors.NewExternalError(action, err)
}

// retryable stops retries on answers that will not change.
func retryable(err error) error {
	switch contentapi.StatusCode(err) {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return retry.Permanent(err)
	}
	if errors.Is(err, contentapi.ErrMalformedResponse) || errors.Is(err, context.Canceled) {
		return retry.Permanent(err)
	}
	return err
}
