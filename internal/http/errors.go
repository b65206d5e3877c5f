package http

import (
	"context"
	"errors"
	"net/http"

	"forefunds/internal/analyzer"
	"forefunds/internal/auth"
	"forefunds/internal/calc"
	"forefunds/internal/core"
	"forefunds/internal/log"
	"forefunds/internal/services"
	"forefunds/internal/store"
)

const msgInternal = "Something went wrong. Please try again."

type errorMapping struct {
	err     error
	status  int
	message string
}

// errorMappings is checked in order with errors.Is.
var errorMappings = []errorMapping{
	{errBadRequest, http.StatusBadRequest, "Invalid request."},
	{errUploadTooLarge, http.StatusRequestEntityTooLarge, "File is too large."},
	{core.ErrInvalidAmount, http.StatusUnprocessableEntity, "Please enter a valid amount."},
	{core.ErrInvalidDate, http.StatusUnprocessableEntity, "Please enter a valid date (YYYY-MM-DD)."},
	{core.ErrEmptyDescription, http.StatusUnprocessableEntity, "Please enter a description."},
	{core.ErrDescriptionTooLong, http.StatusUnprocessableEntity, "Description is too long (max 200 characters)."},
	{core.ErrInvalidType, http.StatusUnprocessableEntity, "Type must be income or expense."},
	{core.ErrInvalidCategory, http.StatusUnprocessableEntity, "Unknown category."},
	{core.ErrRewardTooLong, http.StatusUnprocessableEntity, "Reward is too long (max 200 characters)."},
	{core.ErrInvalidDailyGoal, http.StatusUnprocessableEntity, services.MsgInvalidDailyGoal},
	{core.ErrMissingUser, http.StatusUnauthorized, "Please sign in."},
	{auth.ErrInvalidCredential, http.StatusUnauthorized, "Sign-in failed. Please try again."},
	{auth.ErrInvalidSession, http.StatusUnauthorized, "Your session has expired. Please sign in again."},
	{store.ErrNotFound, http.StatusNotFound, "Not found."},
	{services.ErrExtractionFailed, http.StatusUnprocessableEntity, services.MsgExtractionFailed},
	{analyzer.ErrNoTransactions, http.StatusUnprocessableEntity, services.MsgExtractionFailed},
	{analyzer.ErrUnsupportedDocument, http.StatusUnsupportedMediaType, "Unsupported file type. Upload an image, a PDF or a text file."},
	{services.ErrAnalyzerDisabled, http.StatusServiceUnavailable, "Document analysis is not available right now."},
	{calc.ErrNegative, http.StatusUnprocessableEntity, "Values must not be negative."},
	{calc.ErrTooFewPeople, http.StatusUnprocessableEntity, "At least 2 people are required."},
	{calc.ErrUnknownMethod, http.StatusUnprocessableEntity, "Unknown split method."},
	{calc.ErrBadIndex, http.StatusUnprocessableEntity, "Person index out of range."},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "The request took too long. Please try again."},
}

// statusFor maps err to a status code and a user-facing message.
func statusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, msgInternal
}

// writeError logs server-side failures and writes the mapped response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		errorType := log.ErrorTypeInternal
		if status == http.StatusGatewayTimeout {
			errorType = log.ErrorTypeTimeout
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldError, err,
			log.FieldErrorType, errorType,
			log.FieldPath, r.URL.Path)
	}
	ErrorResponse(status, message).Write(w)
}
