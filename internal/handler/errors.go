package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/spendlog/spendlog/internal/export"
	"github.com/spendlog/spendlog/internal/middleware"
	"github.com/spendlog/spendlog/internal/service"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// serviceErrors maps service sentinels to responses. First match wins.
var serviceErrors = []errorMapping{
	{service.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication credentials were not provided or are invalid"},

	{service.ErrAmountRequired, http.StatusBadRequest, "AMOUNT_REQUIRED", "Amount is required"},
	{service.ErrCategoryRequired, http.StatusBadRequest, "CATEGORY_REQUIRED", "Category is required"},
	{service.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero with at most 2 decimal places"},
	{service.ErrInvalidCategory, http.StatusBadRequest, "INVALID_CATEGORY", "Category must be one of Food, Travel, Rent, Shopping, Utilities, Entertainment"},
	{service.ErrDescriptionTooLong, http.StatusBadRequest, "DESCRIPTION_TOO_LONG", "Description must be at most 1000 characters"},
	{service.ErrExpenseNotFound, http.StatusNotFound, "EXPENSE_NOT_FOUND", "Expense not found"},
	{service.ErrPageNotFound, http.StatusNotFound, "PAGE_NOT_FOUND", "Invalid page."},

	{service.ErrInvalidMonth, http.StatusBadRequest, "INVALID_MONTH", "Invalid month format. Use YYYY-MM"},
	{export.ErrUnknownFormat, http.StatusNotFound, "NOT_FOUND", "resource not found"},

	{service.ErrMissingFields, http.StatusBadRequest, "MISSING_FIELDS", "All fields (username, email, password) are required."},
	{service.ErrMissingLoginFields, http.StatusBadRequest, "MISSING_FIELDS", "Both username and password are required."},
	{service.ErrUsernameTaken, http.StatusBadRequest, "USERNAME_TAKEN", "Username already taken"},
	{service.ErrInvalidEmail, http.StatusBadRequest, "INVALID_EMAIL", "Enter a valid email address."},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials"},
	{service.ErrInvalidRefreshToken, http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"},
}

// handleServiceError maps service errors to HTTP responses.
// Anything unrecognised is logged with the request ID and reported as a 500.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			writeError(w, m.status, m.code, m.message)
			return
		}
	}

	logger.ErrorContext(r.Context(), "internal_error",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
}

func writeInvalidJSON(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
}
