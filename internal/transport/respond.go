package transport

import (
	"errors"
	"net/http"

	"stockroom/internal/middleware"
	"stockroom/internal/repository"
	"stockroom/internal/service"

	"go.uber.org/zap"
)

// respondServiceError maps domain errors onto the HTTP taxonomy: 400 for
// validation, 404 for missing entities, 409 for state conflicts (including
// stock shortfalls), 502 for a failed supplier dispatch, 500 otherwise.
func respondServiceError(logger *zap.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyItems),
		errors.Is(err, service.ErrInvalidQuantity):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrSupplierNotFound),
		errors.Is(err, repository.ErrDraftNotFound),
		errors.Is(err, repository.ErrPurchaseNotFound),
		errors.Is(err, repository.ErrPurchaseItemNotFound),
		errors.Is(err, repository.ErrSaleNotFound),
		errors.Is(err, service.ErrNoDraftItems):
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, repository.ErrInsufficientStock),
		errors.Is(err, service.ErrDraftNotEditable),
		errors.Is(err, service.ErrDraftNotOrdered):
		middleware.RespondWithError(w, http.StatusConflict, err.Error())

	case errors.Is(err, service.ErrDispatchFailed):
		logger.Error("Dispatch to supplier failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, service.ErrDispatchFailed.Error())

	default:
		logger.Error("Unexpected service error", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// respondBadRequest handles decode/validation failures uniformly.
func respondBadRequest(logger *zap.Logger, w http.ResponseWriter, err error) {
	logger.Debug("Request validation failed", zap.Error(err))

	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}

	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
}
