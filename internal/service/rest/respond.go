package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/adosoftyazilim/blrb2b/internal/domain"
)

type errorBody struct {
	Message string `json:"message"`
}

// statusFromError отображает доменные ошибки на HTTP-статусы в одном месте.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCustomerRequired),
		errors.Is(err, domain.ErrItemsRequired),
		errors.Is(err, domain.ErrItemQtyInvalid),
		errors.Is(err, domain.ErrItemPriceInvalid),
		errors.Is(err, domain.ErrProductInactive),
		errors.Is(err, domain.ErrStatusUnknown),
		errors.Is(err, domain.ErrStatusTransition):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientStock),
		domain.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, logger *log.Entry, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.WithError(err).Warn("failed to encode response body")
	}
}

func writeError(w http.ResponseWriter, logger *log.Entry, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		logger.WithError(err).Error("request failed")
		writeJSON(w, logger, status, errorBody{Message: "internal server error"})
		return
	}
	writeJSON(w, logger, status, errorBody{Message: err.Error()})
}
