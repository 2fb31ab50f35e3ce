package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/Leganyst/scrutineering-core/internal/scrutineering"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError переводит ошибки ядра в HTTP-коды. Отказ запроса как такового
// (конфликт, недопустимый переход, незакрытый чек-лист) отличен от
// исчерпания повторов: первый — вина запроса, второй — деградация хранилища.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var status int
	switch {
	case errors.Is(err, scrutineering.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, scrutineering.ErrIllegalTransition),
		errors.Is(err, scrutineering.ErrIncomplete),
		errors.Is(err, scrutineering.ErrBookingNotOngoing):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, scrutineering.ErrInactiveType),
		errors.Is(err, scrutineering.ErrOutsideWindow),
		errors.Is(err, scrutineering.ErrUnalignedStart),
		errors.Is(err, scrutineering.ErrInvalidResource):
		status = http.StatusBadRequest
	case errors.Is(err, gorm.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, scrutineering.ErrExhaustedRetries):
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}

	if status >= 500 {
		log.Error("request failed", slog.String("error", err.Error()))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
