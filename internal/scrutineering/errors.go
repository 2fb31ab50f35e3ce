package scrutineering

import "errors"

// Ошибки ядра. Вызывающие проверяют их через errors.Is.
var (
	// Слот уже занят неотменённым бронированием. Не ретраится.
	ErrConflict = errors.New("slot already reserved")
	// Переход статуса вне таблицы допустимых. Не ретраится.
	ErrIllegalTransition = errors.New("illegal status transition")
	// Попытка финализировать pass при незакрытом чек-листе. Не ретраится.
	ErrIncomplete = errors.New("checklist is not complete")
	// Запись принята хранилищем, но read-back не совпал. Ретраится.
	ErrVerificationFailed = errors.New("write verification failed")
	// Все попытки записи исчерпаны.
	ErrExhaustedRetries = errors.New("retries exhausted")
)

// Ошибки валидации запроса на резервирование.
var (
	ErrInactiveType      = errors.New("inspection type is not active")
	ErrOutsideWindow     = errors.New("start time outside operating window")
	ErrUnalignedStart    = errors.New("start time is not slot-aligned")
	ErrInvalidResource   = errors.New("resource index out of range")
	ErrSlotDuration      = errors.New("slot duration must be positive")
	ErrBookingNotOngoing = errors.New("booking is not ongoing")
)
