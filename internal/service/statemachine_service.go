package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/scrutineering-core/internal/model"
	"github.com/Leganyst/scrutineering-core/internal/repository"
	"github.com/Leganyst/scrutineering-core/internal/scrutineering"
)

// BookingStateMachine владеет переходами статуса бронирования и метками
// started_at/completed_at, которые переходы порождают. Каждая запись
// проверяется обратным чтением и ретраится при расхождении.
type BookingStateMachine struct {
	bookingRepo repository.BookingRepository
	eventRepo   repository.EventRepository

	retry   scrutineering.RetryPolicy
	timeout time.Duration
	log     *slog.Logger
	now     func() time.Time
}

func NewBookingStateMachine(
	bookingRepo repository.BookingRepository,
	eventRepo repository.EventRepository,
	retry scrutineering.RetryPolicy,
	timeout time.Duration,
	log *slog.Logger,
) *BookingStateMachine {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if retry.Attempts <= 0 {
		retry = scrutineering.DefaultRetryPolicy
	}
	return &BookingStateMachine{
		bookingRepo: bookingRepo,
		eventRepo:   eventRepo,
		retry:       retry,
		timeout:     timeout,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Transition переводит бронирование в newStatus.
//
// Повторный перевод в ongoing — no-op успех: триггер "открыть чек-лист"
// могут дёрнуть несколько наблюдателей одновременно. Остальные переходы
// вне таблицы — ErrIllegalTransition.
func (m *BookingStateMachine) Transition(
	ctx context.Context,
	bookingID uuid.UUID,
	newStatus model.BookingStatus,
) (*model.Booking, error) {
	id := bookingID.String()

	b, err := m.getBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}

	if b.Status == model.BookingStatusOngoing && newStatus == model.BookingStatusOngoing {
		return b, nil
	}
	if !scrutineering.CanTransition(b.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", scrutineering.ErrIllegalTransition, b.Status, newStatus)
	}

	now := m.now()
	var startedAt, completedAt *time.Time
	switch newStatus {
	case model.BookingStatusOngoing:
		startedAt = &now
	case model.BookingStatusCompleted:
		completedAt = &now
	}

	err = m.retry.Run(ctx, func() error {
		cctx, cancel := context.WithTimeout(ctx, m.timeout)
		defer cancel()

		if err := m.bookingRepo.UpdateStatus(cctx, id, newStatus, startedAt, completedAt); err != nil {
			return err
		}
		stored, err := m.bookingRepo.GetByID(cctx, id)
		if err != nil {
			return err
		}
		if stored.Status != newStatus {
			return fmt.Errorf("%w: stored %s, want %s", scrutineering.ErrVerificationFailed, stored.Status, newStatus)
		}
		b = stored
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordEvent(ctx, m.eventRepo, m.log, model.EventTypeStatusChanged, uuid.Nil, bookingID,
		fmt.Sprintf("-> %s", newStatus))

	return b, nil
}

func (m *BookingStateMachine) getBooking(ctx context.Context, id string) (*model.Booking, error) {
	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.bookingRepo.GetByID(cctx, id)
}
