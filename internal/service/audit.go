package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Leganyst/scrutineering-core/internal/model"
	"github.com/Leganyst/scrutineering-core/internal/repository"
)

// recordEvent пишет событие аудита best-effort: отказ журнала не должен
// ронять основную операцию.
func recordEvent(
	ctx context.Context,
	repo repository.EventRepository,
	log *slog.Logger,
	eventType model.EventType,
	userID, bookingID uuid.UUID,
	details string,
) {
	if repo == nil {
		return
	}
	ev := &model.Event{
		ID:        uuid.New(),
		EventType: eventType,
		Details:   details,
	}
	if userID != uuid.Nil {
		ev.UserID = &userID
	}
	if bookingID != uuid.Nil {
		ev.BookingID = &bookingID
	}
	if err := repo.Create(ctx, ev); err != nil {
		log.Warn("audit event not recorded",
			slog.String("event_type", string(eventType)),
			slog.String("error", err.Error()),
		)
	}
}
