package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Leganyst/scrutineering-core/internal/model"
	"github.com/Leganyst/scrutineering-core/internal/repository"
	"github.com/Leganyst/scrutineering-core/internal/scrutineering"
)

// Verdict — итог инспекции, который выставляет инспектор.
type Verdict string

const (
	VerdictPassed Verdict = "passed"
	VerdictFailed Verdict = "failed"
)

// InspectionResultRecorder финализирует бронирование: пишет авторитетный
// вердикт и переводит бронирование в completed.
type InspectionResultRecorder struct {
	resultRepo repository.ResultRepository
	eventRepo  repository.EventRepository

	tracker *ChecklistProgressTracker
	machine *BookingStateMachine

	timeout time.Duration
	log     *slog.Logger
	now     func() time.Time
}

func NewInspectionResultRecorder(
	resultRepo repository.ResultRepository,
	eventRepo repository.EventRepository,
	tracker *ChecklistProgressTracker,
	machine *BookingStateMachine,
	timeout time.Duration,
	log *slog.Logger,
) *InspectionResultRecorder {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &InspectionResultRecorder{
		resultRepo: resultRepo,
		eventRepo:  eventRepo,
		tracker:    tracker,
		machine:    machine,
		timeout:    timeout,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Finalize записывает вердикт бронирования.
//
// passed требует полностью закрытого чек-листа на момент вызова, иначе
// ErrIncomplete без единой записи в хранилище. failed предусловий не имеет:
// инспектор может завалить бронирование в любой момент.
//
// Если после записи итога переход в completed не удался, итог остаётся:
// расхождение закрывает внешняя сверка, откатывать вердикт нельзя.
func (r *InspectionResultRecorder) Finalize(
	ctx context.Context,
	bookingID uuid.UUID,
	verdict Verdict,
	inspectorIDs []uuid.UUID,
	notes string,
) error {
	var status model.ResultStatus
	switch verdict {
	case VerdictPassed:
		status = model.ResultStatusPassed
	case VerdictFailed:
		status = model.ResultStatusFailed
	default:
		return fmt.Errorf("unknown verdict %q", verdict)
	}

	if verdict == VerdictPassed {
		cs, err := r.tracker.CompletionStatus(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("completion status: %w", err)
		}
		if !cs.CanFinalizeAsPassed {
			return fmt.Errorf("%w: %d of %d items completed", scrutineering.ErrIncomplete, cs.Completed, cs.Total)
		}
	}

	now := r.now()
	ids, err := json.Marshal(inspectorIDs)
	if err != nil {
		return fmt.Errorf("marshal inspector ids: %w", err)
	}

	res := &model.InspectionResult{
		ID:           uuid.New(),
		BookingID:    bookingID,
		Status:       status,
		CompletedAt:  &now,
		InspectorIDs: datatypes.JSON(ids),
		Notes:        notes,
	}

	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	err = r.resultRepo.Upsert(cctx, res)
	cancel()
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}

	if _, err := r.machine.Transition(ctx, bookingID, model.BookingStatusCompleted); err != nil {
		r.log.Warn("booking left open after result was recorded",
			slog.String("booking_id", bookingID.String()),
			slog.String("verdict", string(verdict)),
			slog.String("error", err.Error()),
		)
	}

	var recordedBy uuid.UUID
	if len(inspectorIDs) > 0 {
		recordedBy = inspectorIDs[0]
	}
	recordEvent(ctx, r.eventRepo, r.log, model.EventTypeResultRecorded, recordedBy, bookingID, string(verdict))

	return nil
}
