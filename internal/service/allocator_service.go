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

// ReserveRequest — заявка команды на слот инспекции.
type ReserveRequest struct {
	InspectionTypeID uuid.UUID
	// День брони; время внутри дня игнорируется.
	Date time.Time
	// Время начала "HH:MM" на сетке слотов.
	StartTime string
	// Дорожка, с 1 по slot_count вида инспекции.
	ResourceIndex int
	TeamID        uuid.UUID
	RequestedBy   uuid.UUID

	Notes          string
	IsReinspection bool
	Priority       int
}

// FreeSlot — состояние одного времени начала в сетке дня.
type FreeSlot struct {
	StartTime string
	FreeLanes []int
}

// SlotAllocator выдаёт слоты инспекции, не допуская двойного бронирования.
type SlotAllocator struct {
	bookingRepo repository.BookingRepository
	typeRepo    repository.InspectionTypeRepository
	eventRepo   repository.EventRepository

	window  scrutineering.OperatingWindow
	timeout time.Duration
	log     *slog.Logger
}

func NewSlotAllocator(
	bookingRepo repository.BookingRepository,
	typeRepo repository.InspectionTypeRepository,
	eventRepo repository.EventRepository,
	window scrutineering.OperatingWindow,
	timeout time.Duration,
	log *slog.Logger,
) *SlotAllocator {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SlotAllocator{
		bookingRepo: bookingRepo,
		typeRepo:    typeRepo,
		eventRepo:   eventRepo,
		window:      window,
		timeout:     timeout,
		log:         log,
	}
}

// Reserve атомарно резервирует слот или возвращает ErrConflict.
// Повторный вызов с теми же параметрами — тоже ErrConflict, молчаливого
// успеха нет: дедупликация на вызывающем.
func (s *SlotAllocator) Reserve(ctx context.Context, req ReserveRequest) (*model.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	t, err := s.typeRepo.GetByID(ctx, req.InspectionTypeID.String())
	if err != nil {
		return nil, fmt.Errorf("load inspection type: %w", err)
	}
	if !t.Active {
		return nil, scrutineering.ErrInactiveType
	}
	if err := s.window.ValidateStart(req.StartTime, t.DurationMin); err != nil {
		return nil, err
	}
	if req.ResourceIndex < 1 || req.ResourceIndex > t.SlotCount {
		return nil, fmt.Errorf("%w: %d of %d", scrutineering.ErrInvalidResource, req.ResourceIndex, t.SlotCount)
	}

	booking := &model.Booking{
		ID:               uuid.New(),
		TeamID:           req.TeamID,
		InspectionTypeID: req.InspectionTypeID,
		Date:             model.DateOf(req.Date),
		StartTime:        req.StartTime,
		ResourceIndex:    req.ResourceIndex,
		Status:           model.BookingStatusUpcoming,
		Notes:            req.Notes,
		IsReinspection:   req.IsReinspection,
		Priority:         req.Priority,
		CreatedBy:        req.RequestedBy,
	}

	if err := s.bookingRepo.CreateIfSlotFree(ctx, booking); err != nil {
		return nil, err
	}

	recordEvent(ctx, s.eventRepo, s.log, model.EventTypeBookingReserved, req.RequestedBy, booking.ID,
		fmt.Sprintf("%s %s lane %d", t.Name, req.StartTime, req.ResourceIndex))

	return booking, nil
}

// FreeSlots возвращает сетку времён начала на день с незанятыми дорожками.
// Источник для формы записи: занятые комбинации накладываются на сетку.
func (s *SlotAllocator) FreeSlots(ctx context.Context, inspectionTypeID uuid.UUID, date time.Time) ([]FreeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	t, err := s.typeRepo.GetByID(ctx, inspectionTypeID.String())
	if err != nil {
		return nil, fmt.Errorf("load inspection type: %w", err)
	}

	grid, err := s.window.SlotGrid(t.DurationMin)
	if err != nil {
		return nil, err
	}

	bookings, _, err := s.bookingRepo.ListByTypeAndDate(ctx, inspectionTypeID.String(), model.DateOf(date), 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	taken := make(map[string]map[int]bool)
	for _, b := range bookings {
		if b.Status == model.BookingStatusCancelled {
			continue
		}
		if taken[b.StartTime] == nil {
			taken[b.StartTime] = make(map[int]bool)
		}
		taken[b.StartTime][b.ResourceIndex] = true
	}

	slots := make([]FreeSlot, 0, len(grid))
	for _, start := range grid {
		slot := FreeSlot{StartTime: start}
		for lane := 1; lane <= t.SlotCount; lane++ {
			if !taken[start][lane] {
				slot.FreeLanes = append(slot.FreeLanes, lane)
			}
		}
		slots = append(slots, slot)
	}
	return slots, nil
}
