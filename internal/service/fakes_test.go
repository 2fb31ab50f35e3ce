package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/scrutineering-core/internal/model"
	"github.com/Leganyst/scrutineering-core/internal/scrutineering"
)

// Scriptable in-memory fakes. Failure behaviour is controlled per test:
// counters burn down with each call, so "fail twice then succeed" is just
// failUpserts = 2.

type slotKey struct {
	typeID uuid.UUID
	date   string
	start  string
	lane   int
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*model.Booking

	failUpdates   int
	updateCalls   int
	createCalls   int
	tamperUpdates int // report success without applying the write
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*model.Booking)}
}

func (f *fakeBookingRepo) put(b *model.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.bookings[b.ID] = &cp
}

func (f *fakeBookingRepo) key(b *model.Booking) slotKey {
	return slotKey{
		typeID: b.InspectionTypeID,
		date:   time.Time(b.Date).Format("2006-01-02"),
		start:  b.StartTime,
		lane:   b.ResourceIndex,
	}
}

func (f *fakeBookingRepo) CreateIfSlotFree(ctx context.Context, booking *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++

	want := f.key(booking)
	for _, b := range f.bookings {
		if b.Status != model.BookingStatusCancelled && f.key(b) == want {
			return scrutineering.ErrConflict
		}
	}
	cp := *booking
	f.bookings[booking.ID] = &cp
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	b, ok := f.bookings[bid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) UpdateStatus(
	ctx context.Context,
	id string,
	status model.BookingStatus,
	startedAt, completedAt *time.Time,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++

	if f.failUpdates > 0 {
		f.failUpdates--
		return fmt.Errorf("store unavailable")
	}

	bid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	b, ok := f.bookings[bid]
	if !ok {
		return gorm.ErrRecordNotFound
	}

	if f.tamperUpdates > 0 {
		f.tamperUpdates--
		// The write "succeeds" but the stored row keeps the old status,
		// so the read-back verification must catch it.
		return nil
	}

	b.Status = status
	if startedAt != nil && b.StartedAt == nil {
		t := *startedAt
		b.StartedAt = &t
	}
	if completedAt != nil {
		t := *completedAt
		b.CompletedAt = &t
	}
	return nil
}

func (f *fakeBookingRepo) ListByTypeAndDate(
	ctx context.Context,
	inspectionTypeID string,
	date datatypes.Date,
	limit, offset int,
) ([]model.Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Booking
	day := time.Time(date).Format("2006-01-02")
	for _, b := range f.bookings {
		if b.InspectionTypeID.String() == inspectionTypeID &&
			time.Time(b.Date).Format("2006-01-02") == day {
			out = append(out, *b)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeBookingRepo) ListByTeam(
	ctx context.Context,
	teamID string,
	limit, offset int,
) ([]model.Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Booking
	for _, b := range f.bookings {
		if b.TeamID.String() == teamID {
			out = append(out, *b)
		}
	}
	return out, int64(len(out)), nil
}

type entryKey struct {
	bookingID uuid.UUID
	itemID    uuid.UUID
}

type fakeChecklistRepo struct {
	mu      sync.Mutex
	items   []model.ChecklistTemplateItem
	entries map[entryKey]model.ChecklistProgressEntry

	failUpserts   int // upsert returns an error
	tamperUpserts int // upsert stores a mangled status, read-back sees it
	upsertCalls   int
}

func newFakeChecklistRepo() *fakeChecklistRepo {
	return &fakeChecklistRepo{entries: make(map[entryKey]model.ChecklistProgressEntry)}
}

func (f *fakeChecklistRepo) ListTemplateItems(ctx context.Context, inspectionTypeID string) ([]model.ChecklistTemplateItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ChecklistTemplateItem
	for _, it := range f.items {
		if it.InspectionTypeID.String() == inspectionTypeID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeChecklistRepo) ListEntries(ctx context.Context, bookingID string) ([]model.ChecklistProgressEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ChecklistProgressEntry
	for k, e := range f.entries {
		if k.bookingID.String() == bookingID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeChecklistRepo) GetEntry(ctx context.Context, bookingID, itemID string) (*model.ChecklistProgressEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bid, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, err
	}
	iid, err := uuid.Parse(itemID)
	if err != nil {
		return nil, err
	}
	e, ok := f.entries[entryKey{bookingID: bid, itemID: iid}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := e
	return &cp, nil
}

func (f *fakeChecklistRepo) UpsertEntry(ctx context.Context, e *model.ChecklistProgressEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertCalls++

	if f.failUpserts > 0 {
		f.failUpserts--
		return fmt.Errorf("store unavailable")
	}

	cp := *e
	if f.tamperUpserts > 0 {
		f.tamperUpserts--
		// A concurrent writer wins the race: the stored row carries a
		// different author.
		cp.UserID = uuid.New()
	}
	f.entries[entryKey{bookingID: e.BookingID, itemID: e.ItemID}] = cp
	return nil
}

func (f *fakeChecklistRepo) CreateTemplateItem(ctx context.Context, item *model.ChecklistTemplateItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeChecklistRepo) storedEntry(bookingID, itemID uuid.UUID) (model.ChecklistProgressEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[entryKey{bookingID: bookingID, itemID: itemID}]
	return e, ok
}

type fakeResultRepo struct {
	mu      sync.Mutex
	results map[uuid.UUID]model.InspectionResult
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{results: make(map[uuid.UUID]model.InspectionResult)}
}

func (f *fakeResultRepo) Upsert(ctx context.Context, res *model.InspectionResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[res.BookingID] = *res
	return nil
}

func (f *fakeResultRepo) GetByBookingID(ctx context.Context, bookingID string) (*model.InspectionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bid, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, err
	}
	res, ok := f.results[bid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := res
	return &cp, nil
}

func (f *fakeResultRepo) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.results)), nil
}

type fakeTypeRepo struct {
	mu    sync.Mutex
	types map[uuid.UUID]model.InspectionType
}

func newFakeTypeRepo() *fakeTypeRepo {
	return &fakeTypeRepo{types: make(map[uuid.UUID]model.InspectionType)}
}

func (f *fakeTypeRepo) put(t model.InspectionType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.types[t.ID] = t
}

func (f *fakeTypeRepo) GetByID(ctx context.Context, id string) (*model.InspectionType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	t, ok := f.types[tid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := t
	return &cp, nil
}

func (f *fakeTypeRepo) ListActive(ctx context.Context) ([]model.InspectionType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.InspectionType
	for _, t := range f.types {
		if t.Active {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTypeRepo) Create(ctx context.Context, t *model.InspectionType) error {
	f.put(*t)
	return nil
}

func (f *fakeTypeRepo) Update(ctx context.Context, t *model.InspectionType) error {
	f.put(*t)
	return nil
}

func (f *fakeTypeRepo) SetActive(ctx context.Context, id string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	t, ok := f.types[tid]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Active = active
	f.types[tid] = t
	return nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []model.Event
}

func (f *fakeEventRepo) Create(ctx context.Context, event *model.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeEventRepo) ListRecent(ctx context.Context, limit int) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Event, len(f.events))
	copy(out, f.events)
	return out, nil
}

func (f *fakeEventRepo) types() []model.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.EventType
	for _, e := range f.events {
		out = append(out, e.EventType)
	}
	return out
}
