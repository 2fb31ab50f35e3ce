package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/scrutineering-core/internal/model"
	"github.com/Leganyst/scrutineering-core/internal/repository"
	"github.com/Leganyst/scrutineering-core/internal/scrutineering"
)

// ItemView — шаблонный пункт вместе с записью прогресса, если она есть.
type ItemView struct {
	Item  model.ChecklistTemplateItem
	Entry *model.ChecklistProgressEntry
}

// SectionView — пункты одной секции в шаблонном порядке.
type SectionView struct {
	Section string
	Items   []ItemView
}

// ItemState — локальное (оптимистичное) состояние пункта.
type ItemState struct {
	Status    model.ItemStatus
	Comment   string
	UserID    uuid.UUID
	CheckedAt *time.Time
}

type pendingKey struct {
	bookingID uuid.UUID
	itemID    uuid.UUID
}

// pendingUpdate — запись, не прошедшая верификацию; фоновая развёртка
// будет пытаться дописать её, пока не получится или пока её не вытеснит
// более новая запись того же пункта.
type pendingUpdate struct {
	entry model.ChecklistProgressEntry
	gen   uint64
}

// ChecklistProgressTracker ведёт прогресс чек-листа бронирования:
// оптимистичное локальное состояние, верифицируемый upsert с ограниченными
// повторами и откатом, фоновая допись отказавших записей.
//
// Корректность между процессами обеспечивает хранилище (upsert по ключу и
// read-back); мьютекс здесь охраняет только локальный кэш этого процесса.
type ChecklistProgressTracker struct {
	bookingRepo   repository.BookingRepository
	checklistRepo repository.ChecklistRepository
	eventRepo     repository.EventRepository

	retry         scrutineering.RetryPolicy
	timeout       time.Duration
	sweepInterval time.Duration
	log           *slog.Logger
	now           func() time.Time

	mu      sync.Mutex
	cache   map[uuid.UUID]map[uuid.UUID]ItemState
	pending map[pendingKey]pendingUpdate
	// Поколение последней записи пункта: более новый SetItem вытесняет
	// отложенные повторы устаревшего значения.
	gen map[pendingKey]uint64
}

func NewChecklistProgressTracker(
	bookingRepo repository.BookingRepository,
	checklistRepo repository.ChecklistRepository,
	eventRepo repository.EventRepository,
	retry scrutineering.RetryPolicy,
	timeout, sweepInterval time.Duration,
	log *slog.Logger,
) *ChecklistProgressTracker {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if sweepInterval <= 0 {
		sweepInterval = 30 * time.Second
	}
	if retry.Attempts <= 0 {
		retry = scrutineering.DefaultRetryPolicy
	}
	return &ChecklistProgressTracker{
		bookingRepo:   bookingRepo,
		checklistRepo: checklistRepo,
		eventRepo:     eventRepo,
		retry:         retry,
		timeout:       timeout,
		sweepInterval: sweepInterval,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
		cache:         make(map[uuid.UUID]map[uuid.UUID]ItemState),
		pending:       make(map[pendingKey]pendingUpdate),
		gen:           make(map[pendingKey]uint64),
	}
}

// Load возвращает пункты чек-листа бронирования, сгруппированные по секциям
// в шаблонном порядке, и заполняет локальный кэш состоянием хранилища.
func (t *ChecklistProgressTracker) Load(ctx context.Context, bookingID uuid.UUID) ([]SectionView, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	b, err := t.bookingRepo.GetByID(ctx, bookingID.String())
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}

	items, err := t.checklistRepo.ListTemplateItems(ctx, b.InspectionTypeID.String())
	if err != nil {
		return nil, fmt.Errorf("load template items: %w", err)
	}
	entries, err := t.checklistRepo.ListEntries(ctx, bookingID.String())
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	byItem := make(map[uuid.UUID]model.ChecklistProgressEntry, len(entries))
	local := make(map[uuid.UUID]ItemState, len(entries))
	for _, e := range entries {
		byItem[e.ItemID] = e
		local[e.ItemID] = ItemState{
			Status:    e.Status,
			Comment:   e.Comment,
			UserID:    e.UserID,
			CheckedAt: e.CheckedAt,
		}
	}

	t.mu.Lock()
	t.cache[bookingID] = local
	t.mu.Unlock()

	var sections []SectionView
	for _, item := range items {
		var view ItemView
		view.Item = item
		if e, ok := byItem[item.ID]; ok {
			entry := e
			view.Entry = &entry
		}
		if n := len(sections); n == 0 || sections[n-1].Section != item.Section {
			sections = append(sections, SectionView{Section: item.Section})
		}
		last := &sections[len(sections)-1]
		last.Items = append(last.Items, view)
	}
	return sections, nil
}

// SetItem записывает пункт чек-листа: значение сразу видно локально,
// затем upsert с read-back верификацией и ограниченными повторами.
// При исчерпании повторов локальное состояние откатывается к значению до
// вызова, попытка паркуется для фоновой развёртки, вызывающему возвращается
// ошибка — потерю данных не маскируем.
func (t *ChecklistProgressTracker) SetItem(
	ctx context.Context,
	bookingID, itemID uuid.UUID,
	status model.ItemStatus,
	comment string,
	authorID uuid.UUID,
) (bool, error) {
	switch status {
	case model.ItemStatusPass, model.ItemStatusFail, model.ItemStatusUnset:
	default:
		return false, fmt.Errorf("unknown item status %q", status)
	}

	b, err := t.getBooking(ctx, bookingID)
	if err != nil {
		return false, fmt.Errorf("load booking: %w", err)
	}
	if b.Status != model.BookingStatusOngoing {
		return false, fmt.Errorf("%w: %s", scrutineering.ErrBookingNotOngoing, b.Status)
	}

	now := t.now()
	var checkedAt *time.Time
	if status != model.ItemStatusUnset {
		checkedAt = &now
	}
	entry := model.ChecklistProgressEntry{
		BookingID: bookingID,
		ItemID:    itemID,
		Status:    status,
		Comment:   comment,
		UserID:    authorID,
		CheckedAt: checkedAt,
	}

	key := pendingKey{bookingID: bookingID, itemID: itemID}

	// Оптимистичное применение; запоминаем состояние до вызова для отката.
	t.mu.Lock()
	t.gen[key]++
	myGen := t.gen[key]
	prev, hadPrev := t.cache[bookingID][itemID]
	if t.cache[bookingID] == nil {
		t.cache[bookingID] = make(map[uuid.UUID]ItemState)
	}
	t.cache[bookingID][itemID] = ItemState{
		Status:    status,
		Comment:   comment,
		UserID:    authorID,
		CheckedAt: checkedAt,
	}
	// Более новая запись вытесняет отложенный повтор устаревшего значения.
	delete(t.pending, key)
	t.mu.Unlock()

	err = t.retry.Run(ctx, func() error {
		return t.attemptWrite(ctx, entry)
	})

	if err != nil {
		t.mu.Lock()
		if t.gen[key] == myGen {
			if hadPrev {
				t.cache[bookingID][itemID] = prev
			} else {
				delete(t.cache[bookingID], itemID)
			}
			t.pending[key] = pendingUpdate{entry: entry, gen: myGen}
		}
		t.mu.Unlock()
		return false, err
	}

	recordEvent(ctx, t.eventRepo, t.log, model.EventTypeChecklistUpdated, authorID, bookingID,
		fmt.Sprintf("item %s -> %s", itemID, statusLabel(status)))

	return true, nil
}

// CompletionStatus — сводка готовности: состояние хранилища с наложенными
// локальными оптимистичными значениями.
func (t *ChecklistProgressTracker) CompletionStatus(ctx context.Context, bookingID uuid.UUID) (scrutineering.CompletionStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	b, err := t.bookingRepo.GetByID(ctx, bookingID.String())
	if err != nil {
		return scrutineering.CompletionStatus{}, fmt.Errorf("load booking: %w", err)
	}
	items, err := t.checklistRepo.ListTemplateItems(ctx, b.InspectionTypeID.String())
	if err != nil {
		return scrutineering.CompletionStatus{}, fmt.Errorf("load template items: %w", err)
	}
	entries, err := t.checklistRepo.ListEntries(ctx, bookingID.String())
	if err != nil {
		return scrutineering.CompletionStatus{}, fmt.Errorf("load progress: %w", err)
	}

	merged := make(map[uuid.UUID]model.ChecklistProgressEntry, len(entries))
	for _, e := range entries {
		merged[e.ItemID] = e
	}

	t.mu.Lock()
	for itemID, state := range t.cache[bookingID] {
		merged[itemID] = model.ChecklistProgressEntry{
			BookingID: bookingID,
			ItemID:    itemID,
			Status:    state.Status,
			Comment:   state.Comment,
			UserID:    state.UserID,
			CheckedAt: state.CheckedAt,
		}
	}
	t.mu.Unlock()

	return scrutineering.ComputeCompletion(items, merged), nil
}

// CachedItem — локальное состояние пункта, если трекер о нём знает.
func (t *ChecklistProgressTracker) CachedItem(bookingID, itemID uuid.UUID) (ItemState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.cache[bookingID][itemID]
	return state, ok
}

// PendingCount — количество запаркованных записей (для наблюдаемости).
func (t *ChecklistProgressTracker) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// RunSweep — фоновая развёртка: с фиксированным интервалом дописывает
// запаркованные записи, пока они не пройдут верификацию или их не вытеснит
// более новая запись того же пункта. Блокирует до отмены ctx; запускать
// отдельной горутиной.
func (t *ChecklistProgressTracker) RunSweep(ctx context.Context) {
	ticker := time.NewTicker(t.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.sweepOnce(ctx)
		}
	}
}

func (t *ChecklistProgressTracker) sweepOnce(ctx context.Context) {
	t.mu.Lock()
	snapshot := make([]pendingUpdate, 0, len(t.pending))
	for _, p := range t.pending {
		snapshot = append(snapshot, p)
	}
	t.mu.Unlock()

	for _, p := range snapshot {
		key := pendingKey{bookingID: p.entry.BookingID, itemID: p.entry.ItemID}

		// Устаревшее значение не дописываем.
		t.mu.Lock()
		stale := t.gen[key] != p.gen
		t.mu.Unlock()
		if stale {
			continue
		}

		if err := t.attemptWrite(ctx, p.entry); err != nil {
			t.log.Warn("sweep re-attempt failed",
				slog.String("booking_id", p.entry.BookingID.String()),
				slog.String("item_id", p.entry.ItemID.String()),
				slog.String("error", err.Error()),
			)
			continue
		}

		t.mu.Lock()
		if t.gen[key] == p.gen {
			delete(t.pending, key)
			if t.cache[p.entry.BookingID] == nil {
				t.cache[p.entry.BookingID] = make(map[uuid.UUID]ItemState)
			}
			t.cache[p.entry.BookingID][p.entry.ItemID] = ItemState{
				Status:    p.entry.Status,
				Comment:   p.entry.Comment,
				UserID:    p.entry.UserID,
				CheckedAt: p.entry.CheckedAt,
			}
		}
		t.mu.Unlock()
	}
}

// attemptWrite — одна попытка: upsert и сравнение с тем, что хранилище
// действительно сохранило.
func (t *ChecklistProgressTracker) attemptWrite(ctx context.Context, entry model.ChecklistProgressEntry) error {
	cctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if err := t.checklistRepo.UpsertEntry(cctx, &entry); err != nil {
		return err
	}

	stored, err := t.checklistRepo.GetEntry(cctx, entry.BookingID.String(), entry.ItemID.String())
	if err != nil {
		return err
	}
	if stored.Status != entry.Status ||
		stored.UserID != entry.UserID ||
		!equalTime(stored.CheckedAt, entry.CheckedAt) {
		return fmt.Errorf("%w: stored %s by %s", scrutineering.ErrVerificationFailed, statusLabel(stored.Status), stored.UserID)
	}
	return nil
}

func (t *ChecklistProgressTracker) getBooking(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error) {
	cctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.bookingRepo.GetByID(cctx, bookingID.String())
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func statusLabel(s model.ItemStatus) string {
	if s == model.ItemStatusUnset {
		return "unset"
	}
	return string(s)
}
