package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/scrutineering-core/internal/model"
	"github.com/Leganyst/scrutineering-core/internal/scrutineering"
)

func seedUpcoming(repo *fakeBookingRepo) uuid.UUID {
	id := uuid.New()
	repo.put(&model.Booking{
		ID:               id,
		TeamID:           uuid.New(),
		InspectionTypeID: uuid.New(),
		Date:             model.DateOf(time.Now()),
		StartTime:        "10:00",
		ResourceIndex:    1,
		Status:           model.BookingStatusUpcoming,
	})
	return id
}

func TestTransition_UpcomingToOngoingStampsStartedAt(t *testing.T) {
	repo := newFakeBookingRepo()
	id := seedUpcoming(repo)

	machine := NewBookingStateMachine(repo, nil, fastRetry, time.Second, nil)
	fixed := time.Date(2026, 5, 14, 9, 3, 0, 0, time.UTC)
	machine.now = func() time.Time { return fixed }

	b, err := machine.Transition(context.Background(), id, model.BookingStatusOngoing)
	require.NoError(t, err)
	require.Equal(t, model.BookingStatusOngoing, b.Status)
	require.NotNil(t, b.StartedAt)
	require.True(t, b.StartedAt.Equal(fixed))
	require.Nil(t, b.CompletedAt)
}

func TestTransition_RepeatedOngoingIsNoOp(t *testing.T) {
	repo := newFakeBookingRepo()
	id := seedUpcoming(repo)

	machine := NewBookingStateMachine(repo, nil, fastRetry, time.Second, nil)
	first := time.Date(2026, 5, 14, 9, 0, 0, 0, time.UTC)
	machine.now = func() time.Time { return first }

	_, err := machine.Transition(context.Background(), id, model.BookingStatusOngoing)
	require.NoError(t, err)
	writesAfterFirst := repo.updateCalls

	// A second observer re-triggers the transition later; it must
	// succeed without touching the store or the original stamp.
	machine.now = func() time.Time { return first.Add(20 * time.Minute) }
	b, err := machine.Transition(context.Background(), id, model.BookingStatusOngoing)
	require.NoError(t, err)
	require.Equal(t, writesAfterFirst, repo.updateCalls)
	require.NotNil(t, b.StartedAt)
	require.True(t, b.StartedAt.Equal(first))
}

func TestTransition_OngoingToCompletedStampsCompletedAt(t *testing.T) {
	repo := newFakeBookingRepo()
	id := seedUpcoming(repo)

	machine := NewBookingStateMachine(repo, nil, fastRetry, time.Second, nil)

	_, err := machine.Transition(context.Background(), id, model.BookingStatusOngoing)
	require.NoError(t, err)

	done := time.Date(2026, 5, 14, 11, 30, 0, 0, time.UTC)
	machine.now = func() time.Time { return done }
	b, err := machine.Transition(context.Background(), id, model.BookingStatusCompleted)
	require.NoError(t, err)
	require.Equal(t, model.BookingStatusCompleted, b.Status)
	require.NotNil(t, b.CompletedAt)
	require.True(t, b.CompletedAt.Equal(done))
	require.NotNil(t, b.StartedAt, "started_at survives completion")
}

func TestTransition_IllegalPathsRejected(t *testing.T) {
	cases := []struct {
		from model.BookingStatus
		to   model.BookingStatus
	}{
		{model.BookingStatusUpcoming, model.BookingStatusCompleted},
		{model.BookingStatusCompleted, model.BookingStatusOngoing},
		{model.BookingStatusCancelled, model.BookingStatusOngoing},
		{model.BookingStatusNoShow, model.BookingStatusUpcoming},
		{model.BookingStatusOngoing, model.BookingStatusNoShow},
	}
	for _, c := range cases {
		repo := newFakeBookingRepo()
		id := seedUpcoming(repo)
		b, err := repo.GetByID(context.Background(), id.String())
		require.NoError(t, err)
		b.Status = c.from
		repo.put(b)

		machine := NewBookingStateMachine(repo, nil, fastRetry, time.Second, nil)
		_, err = machine.Transition(context.Background(), id, c.to)
		require.ErrorIs(t, err, scrutineering.ErrIllegalTransition, "%s -> %s", c.from, c.to)
	}
}

func TestTransition_RetriesWriteUntilVerified(t *testing.T) {
	repo := newFakeBookingRepo()
	id := seedUpcoming(repo)

	// Two writes are silently lost; the read-back notices and retries.
	repo.tamperUpdates = 2

	machine := NewBookingStateMachine(repo, nil, fastRetry, time.Second, nil)
	b, err := machine.Transition(context.Background(), id, model.BookingStatusOngoing)
	require.NoError(t, err)
	require.Equal(t, model.BookingStatusOngoing, b.Status)
	require.Equal(t, 3, repo.updateCalls)
}

func TestTransition_ExhaustedRetriesSurface(t *testing.T) {
	repo := newFakeBookingRepo()
	id := seedUpcoming(repo)

	repo.failUpdates = 3

	machine := NewBookingStateMachine(repo, nil, fastRetry, time.Second, nil)
	_, err := machine.Transition(context.Background(), id, model.BookingStatusOngoing)
	require.ErrorIs(t, err, scrutineering.ErrExhaustedRetries)

	// The booking is untouched.
	b, getErr := repo.GetByID(context.Background(), id.String())
	require.NoError(t, getErr)
	require.Equal(t, model.BookingStatusUpcoming, b.Status)
	require.Nil(t, b.StartedAt)
}

func TestTransition_RecordsAuditEvent(t *testing.T) {
	repo := newFakeBookingRepo()
	id := seedUpcoming(repo)
	events := &fakeEventRepo{}

	machine := NewBookingStateMachine(repo, events, fastRetry, time.Second, nil)
	_, err := machine.Transition(context.Background(), id, model.BookingStatusCancelled)
	require.NoError(t, err)
	require.Equal(t, []model.EventType{model.EventTypeStatusChanged}, events.types())
}
