package database

import (
	"context"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestBooking(t *testing.T, db *DB, itemID, bookerID int64, start, end time.Time) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		ItemID:   itemID,
		BookerID: bookerID,
		Start:    start,
		End:      end,
		Status:   models.StatusWaiting,
	}
	require.NoError(t, db.CreateBooking(context.Background(), booking))
	return booking
}

func TestCreateBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	item := createTestItem(t, db, owner.ID, "Drill", true)

	start := time.Now().Add(time.Hour)
	end := start.Add(time.Hour)

	t.Run("populates item snapshot", func(t *testing.T) {
		booking := createTestBooking(t, db, item.ID, booker.ID, start, end)
		assert.NotZero(t, booking.ID)
		assert.Equal(t, "Drill", booking.ItemName)
		assert.Equal(t, owner.ID, booking.ItemOwnerID)
	})

	t.Run("unknown item", func(t *testing.T) {
		err := db.CreateBooking(ctx, &models.Booking{ItemID: 404, BookerID: booker.ID, Start: start, End: end})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unavailable item", func(t *testing.T) {
		parked := createTestItem(t, db, owner.ID, "Parked saw", false)
		err := db.CreateBooking(ctx, &models.Booking{ItemID: parked.ID, BookerID: booker.ID, Start: start, End: end})
		assert.ErrorIs(t, err, domain.ErrNotAvailable)
	})
}

func TestGetBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	item := createTestItem(t, db, owner.ID, "Drill", true)

	start := time.Now().Add(time.Hour).Truncate(time.Second)
	created := createTestBooking(t, db, item.ID, booker.ID, start, start.Add(time.Hour))

	got, err := db.GetBooking(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Drill", got.ItemName)
	assert.Equal(t, "Booker", got.BookerName)
	assert.Equal(t, owner.ID, got.ItemOwnerID)
	assert.Equal(t, models.StatusWaiting, got.Status)
	assert.Equal(t, start.UTC(), got.Start)

	_, err = db.GetBooking(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateBookingStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	item := createTestItem(t, db, owner.ID, "Drill", true)
	booking := createTestBooking(t, db, item.ID, booker.ID, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))

	require.NoError(t, db.UpdateBookingStatus(ctx, booking.ID, models.StatusApproved))

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)

	err = db.UpdateBookingStatus(ctx, 404, models.StatusApproved)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingListings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	other := createTestUser(t, db, "Other", "other@example.com")
	item := createTestItem(t, db, owner.ID, "Drill", true)

	past := createTestBooking(t, db, item.ID, booker.ID, now.Add(-3*time.Hour), now.Add(-2*time.Hour))
	running := createTestBooking(t, db, item.ID, booker.ID, now.Add(-time.Hour), now.Add(time.Hour))
	future := createTestBooking(t, db, item.ID, booker.ID, now.Add(2*time.Hour), now.Add(3*time.Hour))
	createTestBooking(t, db, item.ID, other.ID, now.Add(4*time.Hour), now.Add(5*time.Hour))

	require.NoError(t, db.UpdateBookingStatus(ctx, past.ID, models.StatusApproved))
	require.NoError(t, db.UpdateBookingStatus(ctx, future.ID, models.StatusRejected))

	t.Run("ALL is ordered by end descending", func(t *testing.T) {
		bookings, err := db.ListByBooker(ctx, booker.ID, models.StateAll, now)
		require.NoError(t, err)
		require.Len(t, bookings, 3)
		assert.Equal(t, future.ID, bookings[0].ID)
		assert.Equal(t, running.ID, bookings[1].ID)
		assert.Equal(t, past.ID, bookings[2].ID)
	})

	t.Run("PAST", func(t *testing.T) {
		bookings, err := db.ListByBooker(ctx, booker.ID, models.StatePast, now)
		require.NoError(t, err)
		require.Len(t, bookings, 1)
		assert.Equal(t, past.ID, bookings[0].ID)
	})

	t.Run("FUTURE", func(t *testing.T) {
		bookings, err := db.ListByBooker(ctx, booker.ID, models.StateFuture, now)
		require.NoError(t, err)
		require.Len(t, bookings, 1)
		assert.Equal(t, future.ID, bookings[0].ID)
	})

	// CURRENT matches bookings that started and already ended, so a booking
	// running right now is not in it. Kept as-is for wire compatibility.
	t.Run("CURRENT matches started-and-ended bookings", func(t *testing.T) {
		bookings, err := db.ListByBooker(ctx, booker.ID, models.StateCurrent, now)
		require.NoError(t, err)
		require.Len(t, bookings, 1)
		assert.Equal(t, past.ID, bookings[0].ID)
	})

	t.Run("WAITING", func(t *testing.T) {
		bookings, err := db.ListByBooker(ctx, booker.ID, models.StateWaiting, now)
		require.NoError(t, err)
		require.Len(t, bookings, 1)
		assert.Equal(t, running.ID, bookings[0].ID)
	})

	t.Run("REJECTED", func(t *testing.T) {
		bookings, err := db.ListByBooker(ctx, booker.ID, models.StateRejected, now)
		require.NoError(t, err)
		require.Len(t, bookings, 1)
		assert.Equal(t, future.ID, bookings[0].ID)
	})

	t.Run("owner listing covers all bookers", func(t *testing.T) {
		bookings, err := db.ListByOwner(ctx, owner.ID, models.StateAll, now)
		require.NoError(t, err)
		assert.Len(t, bookings, 4)
	})

	t.Run("stranger sees nothing", func(t *testing.T) {
		bookings, err := db.ListByOwner(ctx, other.ID, models.StateAll, now)
		require.NoError(t, err)
		assert.Empty(t, bookings)
	})
}

func TestGetBookingDates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	item := createTestItem(t, db, owner.ID, "Drill", true)
	idle := createTestItem(t, db, owner.ID, "Idle saw", true)

	createTestBooking(t, db, item.ID, booker.ID, now.Add(-5*time.Hour), now.Add(-4*time.Hour))
	recent := createTestBooking(t, db, item.ID, booker.ID, now.Add(-2*time.Hour), now.Add(-time.Hour))
	soon := createTestBooking(t, db, item.ID, booker.ID, now.Add(time.Hour), now.Add(2*time.Hour))
	createTestBooking(t, db, item.ID, booker.ID, now.Add(4*time.Hour), now.Add(5*time.Hour))

	dates, err := db.GetBookingDates(ctx, owner.ID, now)
	require.NoError(t, err)

	bd, ok := dates[item.ID]
	require.True(t, ok)
	require.NotNil(t, bd.LastBooking)
	require.NotNil(t, bd.NextBooking)
	assert.Equal(t, recent.Start.UTC().Truncate(time.Second), *bd.LastBooking)
	assert.Equal(t, soon.Start.UTC().Truncate(time.Second), *bd.NextBooking)

	_, ok = dates[idle.ID]
	assert.False(t, ok)
}

func TestHasFinishedBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	item := createTestItem(t, db, owner.ID, "Drill", true)

	finished := createTestBooking(t, db, item.ID, booker.ID, now.Add(-3*time.Hour), now.Add(-2*time.Hour))

	t.Run("waiting booking does not count", func(t *testing.T) {
		ok, err := db.HasFinishedBooking(ctx, item.ID, booker.ID, now)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("approved and ended counts", func(t *testing.T) {
		require.NoError(t, db.UpdateBookingStatus(ctx, finished.ID, models.StatusApproved))

		ok, err := db.HasFinishedBooking(ctx, item.ID, booker.ID, now)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("approved but still running does not count", func(t *testing.T) {
		active := createTestBooking(t, db, item.ID, owner.ID, now.Add(-time.Hour), now.Add(time.Hour))
		require.NoError(t, db.UpdateBookingStatus(ctx, active.ID, models.StatusApproved))

		ok, err := db.HasFinishedBooking(ctx, item.ID, owner.ID, now)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
