package worker

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"shareit/internal/events"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRetryPolicy_NextDelay(t *testing.T) {
	policy := RetryPolicy{
		MaxRetries:    5,
		InitialDelay:  time.Second,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2,
	}

	assert.Equal(t, time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
	assert.Equal(t, 4*time.Second, policy.NextDelay(3))
	assert.Equal(t, 10*time.Second, policy.NextDelay(10), "clamped to MaxDelay")
	assert.Equal(t, time.Second, policy.NextDelay(0), "attempt floor")
}

func testPayload() events.BookingEventPayload {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return events.BookingEventPayload{
		BookingID:  5,
		ItemID:     3,
		ItemName:   "Drill",
		OwnerID:    2,
		BookerID:   7,
		BookerName: "Anna",
		Status:     "WAITING",
		Start:      start,
		End:        start.Add(time.Hour),
	}
}

func TestReportWorker_AppendRow(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "reports", "bookings.xlsx")
	w := NewReportWorker(path, RetryPolicy{}, &logger)

	task := ReportTask{Event: events.EventBookingCreated, Payload: testPayload(), CreatedAt: time.Now()}

	t.Run("fresh file gets header and first row", func(t *testing.T) {
		require.NoError(t, w.appendRow(task))

		f, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows(reportSheet)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Time", rows[0][0])
		assert.Equal(t, "Drill", rows[1][4])
		assert.Equal(t, "Anna", rows[1][7])
	})

	t.Run("subsequent rows append", func(t *testing.T) {
		require.NoError(t, w.appendRow(task))

		f, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows(reportSheet)
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})
}

func TestReportWorker_HandleEvent(t *testing.T) {
	logger := zerolog.Nop()
	w := NewReportWorker(filepath.Join(t.TempDir(), "bookings.xlsx"), RetryPolicy{}, &logger)

	raw, err := json.Marshal(testPayload())
	require.NoError(t, err)

	t.Run("enqueues decoded event", func(t *testing.T) {
		err := w.HandleEvent(&events.Event{Type: events.EventBookingCreated, Payload: raw, CreatedAt: time.Now()})
		require.NoError(t, err)

		task := <-w.queue
		assert.Equal(t, events.EventBookingCreated, task.Event)
		assert.Equal(t, int64(5), task.Payload.BookingID)
	})

	t.Run("rejects malformed payload", func(t *testing.T) {
		err := w.HandleEvent(&events.Event{Type: events.EventBookingCreated, Payload: []byte("{")})
		assert.Error(t, err)
	})

	t.Run("drops when the queue is full", func(t *testing.T) {
		for {
			if err := w.HandleEvent(&events.Event{Type: events.EventBookingCreated, Payload: raw}); err != nil {
				return // queue filled up and the event was dropped
			}
		}
	})
}
