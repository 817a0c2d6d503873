package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"shareit/internal/events"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const reportSheet = "Bookings"

var reportHeader = []any{
	"Time", "Event", "Booking ID", "Item ID", "Item", "Owner ID", "Booker ID", "Booker", "Status", "Start", "End",
}

// ReportTask is one row of the booking activity ledger.
type ReportTask struct {
	Event     string
	Payload   events.BookingEventPayload
	CreatedAt time.Time
}

// ReportWorker consumes booking events and appends them to an xlsx ledger.
// Writes happen on a single goroutine; producers only touch the queue.
type ReportWorker struct {
	path        string
	queue       chan ReportTask
	retryPolicy RetryPolicy
	logger      *zerolog.Logger
}

// NewReportWorker builds a worker with sane defaults.
func NewReportWorker(path string, retry RetryPolicy, logger *zerolog.Logger) *ReportWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &ReportWorker{
		path:        path,
		queue:       make(chan ReportTask, 128),
		retryPolicy: retry,
		logger:      logger,
	}
}

// HandleEvent adapts the worker to the event bus. A full queue drops the
// event rather than blocking the request path.
func (w *ReportWorker) HandleEvent(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("decode booking event: %w", err)
	}

	task := ReportTask{Event: event.Type, Payload: payload, CreatedAt: event.CreatedAt}
	select {
	case w.queue <- task:
		return nil
	default:
		w.logger.Warn().Str("event_type", event.Type).Int64("booking_id", payload.BookingID).Msg("report queue full, dropping event")
		return errors.New("report queue is full")
	}
}

// Start runs the consume loop until the context is canceled.
func (w *ReportWorker) Start(ctx context.Context) {
	w.logger.Info().Str("path", w.path).Msg("report worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("report worker stopped")
			return
		case task := <-w.queue:
			w.process(ctx, task)
		}
	}
}

func (w *ReportWorker) process(ctx context.Context, task ReportTask) {
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		err := w.appendRow(task)
		if err == nil {
			return
		}

		w.logger.Error().Err(err).Int("attempt", attempt).Int64("booking_id", task.Payload.BookingID).Msg("report write failed")

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.retryPolicy.NextDelay(attempt)):
		}
	}

	w.logger.Error().Int64("booking_id", task.Payload.BookingID).Str("event_type", task.Event).Msg("report task dropped after retries")
}

func (w *ReportWorker) appendRow(task ReportTask) error {
	f, fresh, err := w.openLedger()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(reportSheet)
	if err != nil {
		return fmt.Errorf("read report sheet: %w", err)
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return fmt.Errorf("compute report cell: %w", err)
	}

	p := task.Payload
	row := []any{
		task.CreatedAt.Format(time.RFC3339),
		task.Event,
		p.BookingID,
		p.ItemID,
		p.ItemName,
		p.OwnerID,
		p.BookerID,
		p.BookerName,
		p.Status,
		p.Start.Format(time.RFC3339),
		p.End.Format(time.RFC3339),
	}
	if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
		return fmt.Errorf("write report row: %w", err)
	}

	if fresh {
		return f.SaveAs(w.path)
	}
	return f.Save()
}

// openLedger opens the existing ledger or prepares a new one with a header
// row. The second result reports whether the file is new.
func (w *ReportWorker) openLedger() (*excelize.File, bool, error) {
	if _, err := os.Stat(w.path); err == nil {
		f, err := excelize.OpenFile(w.path)
		if err != nil {
			return nil, false, fmt.Errorf("open report file: %w", err)
		}
		return f, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return nil, false, fmt.Errorf("create report directory: %w", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		_ = f.Close()
		return nil, false, fmt.Errorf("rename report sheet: %w", err)
	}
	if err := f.SetSheetRow(reportSheet, "A1", &reportHeader); err != nil {
		_ = f.Close()
		return nil, false, fmt.Errorf("write report header: %w", err)
	}

	return f, true, nil
}
