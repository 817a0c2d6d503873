package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

const bookingColumns = `b.id, b.item_id, i.name, i.owner_id, b.booker_id, u.name, b.start_date, b.end_date, b.status`

const bookingFrom = `FROM bookings b
              JOIN items i ON i.id = b.item_id
              JOIN users u ON u.id = b.booker_id`

// CreateBooking re-checks the item inside the transaction so the availability
// precondition and the insert commit together.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var (
		itemName  string
		available bool
		ownerID   int64
	)
	err = tx.QueryRowContext(ctx, `SELECT name, available, owner_id FROM items WHERE id = ?`, booking.ItemID).
		Scan(&itemName, &available, &ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("item %d: %w", booking.ItemID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check item in tx: %w", err)
	}
	if !available {
		return domain.ErrNotAvailable
	}

	query := `INSERT INTO bookings (item_id, booker_id, start_date, end_date, status, created_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, query,
		booking.ItemID,
		booking.BookerID,
		fmtTime(booking.Start),
		fmtTime(booking.End),
		booking.Status,
		fmtTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}

	booking.ID = id
	booking.ItemName = itemName
	booking.ItemOwnerID = ownerID

	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` ` + bookingFrom + ` WHERE b.id = ?`

	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	result, err := db.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("booking %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByBooker returns the booker's bookings filtered by state, most recently
// ending first.
func (db *DB) ListByBooker(ctx context.Context, bookerID int64, state models.BookingState, now time.Time) ([]models.Booking, error) {
	condition, args := stateCondition(state, now)
	query := `SELECT ` + bookingColumns + ` ` + bookingFrom + `
              WHERE b.booker_id = ?` + condition + `
              ORDER BY b.end_date DESC`

	return db.queryBookings(ctx, query, append([]any{bookerID}, args...)...)
}

// ListByOwner returns bookings of the owner's items filtered by state, most
// recently ending first.
func (db *DB) ListByOwner(ctx context.Context, ownerID int64, state models.BookingState, now time.Time) ([]models.Booking, error) {
	condition, args := stateCondition(state, now)
	query := `SELECT ` + bookingColumns + ` ` + bookingFrom + `
              WHERE i.owner_id = ?` + condition + `
              ORDER BY b.end_date DESC`

	return db.queryBookings(ctx, query, append([]any{ownerID}, args...)...)
}

// stateCondition translates a listing state into a WHERE fragment. CURRENT
// keeps the historical start<now AND end<now condition; see the repository
// tests pinning that behavior.
func stateCondition(state models.BookingState, now time.Time) (string, []any) {
	ts := fmtTime(now)
	switch state {
	case models.StateWaiting:
		return ` AND b.status = ?`, []any{models.StatusWaiting}
	case models.StateRejected:
		return ` AND b.status = ?`, []any{models.StatusRejected}
	case models.StateCurrent:
		return ` AND b.start_date < ? AND b.end_date < ?`, []any{ts, ts}
	case models.StatePast:
		return ` AND b.end_date < ?`, []any{ts}
	case models.StateFuture:
		return ` AND b.start_date > ?`, []any{ts}
	default:
		return ``, nil
	}
}

// GetBookingDates computes, in one pass over the owner's bookings, the latest
// past start and the earliest future start per item.
func (db *DB) GetBookingDates(ctx context.Context, ownerID int64, now time.Time) (map[int64]models.BookingDates, error) {
	query := `SELECT b.item_id,
                     MAX(CASE WHEN b.start_date < ? THEN b.start_date END),
                     MIN(CASE WHEN b.start_date > ? THEN b.start_date END)
              FROM bookings b
              JOIN items i ON i.id = b.item_id
              WHERE i.owner_id = ?
              GROUP BY b.item_id`

	ts := fmtTime(now)
	rows, err := db.QueryContext(ctx, query, ts, ts, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate booking dates: %w", err)
	}
	defer rows.Close()

	dates := make(map[int64]models.BookingDates)
	for rows.Next() {
		var (
			itemID     int64
			last, next sql.NullString
		)
		if err := rows.Scan(&itemID, &last, &next); err != nil {
			return nil, fmt.Errorf("failed to scan booking dates: %w", err)
		}

		var bd models.BookingDates
		if last.Valid {
			t, err := parseTime(last.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse last booking date: %w", err)
			}
			bd.LastBooking = &t
		}
		if next.Valid {
			t, err := parseTime(next.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse next booking date: %w", err)
			}
			bd.NextBooking = &t
		}
		dates[itemID] = bd
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate booking dates: %w", err)
	}

	return dates, nil
}

// HasFinishedBooking reports whether the booker has an APPROVED booking of the
// item that already ended. Commenting requires this proof of a completed
// rental.
func (db *DB) HasFinishedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error) {
	query := `SELECT EXISTS(
                SELECT 1 FROM bookings
                WHERE item_id = ? AND booker_id = ? AND status = ? AND end_date < ?
              )`

	var finished bool
	err := db.QueryRowContext(ctx, query, itemID, bookerID, models.StatusApproved, fmtTime(now)).Scan(&finished)
	if err != nil {
		return false, fmt.Errorf("failed to check finished bookings: %w", err)
	}
	return finished, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}

	return bookings, nil
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var (
		booking    models.Booking
		start, end string
	)
	err := row.Scan(
		&booking.ID,
		&booking.ItemID,
		&booking.ItemName,
		&booking.ItemOwnerID,
		&booking.BookerID,
		&booking.BookerName,
		&start,
		&end,
		&booking.Status,
	)
	if err != nil {
		return nil, err
	}

	if booking.Start, err = parseTime(start); err != nil {
		return nil, fmt.Errorf("failed to parse start date: %w", err)
	}
	if booking.End, err = parseTime(end); err != nil {
		return nil, fmt.Errorf("failed to parse end date: %w", err)
	}

	return &booking, nil
}
