package service

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// BookingService owns booking lifecycle rules: creation preconditions, the
// owner-only decision gate and the temporal listing dispatch.
type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// CreateBooking persists a WAITING booking after the precondition chain:
// valid interval, existing booker, existing and available item. The item
// checks run inside the insert transaction.
func (s *BookingService) CreateBooking(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error) {
	if !start.Before(end) {
		return nil, domain.ErrInvalidInterval
	}

	booker, err := s.repo.GetUser(ctx, bookerID)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ItemID:     itemID,
		BookerID:   booker.ID,
		BookerName: booker.Name,
		Start:      start,
		End:        end,
		Status:     models.StatusWaiting,
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	metrics.IncBookingCreated()
	s.publishEvent(events.EventBookingCreated, booking)

	return booking, nil
}

// UpdateStatus applies the owner's decision. Only item ownership is checked;
// a decided booking can be decided again, last writer wins.
func (s *BookingService) UpdateStatus(ctx context.Context, userID, bookingID int64, approved bool) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.ItemOwnerID != userID {
		return nil, fmt.Errorf("only the item owner may decide: %w", domain.ErrForbidden)
	}

	status := models.StatusRejected
	eventType := events.EventBookingRejected
	if approved {
		status = models.StatusApproved
		eventType = events.EventBookingApproved
	}

	if err := s.repo.UpdateBookingStatus(ctx, bookingID, status); err != nil {
		return nil, err
	}
	booking.Status = status

	metrics.IncBookingDecision(string(status))
	s.publishEvent(eventType, booking)

	return booking, nil
}

// GetBooking returns the booking to its booker or the item owner.
func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID int64) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.BookerID != userID && booking.ItemOwnerID != userID {
		return nil, fmt.Errorf("only the booker or the item owner may view the booking: %w", domain.ErrForbidden)
	}

	return booking, nil
}

// FindByBooker lists the booker's bookings filtered by state against "now".
func (s *BookingService) FindByBooker(ctx context.Context, bookerID int64, state models.BookingState) ([]models.Booking, error) {
	if err := s.requireUser(ctx, bookerID); err != nil {
		return nil, err
	}
	return s.repo.ListByBooker(ctx, bookerID, state, time.Now())
}

// FindByOwner lists bookings of the owner's items filtered by state.
func (s *BookingService) FindByOwner(ctx context.Context, ownerID int64, state models.BookingState) ([]models.Booking, error) {
	if err := s.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.repo.ListByOwner(ctx, ownerID, state, time.Now())
}

func (s *BookingService) requireUser(ctx context.Context, userID int64) error {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	return nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:  booking.ID,
		ItemID:     booking.ItemID,
		ItemName:   booking.ItemName,
		OwnerID:    booking.ItemOwnerID,
		BookerID:   booking.BookerID,
		BookerName: booking.BookerName,
		Status:     string(booking.Status),
		Start:      booking.Start,
		End:        booking.End,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
