package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

// Repository is the persistence surface consumed by the services. The sqlite
// implementation lives in internal/database.
type Repository interface {
	// users
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	UserExists(ctx context.Context, id int64) (bool, error)
	EmailTaken(ctx context.Context, email string, excludeUserID int64) (bool, error)

	// items
	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	GetItemsByOwner(ctx context.Context, ownerID int64) ([]models.Item, error)
	SearchItems(ctx context.Context, text string) ([]models.Item, error)
	GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]models.RequestItem, error)

	// bookings
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error
	ListByBooker(ctx context.Context, bookerID int64, state models.BookingState, now time.Time) ([]models.Booking, error)
	ListByOwner(ctx context.Context, ownerID int64, state models.BookingState, now time.Time) ([]models.Booking, error)
	GetBookingDates(ctx context.Context, ownerID int64, now time.Time) (map[int64]models.BookingDates, error)
	HasFinishedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error)

	// comments
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error)
	GetCommentsByItems(ctx context.Context, itemIDs []int64) (map[int64][]models.Comment, error)

	// requests
	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]models.ItemRequest, error)
	GetAllRequests(ctx context.Context) ([]models.ItemRequest, error)
}

// EventPublisher pushes domain events to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// RateLimitStore tracks per-key request budgets for the gateway.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
