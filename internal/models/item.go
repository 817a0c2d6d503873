package models

import "time"

type Item struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Available   bool       `json:"available"`
	OwnerID     int64      `json:"ownerId"`
	RequestID   int64      `json:"requestId,omitempty"`
	LastBooking *time.Time `json:"lastBooking,omitempty"`
	NextBooking *time.Time `json:"nextBooking,omitempty"`
	Comments    []Comment  `json:"comments,omitempty"`
}

// BookingDates carries the per-item aggregate used to decorate an owner's items.
type BookingDates struct {
	LastBooking *time.Time
	NextBooking *time.Time
}
