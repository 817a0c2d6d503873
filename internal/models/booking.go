package models

import "time"

type Booking struct {
	ID         int64         `json:"id"`
	ItemID     int64         `json:"itemId"`
	ItemName   string        `json:"itemName,omitempty"`
	BookerID   int64         `json:"bookerId"`
	BookerName string        `json:"bookerName,omitempty"`
	Start      time.Time     `json:"start"`
	End        time.Time     `json:"end"`
	Status     BookingStatus `json:"status"`

	// ItemOwnerID is populated on reads for authorization checks; it is not
	// part of the wire representation.
	ItemOwnerID int64 `json:"-"`
}
