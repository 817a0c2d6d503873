package models

import "time"

type ItemRequest struct {
	ID          int64         `json:"id"`
	Description string        `json:"description"`
	RequestorID int64         `json:"-"`
	Created     time.Time     `json:"created"`
	Items       []RequestItem `json:"items,omitempty"`
}

// RequestItem is the short item view attached to an enriched request.
type RequestItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	OwnerID   int64  `json:"ownerId"`
	RequestID int64  `json:"-"`
}
