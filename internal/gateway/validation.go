package gateway

import (
	"net/mail"
	"strings"
	"time"
)

// fieldErrors maps request fields to human-readable problems. An empty map
// means the payload passed.
type fieldErrors map[string]string

type userPayload struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// validateNewUser requires both fields; validateUserPatch checks only what is
// present.
func validateNewUser(p userPayload) fieldErrors {
	errs := fieldErrors{}
	if p.Name == nil || strings.TrimSpace(*p.Name) == "" {
		errs["name"] = "must not be blank"
	}
	if p.Email == nil || strings.TrimSpace(*p.Email) == "" {
		errs["email"] = "must not be blank"
	} else if _, err := mail.ParseAddress(*p.Email); err != nil {
		errs["email"] = "must be a well-formed email address"
	}
	return errs
}

func validateUserPatch(p userPayload) fieldErrors {
	errs := fieldErrors{}
	if p.Email != nil && *p.Email != "" {
		if _, err := mail.ParseAddress(*p.Email); err != nil {
			errs["email"] = "must be a well-formed email address"
		}
	}
	return errs
}

type itemPayload struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
	RequestID   int64   `json:"requestId"`
}

func validateNewItem(p itemPayload) fieldErrors {
	errs := fieldErrors{}
	if p.Name == nil || strings.TrimSpace(*p.Name) == "" {
		errs["name"] = "must not be blank"
	}
	if p.Description == nil || strings.TrimSpace(*p.Description) == "" {
		errs["description"] = "must not be blank"
	}
	if p.Available == nil {
		errs["available"] = "must not be null"
	}
	return errs
}

type bookingPayload struct {
	ItemID int64      `json:"itemId"`
	Start  *time.Time `json:"start"`
	End    *time.Time `json:"end"`
}

func validateNewBooking(p bookingPayload) fieldErrors {
	errs := fieldErrors{}
	if p.ItemID <= 0 {
		errs["itemId"] = "must be a positive id"
	}
	if p.Start == nil {
		errs["start"] = "must not be null"
	}
	if p.End == nil {
		errs["end"] = "must not be null"
	}
	if p.Start != nil && p.End != nil && !p.Start.Before(*p.End) {
		errs["end"] = "must be after start"
	}
	return errs
}

type commentPayload struct {
	Text string `json:"text"`
}

func validateNewComment(p commentPayload) fieldErrors {
	errs := fieldErrors{}
	if strings.TrimSpace(p.Text) == "" {
		errs["text"] = "must not be blank"
	}
	return errs
}

type requestPayload struct {
	Description string `json:"description"`
}

func validateNewRequest(p requestPayload) fieldErrors {
	errs := fieldErrors{}
	if strings.TrimSpace(p.Description) == "" {
		errs["description"] = "must not be blank"
	}
	return errs
}
