package model

import "time"

// Event represents an event row. AttendeeCount mirrors the number of
// attendee rows and is only changed together with them.
type Event struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	DateTime      time.Time `json:"date_time"`
	AttendeeCount int       `json:"attendee_count"`
}

// Attendee links a user to an event they joined.
type Attendee struct {
	EventID int64
	UserID  int64
}

// CreateEventRequest represents an event creation request. Date is either
// YYYY-MM-DD or RFC 3339.
type CreateEventRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	Location    string `json:"location" validate:"max=255"`
	Date        string `json:"date" validate:"required"`
}

// UpdateEventRequest replaces every mutable field of an event.
type UpdateEventRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	Location    string `json:"location" validate:"max=255"`
	DateTime    string `json:"date_time" validate:"required"`
}

// EventResponse wraps a single event.
type EventResponse struct {
	Success bool  `json:"success"`
	Data    Event `json:"data"`
}

// StatusResponse is the body of mutations that return no data.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
