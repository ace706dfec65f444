package domain

import (
	"context"
	"strings"
	"time"
)

// AttendeeRole is the role a participant holds within an event.
type AttendeeRole string

const (
	RoleMember AttendeeRole = "member"
	RoleAdmin  AttendeeRole = "admin"
	RoleMuted  AttendeeRole = "muted"
)

// Attendee is a user associated with an event.
type Attendee struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Role     AttendeeRole `json:"role"`
	JoinedAt string       `json:"joined_at,omitempty"`
}

// Event is the client-side projection of a backend-owned event.
// Timestamps stay in their ISO-8601 wire encoding; the backend is the
// source of truth and the client never rewrites them.
type Event struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Type         string     `json:"type"`
	Audience     string     `json:"audience"`
	Description  string     `json:"description"`
	PlaceName    string     `json:"place_name"`
	Datetime     string     `json:"datetime"`
	Lat          float64    `json:"lat"`
	Lng          float64    `json:"lng"`
	MaxAttendees int        `json:"max_attendees,omitempty"`
	Attendees    []Attendee `json:"attendees"`
	ContactLink  string     `json:"contact_link,omitempty"`
	CreatedBy    string     `json:"created_by"`
	CreatedAt    string     `json:"created_at"`
	UpdatedAt    string     `json:"updated_at"`
}

// StartTime parses the event start. Zero time when the wire value is
// unparseable.
func (e Event) StartTime() time.Time {
	t, err := time.Parse(time.RFC3339, e.Datetime)
	if err != nil {
		return time.Time{}
	}
	return t
}

// HasAttendee reports whether the user participates in the event.
func (e Event) HasAttendee(userID string) bool {
	for _, a := range e.Attendees {
		if a.ID == userID {
			return true
		}
	}
	return false
}

// IsFull reports whether the event reached its capacity. Events without
// MaxAttendees are unlimited.
func (e Event) IsFull() bool {
	return e.MaxAttendees > 0 && len(e.Attendees) >= e.MaxAttendees
}

// EventDraft is the user-supplied input for creating or updating an event.
type EventDraft struct {
	Title        string
	Type         string
	Audience     string
	Description  string
	PlaceName    string
	Datetime     string
	Lat          float64
	Lng          float64
	MaxAttendees int
	ContactLink  string
}

// Validate checks the draft before any request is sent: required fields
// must be present and the start time must be in the future.
func (d EventDraft) Validate(now time.Time) error {
	if strings.TrimSpace(d.Title) == "" ||
		strings.TrimSpace(d.Type) == "" ||
		strings.TrimSpace(d.Audience) == "" ||
		strings.TrimSpace(d.PlaceName) == "" {
		return ErrInvalidInput
	}
	start, err := time.Parse(time.RFC3339, d.Datetime)
	if err != nil {
		return ErrInvalidInput
	}
	if !start.After(now) {
		return ErrInvalidInput
	}
	return nil
}

// Position is a geographic coordinate pair.
type Position struct {
	Lat float64
	Lng float64
}

// EventAPI is the remote events surface of the backend.
type EventAPI interface {
	List(ctx context.Context) ([]Event, error)
	GetByID(ctx context.Context, id string) (Event, error)
	Create(ctx context.Context, draft EventDraft) (Event, error)
	Update(ctx context.Context, id string, draft EventDraft) (Event, error)
	Delete(ctx context.Context, id string) error
	Join(ctx context.Context, id string) (Event, error)
	Leave(ctx context.Context, id string) (Event, error)
	UpdateParticipantRole(ctx context.Context, eventID, userID string, role AttendeeRole) (Event, error)
	KickParticipant(ctx context.Context, eventID, userID string) (Event, error)
	SearchByLocation(ctx context.Context, pos Position, radiusKm float64) ([]Event, error)
}
