package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/eventhub/eventhub-go/internal/metrics"
	"github.com/eventhub/eventhub-go/internal/model"
	"github.com/eventhub/eventhub-go/internal/repository"
)

var (
	ErrEventInput    = errors.New("title and date are required")
	ErrInvalidDate   = errors.New("date must be YYYY-MM-DD or RFC 3339")
	ErrPastEvent     = errors.New("cannot create a past event")
	ErrEventStarted  = errors.New("cannot join a past event")
	ErrEventNotFound = errors.New("event not found")
	ErrAlreadyJoined = errors.New("already Joined")
	ErrNotAttending  = errors.New("not attending this event")
)

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

// EventService handles event business logic.
type EventService struct {
	repo     *repository.EventRepository
	validate *validator.Validate
	now      func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(repo *repository.EventRepository) *EventService {
	return &EventService{
		repo:     repo,
		validate: validator.New(),
		now:      time.Now,
	}
}

// ListAll returns every event, upcoming first.
func (s *EventService) ListAll(ctx context.Context) ([]model.Event, error) {
	return s.repo.ListAll(ctx)
}

// Feed returns events created by other users, upcoming first.
func (s *EventService) Feed(ctx context.Context, userID int64) ([]model.Event, error) {
	return s.repo.ListExcludingOwner(ctx, userID)
}

// Mine returns the caller's own events, upcoming first.
func (s *EventService) Mine(ctx context.Context, userID int64) ([]model.Event, error) {
	return s.repo.ListByOwner(ctx, userID)
}

// Attending returns the events the caller has joined.
func (s *EventService) Attending(ctx context.Context, userID int64) ([]model.Event, error) {
	return s.repo.ListAttending(ctx, userID)
}

// Search matches term against event titles, skipping the caller's own events.
func (s *EventService) Search(ctx context.Context, term string, userID int64) ([]model.Event, error) {
	return s.repo.SearchByTitle(ctx, strings.TrimSpace(term), userID)
}

// GuestSearch matches term against every event title.
func (s *EventService) GuestSearch(ctx context.Context, term string) ([]model.Event, error) {
	return s.repo.SearchByTitle(ctx, strings.TrimSpace(term), 0)
}

// Get returns a single event.
func (s *EventService) Get(ctx context.Context, eventID int64) (model.Event, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return model.Event{}, mapEventErr(err)
	}
	return *event, nil
}

// Create stores a new event owned by userID. The event's calendar day must
// be strictly after today.
func (s *EventService) Create(ctx context.Context, userID int64, req model.CreateEventRequest) (event model.Event, err error) {
	defer func() { metrics.EventOperations.WithLabelValues("create", metrics.Result(err)).Inc() }()

	if err := s.validate.Struct(req); err != nil {
		return model.Event{}, ErrEventInput
	}

	when, err := parseEventDate(req.Date)
	if err != nil {
		return model.Event{}, err
	}
	if !day(when).After(day(s.now())) {
		return model.Event{}, ErrPastEvent
	}

	event = model.Event{
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Location:    req.Location,
		DateTime:    when,
	}
	if err := s.repo.Create(ctx, &event); err != nil {
		return model.Event{}, err
	}

	return event, nil
}

// Update replaces the fields of an event. Only the owner may update it; for
// anyone else the event is reported as not found.
func (s *EventService) Update(ctx context.Context, userID, eventID int64, req model.UpdateEventRequest) (event model.Event, err error) {
	defer func() { metrics.EventOperations.WithLabelValues("update", metrics.Result(err)).Inc() }()

	if err := s.validate.Struct(req); err != nil {
		return model.Event{}, ErrEventInput
	}

	when, err := parseEventDate(req.DateTime)
	if err != nil {
		return model.Event{}, err
	}

	event = model.Event{
		ID:          eventID,
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Location:    req.Location,
		DateTime:    when,
	}
	if err := s.repo.Update(ctx, &event); err != nil {
		return model.Event{}, mapEventErr(err)
	}

	return event, nil
}

// Delete removes an event owned by userID together with its attendees.
func (s *EventService) Delete(ctx context.Context, userID, eventID int64) (err error) {
	defer func() { metrics.EventOperations.WithLabelValues("delete", metrics.Result(err)).Inc() }()

	return mapEventErr(s.repo.Delete(ctx, eventID, userID))
}

// Join adds userID to the event's attendees. Joining twice yields
// ErrAlreadyJoined and leaves the attendee count unchanged.
func (s *EventService) Join(ctx context.Context, userID, eventID int64) (err error) {
	defer func() { metrics.EventOperations.WithLabelValues("join", metrics.Result(err)).Inc() }()

	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return mapEventErr(err)
	}
	if event.DateTime.Before(s.now()) {
		return ErrEventStarted
	}

	return mapEventErr(s.repo.AddAttendee(ctx, eventID, userID))
}

// Leave removes userID from the event's attendees.
func (s *EventService) Leave(ctx context.Context, userID, eventID int64) (err error) {
	defer func() { metrics.EventOperations.WithLabelValues("leave", metrics.Result(err)).Inc() }()

	return mapEventErr(s.repo.RemoveAttendee(ctx, eventID, userID))
}

func mapEventErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrEventNotFound):
		return ErrEventNotFound
	case errors.Is(err, repository.ErrAlreadyAttending):
		return ErrAlreadyJoined
	case errors.Is(err, repository.ErrNotAttending):
		return ErrNotAttending
	default:
		return err
	}
}

// parseEventDate accepts RFC 3339 timestamps or bare dates; values without a
// zone are taken as UTC.
func parseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// day truncates t to midnight UTC of its calendar day.
func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
