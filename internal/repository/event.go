package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/eventhub/eventhub-go/internal/model"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrAlreadyAttending = errors.New("already attending event")
	ErrNotAttending     = errors.New("not attending event")
)

const (
	eventColumns = `id, user_id, title, description, location, date_time, attendee_count`

	// Upcoming events (today or later) sort ahead of past ones.
	futureFirst = ` ORDER BY CASE WHEN date_time >= CURRENT_DATE THEN 0 ELSE 1 END, date_time ASC`
)

// EventRepository handles event and attendee persistence operations.
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event and sets its generated ID.
func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	query := `INSERT INTO events (user_id, title, description, date_time, location, attendee_count)
		VALUES (?, ?, ?, ?, ?, 0)`

	id, err := r.db.insert(ctx, r.db, query,
		event.UserID, event.Title, event.Description, event.DateTime, event.Location,
	)
	if err != nil {
		return err
	}

	event.ID = id
	event.AttendeeCount = 0
	return nil
}

// GetByID retrieves a single event.
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = ?`

	event := &model.Event{}
	err := r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query), id).Scan(
		&event.ID, &event.UserID, &event.Title, &event.Description,
		&event.Location, &event.DateTime, &event.AttendeeCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	return event, nil
}

// ListAll returns every event, upcoming first.
func (r *EventRepository) ListAll(ctx context.Context) ([]model.Event, error) {
	return r.list(ctx, `SELECT `+eventColumns+` FROM events`+futureFirst)
}

// ListExcludingOwner returns events not owned by userID, upcoming first.
func (r *EventRepository) ListExcludingOwner(ctx context.Context, userID int64) ([]model.Event, error) {
	return r.list(ctx, `SELECT `+eventColumns+` FROM events WHERE user_id <> ?`+futureFirst, userID)
}

// ListByOwner returns events owned by userID, upcoming first.
func (r *EventRepository) ListByOwner(ctx context.Context, userID int64) ([]model.Event, error) {
	return r.list(ctx, `SELECT `+eventColumns+` FROM events WHERE user_id = ?`+futureFirst, userID)
}

// SearchByTitle matches term as a case-insensitive substring of the title.
// A non-zero excludeUserID drops that user's own events.
func (r *EventRepository) SearchByTitle(ctx context.Context, term string, excludeUserID int64) ([]model.Event, error) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"

	if excludeUserID != 0 {
		query := `SELECT ` + eventColumns + ` FROM events WHERE LOWER(title) LIKE ? AND user_id <> ?` + futureFirst
		return r.list(ctx, query, pattern, excludeUserID)
	}

	query := `SELECT ` + eventColumns + ` FROM events WHERE LOWER(title) LIKE ?` + futureFirst
	return r.list(ctx, query, pattern)
}

// ListAttending returns the events userID has joined, by ascending date.
func (r *EventRepository) ListAttending(ctx context.Context, userID int64) ([]model.Event, error) {
	query := `SELECT e.id, e.user_id, e.title, e.description, e.location, e.date_time, e.attendee_count
		FROM events e INNER JOIN attendees a ON e.id = a.event_id
		WHERE a.user_id = ? ORDER BY e.date_time ASC`
	return r.list(ctx, query, userID)
}

// Update overwrites the mutable fields of an event owned by event.UserID and
// refreshes event.AttendeeCount. The row is locked before the write, so an
// event deleted or missing at that point yields ErrEventNotFound.
func (r *EventRepository) Update(ctx context.Context, event *model.Event) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		lock := `SELECT attendee_count FROM events WHERE id = ? AND user_id = ? FOR UPDATE`
		if err := tx.QueryRowContext(ctx, r.db.Dialect.Rebind(lock), event.ID, event.UserID).Scan(&event.AttendeeCount); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEventNotFound
			}
			return err
		}

		query := `UPDATE events SET title = ?, description = ?, location = ?, date_time = ?
			WHERE id = ? AND user_id = ?`
		_, err := tx.ExecContext(ctx, r.db.Dialect.Rebind(query),
			event.Title, event.Description, event.Location, event.DateTime, event.ID, event.UserID,
		)
		return err
	})
}

// Delete removes an event owned by ownerID together with its attendee rows.
func (r *EventRepository) Delete(ctx context.Context, eventID, ownerID int64) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		var id int64
		lock := `SELECT id FROM events WHERE id = ? AND user_id = ? FOR UPDATE`
		if err := tx.QueryRowContext(ctx, r.db.Dialect.Rebind(lock), eventID, ownerID).Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEventNotFound
			}
			return err
		}

		if _, err := tx.ExecContext(ctx, r.db.Dialect.Rebind(`DELETE FROM attendees WHERE event_id = ?`), eventID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, r.db.Dialect.Rebind(`DELETE FROM events WHERE id = ?`), eventID)
		return err
	})
}

// AddAttendee records userID as attending eventID and increments the event's
// attendee_count in the same transaction.
func (r *EventRepository) AddAttendee(ctx context.Context, eventID, userID int64) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		check := `SELECT 1 FROM attendees WHERE event_id = ? AND user_id = ?`
		err := tx.QueryRowContext(ctx, r.db.Dialect.Rebind(check), eventID, userID).Scan(&exists)
		switch {
		case err == nil:
			return ErrAlreadyAttending
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}

		insert := `INSERT INTO attendees (event_id, user_id) VALUES (?, ?)`
		if _, err := tx.ExecContext(ctx, r.db.Dialect.Rebind(insert), eventID, userID); err != nil {
			if IsUniqueViolation(err) {
				return ErrAlreadyAttending
			}
			return err
		}

		bump := `UPDATE events SET attendee_count = attendee_count + 1 WHERE id = ?`
		_, err = tx.ExecContext(ctx, r.db.Dialect.Rebind(bump), eventID)
		return err
	})
}

// RemoveAttendee deletes userID's attendance of eventID and decrements
// attendee_count by the number of rows removed.
func (r *EventRepository) RemoveAttendee(ctx context.Context, eventID, userID int64) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		del := `DELETE FROM attendees WHERE event_id = ? AND user_id = ?`
		result, err := tx.ExecContext(ctx, r.db.Dialect.Rebind(del), eventID, userID)
		if err != nil {
			return err
		}

		removed, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if removed == 0 {
			return ErrNotAttending
		}

		drop := `UPDATE events SET attendee_count = attendee_count - ? WHERE id = ?`
		_, err = tx.ExecContext(ctx, r.db.Dialect.Rebind(drop), removed, eventID)
		return err
	})
}

func (r *EventRepository) list(ctx context.Context, query string, args ...any) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Title, &e.Description,
			&e.Location, &e.DateTime, &e.AttendeeCount,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
