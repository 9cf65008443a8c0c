package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// EventKind distinguishes static gesture confirmations from motion actions.
type EventKind string

const (
	// EventKindGesture is a confirmed static hand-pose gesture.
	EventKindGesture EventKind = "gesture"
	// EventKindAction is a confirmed motion action gesture.
	EventKindAction EventKind = "action"
)

// Event is one confirmed gesture or action, as logged by the pipeline.
type Event struct {
	ID         string    `json:"id"`
	Kind       EventKind `json:"kind"`
	Name       string    `json:"name"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

// EventRepository provides access to the confirmed-event log.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Record inserts a confirmed event, assigning it an ID and timestamp.
func (r *EventRepository) Record(kind EventKind, name string, confidence float64) (*Event, error) {
	e := &Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		Name:       name,
		Confidence: confidence,
		CreatedAt:  time.Now(),
	}

	_, err := r.db.Exec(
		`INSERT INTO events (id, kind, name, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.ID, string(e.Kind), e.Name, e.Confidence, e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return e, nil
}

// Recent retrieves the most recent events, newest first.
func (r *EventRepository) Recent(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, kind, name, confidence, created_at
		 FROM events ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		var kind string

		if err := rows.Scan(&e.ID, &kind, &e.Name, &e.Confidence, &e.CreatedAt); err != nil {
			return nil, err
		}

		e.Kind = EventKind(kind)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// Prune deletes events older than the cutoff. Returns the number removed.
func (r *EventRepository) Prune(before time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM events WHERE created_at < ?`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
