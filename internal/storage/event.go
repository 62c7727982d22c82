package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/wagnerlima/pocketnetwork/internal/models"
)

const eventCols = `id, name, date, location, series, notes, created_at, updated_at`

// EventUpdate is a partial update; nil fields are left untouched.
type EventUpdate struct {
	Name     *string
	Date     *time.Time
	Location *string
	Series   *string
	Notes    *string
}

// CreateEvent validates and inserts a new event.
func (s *Store) CreateEvent(e models.Event) (models.Event, error) {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return models.Event{}, fmt.Errorf("%w: event name is required", ErrValidation)
	}
	if e.Date.IsZero() {
		return models.Event{}, fmt.Errorf("%w: event date is required", ErrValidation)
	}

	now := time.Now()
	e.CreatedAt, e.UpdatedAt = now, now

	res, err := s.db.Exec(
		`INSERT INTO events (name, date, location, series, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Name, fmtTime(e.Date), e.Location, e.Series, e.Notes, fmtTime(now), fmtTime(now),
	)
	if err != nil {
		return models.Event{}, fmt.Errorf("insert event: %w", err)
	}
	e.ID, _ = res.LastInsertId()

	s.notify(TableEvents)
	return e, nil
}

// GetEvent returns a snapshot of one event.
func (s *Store) GetEvent(id int64) (models.Event, error) {
	row := s.db.QueryRow(`SELECT `+eventCols+` FROM events WHERE id = ?`, id)
	return scanEvent(row)
}

// ListEvents returns all events, most recent date first.
func (s *Store) ListEvents() ([]models.Event, error) {
	return s.queryEvents(`SELECT ` + eventCols + ` FROM events ORDER BY date DESC`)
}

// UpcomingEvents returns events on or after the given instant, soonest
// first.
func (s *Store) UpcomingEvents(after time.Time) ([]models.Event, error) {
	return s.queryEvents(
		`SELECT `+eventCols+` FROM events WHERE date >= ? ORDER BY date`, fmtTime(after),
	)
}

// EventsBySeries returns the recurring events sharing a series key.
func (s *Store) EventsBySeries(series string) ([]models.Event, error) {
	return s.queryEvents(
		`SELECT `+eventCols+` FROM events WHERE series = ? ORDER BY date DESC`, series,
	)
}

// UpdateEvent merges the non-nil fields of upd into the stored record.
func (s *Store) UpdateEvent(id int64, upd EventUpdate) (models.Event, error) {
	e, err := s.GetEvent(id)
	if err != nil {
		return models.Event{}, err
	}

	if upd.Name != nil {
		e.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Date != nil {
		e.Date = *upd.Date
	}
	if upd.Location != nil {
		e.Location = *upd.Location
	}
	if upd.Series != nil {
		e.Series = *upd.Series
	}
	if upd.Notes != nil {
		e.Notes = *upd.Notes
	}

	if e.Name == "" {
		return models.Event{}, fmt.Errorf("%w: event name is required", ErrValidation)
	}
	if e.Date.IsZero() {
		return models.Event{}, fmt.Errorf("%w: event date is required", ErrValidation)
	}

	e.UpdatedAt = time.Now()
	_, err = s.db.Exec(
		`UPDATE events SET name = ?, date = ?, location = ?, series = ?, notes = ?, updated_at = ? WHERE id = ?`,
		e.Name, fmtTime(e.Date), e.Location, e.Series, e.Notes, fmtTime(e.UpdatedAt), e.ID,
	)
	if err != nil {
		return models.Event{}, fmt.Errorf("update event: %w", err)
	}

	s.notify(TableEvents)
	return e, nil
}

// MergeEvent upserts an event by id for the JSON import path.
func (s *Store) MergeEvent(e models.Event) (created bool, err error) {
	if e.ID != 0 {
		if _, getErr := s.GetEvent(e.ID); getErr == nil {
			_, err = s.db.Exec(
				`UPDATE events SET name = ?, date = ?, location = ?, series = ?, notes = ?, updated_at = ? WHERE id = ?`,
				e.Name, fmtTime(e.Date), e.Location, e.Series, e.Notes, fmtTime(time.Now()), e.ID,
			)
			if err != nil {
				return false, fmt.Errorf("merge event: %w", err)
			}
			s.notify(TableEvents)
			return false, nil
		}
	}

	id := any(nil)
	if e.ID != 0 {
		id = e.ID
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}
	_, err = s.db.Exec(
		`INSERT INTO events (id, name, date, location, series, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, e.Name, fmtTime(e.Date), e.Location, e.Series, e.Notes, fmtTime(e.CreatedAt), fmtTime(e.UpdatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("insert event: %w", err)
	}
	s.notify(TableEvents)
	return true, nil
}

// DeleteEvent removes an event and unlinks (rather than deletes) the
// meets and dumps that reference it.
func (s *Store) DeleteEvent(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := fmtTime(time.Now())
	if _, err := tx.Exec(`UPDATE meets SET event_id = NULL, updated_at = ? WHERE event_id = ?`, now, id); err != nil {
		return fmt.Errorf("unlink meets: %w", err)
	}
	if _, err := tx.Exec(`UPDATE inbox_dumps SET event_id = NULL WHERE event_id = ?`, id); err != nil {
		return fmt.Errorf("unlink dumps: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.notify(TableEvents, TableMeets, TableInboxDumps)
	return nil
}

func (s *Store) queryEvents(query string, args ...any) ([]models.Event, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanEvent(row rowScanner) (models.Event, error) {
	var e models.Event
	var date, createdAt, updatedAt string
	err := row.Scan(&e.ID, &e.Name, &date, &e.Location, &e.Series, &e.Notes, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return models.Event{}, ErrNotFound
	}
	if err != nil {
		return models.Event{}, fmt.Errorf("scan event: %w", err)
	}
	e.Date = parseTime(date)
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return e, nil
}
