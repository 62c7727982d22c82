package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/wagnerlima/pocketnetwork/internal/models"
)

const promiseCols = `id, person_id, meet_id, verb, description, due_date, status, completed, completed_at, created_at`

// CreatePromise validates and inserts a new promise.
func (s *Store) CreatePromise(p models.Promise) (models.Promise, error) {
	p.Description = strings.TrimSpace(p.Description)
	if p.PersonID == 0 {
		return models.Promise{}, fmt.Errorf("%w: promise person is required", ErrValidation)
	}
	if p.Description == "" {
		return models.Promise{}, fmt.Errorf("%w: promise description is required", ErrValidation)
	}
	p.Status = models.StatusPending
	p.Completed = false
	p.CompletedAt = nil
	p.CreatedAt = time.Now()

	res, err := s.db.Exec(
		`INSERT INTO promises (person_id, meet_id, verb, description, due_date, status, completed, created_at)
		 VALUES (?, ?, ?, ?, ?, 'pending', 0, ?)`,
		p.PersonID, nullInt(p.MeetID), string(p.Verb), p.Description, fmtTimePtr(p.DueDate), fmtTime(p.CreatedAt),
	)
	if err != nil {
		return models.Promise{}, fmt.Errorf("insert promise: %w", err)
	}
	p.ID, _ = res.LastInsertId()

	s.notify(TablePromises)
	return p, nil
}

// GetPromise returns a snapshot of one promise.
func (s *Store) GetPromise(id int64) (models.Promise, error) {
	row := s.db.QueryRow(`SELECT `+promiseCols+` FROM promises WHERE id = ?`, id)
	return scanPromise(row)
}

// PendingPromises returns all incomplete promises, dated ones first in
// due order, undated ones after in insertion order.
func (s *Store) PendingPromises() ([]models.Promise, error) {
	return s.queryPromises(
		`SELECT ` + promiseCols + ` FROM promises WHERE completed = 0
		 ORDER BY due_date IS NULL, due_date, id`,
	)
}

// PromisesByPerson returns a person's promises, newest first.
func (s *Store) PromisesByPerson(personID int64) ([]models.Promise, error) {
	return s.queryPromises(
		`SELECT `+promiseCols+` FROM promises WHERE person_id = ? ORDER BY id DESC`, personID,
	)
}

// ListPromises returns every promise in insertion order.
func (s *Store) ListPromises() ([]models.Promise, error) {
	return s.queryPromises(`SELECT ` + promiseCols + ` FROM promises ORDER BY id`)
}

// CompletePromise marks a promise done; completing an already-completed
// promise is a no-op.
func (s *Store) CompletePromise(id int64) (models.Promise, error) {
	p, err := s.GetPromise(id)
	if err != nil {
		return models.Promise{}, err
	}
	if p.Completed {
		return p, nil
	}

	now := time.Now()
	p.Completed = true
	p.CompletedAt = &now
	p.Status = models.StatusDone

	_, err = s.db.Exec(
		`UPDATE promises SET status = 'done', completed = 1, completed_at = ? WHERE id = ?`,
		fmtTime(now), id,
	)
	if err != nil {
		return models.Promise{}, fmt.Errorf("complete promise: %w", err)
	}

	s.notify(TablePromises)
	return p, nil
}

// MergePromise upserts a promise by id for the JSON import path.
func (s *Store) MergePromise(p models.Promise) (created bool, err error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.Status == "" {
		p.Status = models.StatusPending
		if p.Completed {
			p.Status = models.StatusDone
		}
	}

	if p.ID != 0 {
		if _, getErr := s.GetPromise(p.ID); getErr == nil {
			_, err = s.db.Exec(
				`UPDATE promises SET person_id = ?, meet_id = ?, verb = ?, description = ?, due_date = ?, status = ?, completed = ?, completed_at = ? WHERE id = ?`,
				p.PersonID, nullInt(p.MeetID), string(p.Verb), p.Description, fmtTimePtr(p.DueDate),
				string(p.Status), p.Completed, fmtTimePtr(p.CompletedAt), p.ID,
			)
			if err != nil {
				return false, fmt.Errorf("merge promise: %w", err)
			}
			s.notify(TablePromises)
			return false, nil
		}
	}

	id := any(nil)
	if p.ID != 0 {
		id = p.ID
	}
	_, err = s.db.Exec(
		`INSERT INTO promises (id, person_id, meet_id, verb, description, due_date, status, completed, completed_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.PersonID, nullInt(p.MeetID), string(p.Verb), p.Description, fmtTimePtr(p.DueDate),
		string(p.Status), p.Completed, fmtTimePtr(p.CompletedAt), fmtTime(p.CreatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("insert promise: %w", err)
	}
	s.notify(TablePromises)
	return true, nil
}

// DeletePromise removes one promise.
func (s *Store) DeletePromise(id int64) error {
	res, err := s.db.Exec(`DELETE FROM promises WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete promise: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.notify(TablePromises)
	return nil
}

func (s *Store) queryPromises(query string, args ...any) ([]models.Promise, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query promises: %w", err)
	}
	defer rows.Close()

	var promises []models.Promise
	for rows.Next() {
		p, err := scanPromise(rows)
		if err != nil {
			return nil, err
		}
		promises = append(promises, p)
	}
	return promises, rows.Err()
}

func scanPromise(row rowScanner) (models.Promise, error) {
	var p models.Promise
	var meetID sql.NullInt64
	var dueDate, completedAt sql.NullString
	var verb, status, createdAt string
	err := row.Scan(&p.ID, &p.PersonID, &meetID, &verb, &p.Description, &dueDate, &status,
		&p.Completed, &completedAt, &createdAt)
	if err == sql.ErrNoRows {
		return models.Promise{}, ErrNotFound
	}
	if err != nil {
		return models.Promise{}, fmt.Errorf("scan promise: %w", err)
	}
	p.MeetID = intPtr(meetID)
	p.Verb = models.PromiseVerb(verb)
	p.DueDate = parseTimePtr(dueDate)
	p.Status = models.TaskStatus(status)
	p.CompletedAt = parseTimePtr(completedAt)
	p.CreatedAt = parseTime(createdAt)
	return p, nil
}
