package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/wagnerlima/pocketnetwork/internal/models"
)

const followUpCols = `id, meet_id, person_id, description, due_date, status, priority, completed, completed_at, snoozed_until, snoozed_count, draft_tone, created_at, updated_at`

// FollowUpUpdate is a partial update; nil fields are left untouched.
// Completion is not reachable through here — use CompleteFollowUp.
type FollowUpUpdate struct {
	Description *string
	DueDate     *time.Time
	Priority    *models.Priority
	DraftTone   *models.DraftTone
}

// CreateFollowUp validates and inserts a new follow-up.
func (s *Store) CreateFollowUp(f models.FollowUp) (models.FollowUp, error) {
	if f.PersonID == 0 {
		return models.FollowUp{}, fmt.Errorf("%w: follow-up person is required", ErrValidation)
	}
	if f.DueDate.IsZero() {
		return models.FollowUp{}, fmt.Errorf("%w: follow-up due date is required", ErrValidation)
	}
	if f.Priority == "" {
		f.Priority = models.PriorityMedium
	}
	f.Status = models.StatusPending
	f.Completed = false
	f.CompletedAt = nil

	now := time.Now()
	f.CreatedAt, f.UpdatedAt = now, now

	res, err := s.db.Exec(
		`INSERT INTO follow_ups (meet_id, person_id, description, due_date, status, priority, completed, snoozed_until, snoozed_count, draft_tone, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 'pending', ?, 0, ?, ?, ?, ?, ?)`,
		nullInt(f.MeetID), f.PersonID, f.Description, fmtTime(f.DueDate), string(f.Priority),
		fmtTimePtr(f.SnoozedUntil), f.SnoozedCount, string(f.DraftTone), fmtTime(now), fmtTime(now),
	)
	if err != nil {
		return models.FollowUp{}, fmt.Errorf("insert follow-up: %w", err)
	}
	f.ID, _ = res.LastInsertId()

	s.notify(TableFollowUps)
	return f, nil
}

// GetFollowUp returns a snapshot of one follow-up.
func (s *Store) GetFollowUp(id int64) (models.FollowUp, error) {
	row := s.db.QueryRow(`SELECT `+followUpCols+` FROM follow_ups WHERE id = ?`, id)
	return scanFollowUp(row)
}

// PendingFollowUps returns all incomplete follow-ups ordered by due
// date ascending.
func (s *Store) PendingFollowUps() ([]models.FollowUp, error) {
	return s.queryFollowUps(
		`SELECT ` + followUpCols + ` FROM follow_ups WHERE completed = 0 ORDER BY due_date`,
	)
}

// FollowUpsByPerson returns a person's follow-ups, due soonest first.
func (s *Store) FollowUpsByPerson(personID int64) ([]models.FollowUp, error) {
	return s.queryFollowUps(
		`SELECT `+followUpCols+` FROM follow_ups WHERE person_id = ? ORDER BY due_date`, personID,
	)
}

// ListFollowUps returns every follow-up ordered by due date.
func (s *Store) ListFollowUps() ([]models.FollowUp, error) {
	return s.queryFollowUps(`SELECT ` + followUpCols + ` FROM follow_ups ORDER BY due_date`)
}

// UpdateFollowUp merges the non-nil fields of upd into the stored record.
func (s *Store) UpdateFollowUp(id int64, upd FollowUpUpdate) (models.FollowUp, error) {
	f, err := s.GetFollowUp(id)
	if err != nil {
		return models.FollowUp{}, err
	}

	if upd.Description != nil {
		f.Description = *upd.Description
	}
	if upd.DueDate != nil {
		f.DueDate = *upd.DueDate
	}
	if upd.Priority != nil {
		f.Priority = *upd.Priority
	}
	if upd.DraftTone != nil {
		f.DraftTone = *upd.DraftTone
	}

	return s.writeFollowUp(f)
}

// CompleteFollowUp marks a follow-up done. The transition is terminal:
// completing an already-completed follow-up is a no-op that returns the
// stored record unchanged.
func (s *Store) CompleteFollowUp(id int64) (models.FollowUp, error) {
	f, err := s.GetFollowUp(id)
	if err != nil {
		return models.FollowUp{}, err
	}
	if f.Completed {
		return f, nil
	}

	now := time.Now()
	f.Completed = true
	f.CompletedAt = &now
	f.Status = models.StatusDone
	return s.writeFollowUp(f)
}

// SnoozeFollowUp reschedules a follow-up to now + days and increments
// its snooze counter. This is the explicit "snooze N days" action that
// moves the real due date.
func (s *Store) SnoozeFollowUp(id int64, days int) (models.FollowUp, error) {
	f, err := s.GetFollowUp(id)
	if err != nil {
		return models.FollowUp{}, err
	}
	if f.Completed {
		return models.FollowUp{}, fmt.Errorf("%w: follow-up is already completed", ErrValidation)
	}
	if days <= 0 {
		return models.FollowUp{}, fmt.Errorf("%w: snooze days must be positive", ErrValidation)
	}

	f.DueDate = time.Now().AddDate(0, 0, days)
	f.SnoozedCount++
	f.SnoozedUntil = nil
	return s.writeFollowUp(f)
}

// HideFollowUpUntil suppresses a follow-up from the nudge surface until
// the given instant without touching its due date.
func (s *Store) HideFollowUpUntil(id int64, until time.Time) (models.FollowUp, error) {
	f, err := s.GetFollowUp(id)
	if err != nil {
		return models.FollowUp{}, err
	}
	f.SnoozedUntil = &until
	return s.writeFollowUp(f)
}

// MergeFollowUp upserts a follow-up by id for the JSON import path.
func (s *Store) MergeFollowUp(f models.FollowUp) (created bool, err error) {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = f.CreatedAt
	}
	if f.Priority == "" {
		f.Priority = models.PriorityMedium
	}
	if f.Status == "" {
		f.Status = models.StatusPending
		if f.Completed {
			f.Status = models.StatusDone
		}
	}

	if f.ID != 0 {
		if _, getErr := s.GetFollowUp(f.ID); getErr == nil {
			_, err = s.writeFollowUp(f)
			return false, err
		}
	}

	id := any(nil)
	if f.ID != 0 {
		id = f.ID
	}
	_, err = s.db.Exec(
		`INSERT INTO follow_ups (id, meet_id, person_id, description, due_date, status, priority, completed, completed_at, snoozed_until, snoozed_count, draft_tone, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, nullInt(f.MeetID), f.PersonID, f.Description, fmtTime(f.DueDate), string(f.Status),
		string(f.Priority), f.Completed, fmtTimePtr(f.CompletedAt), fmtTimePtr(f.SnoozedUntil),
		f.SnoozedCount, string(f.DraftTone), fmtTime(f.CreatedAt), fmtTime(f.UpdatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("insert follow-up: %w", err)
	}
	s.notify(TableFollowUps)
	return true, nil
}

// DeleteFollowUp removes one follow-up.
func (s *Store) DeleteFollowUp(id int64) error {
	res, err := s.db.Exec(`DELETE FROM follow_ups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete follow-up: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.notify(TableFollowUps)
	return nil
}

func (s *Store) writeFollowUp(f models.FollowUp) (models.FollowUp, error) {
	f.UpdatedAt = time.Now()
	_, err := s.db.Exec(
		`UPDATE follow_ups SET meet_id = ?, person_id = ?, description = ?, due_date = ?, status = ?, priority = ?,
		 completed = ?, completed_at = ?, snoozed_until = ?, snoozed_count = ?, draft_tone = ?, updated_at = ?
		 WHERE id = ?`,
		nullInt(f.MeetID), f.PersonID, f.Description, fmtTime(f.DueDate), string(f.Status),
		string(f.Priority), f.Completed, fmtTimePtr(f.CompletedAt), fmtTimePtr(f.SnoozedUntil),
		f.SnoozedCount, string(f.DraftTone), fmtTime(f.UpdatedAt), f.ID,
	)
	if err != nil {
		return models.FollowUp{}, fmt.Errorf("update follow-up: %w", err)
	}
	s.notify(TableFollowUps)
	return f, nil
}

func (s *Store) queryFollowUps(query string, args ...any) ([]models.FollowUp, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query follow-ups: %w", err)
	}
	defer rows.Close()

	var followUps []models.FollowUp
	for rows.Next() {
		f, err := scanFollowUp(rows)
		if err != nil {
			return nil, err
		}
		followUps = append(followUps, f)
	}
	return followUps, rows.Err()
}

func scanFollowUp(row rowScanner) (models.FollowUp, error) {
	var f models.FollowUp
	var meetID sql.NullInt64
	var completedAt, snoozedUntil sql.NullString
	var due, status, priority, draftTone, createdAt, updatedAt string
	err := row.Scan(&f.ID, &meetID, &f.PersonID, &f.Description, &due, &status, &priority,
		&f.Completed, &completedAt, &snoozedUntil, &f.SnoozedCount, &draftTone, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return models.FollowUp{}, ErrNotFound
	}
	if err != nil {
		return models.FollowUp{}, fmt.Errorf("scan follow-up: %w", err)
	}
	f.MeetID = intPtr(meetID)
	f.DueDate = parseTime(due)
	f.Status = models.TaskStatus(status)
	f.Priority = models.Priority(priority)
	f.CompletedAt = parseTimePtr(completedAt)
	f.SnoozedUntil = parseTimePtr(snoozedUntil)
	f.DraftTone = models.DraftTone(draftTone)
	f.CreatedAt = parseTime(createdAt)
	f.UpdatedAt = parseTime(updatedAt)
	return f, nil
}
