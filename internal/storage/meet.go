package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/wagnerlima/pocketnetwork/internal/models"
)

const meetCols = `id, person_id, event_id, when_at, where_at, context, next_step, next_step_type, topics, energy, voice_note_url, is_draft, needs_refining, created_at, updated_at`

// AutoFollowUp controls the follow-up a meet spawns when its next-step
// type is not "none". Due wins over Timing when both are set; Suppress
// skips the follow-up entirely.
type AutoFollowUp struct {
	Due      *time.Time
	Timing   models.FollowUpTiming
	Suppress bool
}

// MeetUpdate is a partial update; nil fields are left untouched.
type MeetUpdate struct {
	PersonID      *int64
	EventID       *int64
	When          *time.Time
	Where         *string
	Context       *string
	NextStep      *string
	NextStepType  *models.NextStepType
	Topics        *[]string
	Energy        *models.Energy
	VoiceNoteURL  *string
	IsDraft       *bool
	NeedsRefining *bool
	ClearEvent    bool
}

// CreateMeet inserts a meet and, when its next-step type calls for one,
// the single follow-up it spawns. Both writes happen in one transaction.
func (s *Store) CreateMeet(m models.Meet, auto AutoFollowUp) (models.Meet, *models.FollowUp, error) {
	if m.When.IsZero() {
		m.When = time.Now()
	}
	if m.NextStepType == "" {
		m.NextStepType = models.NextStepNone
	}
	if len(m.Topics) > 3 {
		return models.Meet{}, nil, fmt.Errorf("%w: a meet holds at most 3 topics", ErrValidation)
	}

	now := time.Now()
	m.CreatedAt, m.UpdatedAt = now, now

	tx, err := s.db.Begin()
	if err != nil {
		return models.Meet{}, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO meets (person_id, event_id, when_at, where_at, context, next_step, next_step_type, topics, energy, voice_note_url, is_draft, needs_refining, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullInt(m.PersonID), nullInt(m.EventID), fmtTime(m.When), m.Where, m.Context,
		m.NextStep, string(m.NextStepType), joinList(m.Topics), string(m.Energy),
		m.VoiceNoteURL, m.IsDraft, m.NeedsRefining, fmtTime(now), fmtTime(now),
	)
	if err != nil {
		return models.Meet{}, nil, fmt.Errorf("insert meet: %w", err)
	}
	m.ID, _ = res.LastInsertId()

	var created *models.FollowUp
	if m.NextStepType != models.NextStepNone && !auto.Suppress && m.PersonID != nil {
		due := now.AddDate(0, 0, auto.Timing.OffsetDays())
		if auto.Due != nil {
			due = *auto.Due
		}
		f := models.FollowUp{
			MeetID:      &m.ID,
			PersonID:    *m.PersonID,
			Description: models.NextStepDescription(m.NextStepType),
			DueDate:     due,
			Status:      models.StatusPending,
			Priority:    models.PriorityMedium,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		fres, err := tx.Exec(
			`INSERT INTO follow_ups (meet_id, person_id, description, due_date, status, priority, completed, created_at, updated_at)
			 VALUES (?, ?, ?, ?, 'pending', 'medium', 0, ?, ?)`,
			m.ID, f.PersonID, f.Description, fmtTime(f.DueDate), fmtTime(now), fmtTime(now),
		)
		if err != nil {
			return models.Meet{}, nil, fmt.Errorf("insert follow-up: %w", err)
		}
		f.ID, _ = fres.LastInsertId()
		created = &f
	}

	if err := tx.Commit(); err != nil {
		return models.Meet{}, nil, fmt.Errorf("commit: %w", err)
	}

	if created != nil {
		s.notify(TableMeets, TableFollowUps)
	} else {
		s.notify(TableMeets)
	}
	return m, created, nil
}

// GetMeet returns a snapshot of one meet.
func (s *Store) GetMeet(id int64) (models.Meet, error) {
	row := s.db.QueryRow(`SELECT `+meetCols+` FROM meets WHERE id = ?`, id)
	return scanMeet(row)
}

// ListMeets returns all meets, most recent first.
func (s *Store) ListMeets() ([]models.Meet, error) {
	return s.queryMeets(`SELECT ` + meetCols + ` FROM meets ORDER BY when_at DESC`)
}

// MeetsByPerson returns a person's meets, most recent first.
func (s *Store) MeetsByPerson(personID int64) ([]models.Meet, error) {
	return s.queryMeets(
		`SELECT `+meetCols+` FROM meets WHERE person_id = ? ORDER BY when_at DESC`, personID,
	)
}

// MeetsByEvent returns the meets recorded at an event.
func (s *Store) MeetsByEvent(eventID int64) ([]models.Meet, error) {
	return s.queryMeets(
		`SELECT `+meetCols+` FROM meets WHERE event_id = ? ORDER BY when_at DESC`, eventID,
	)
}

// DraftMeets returns meets still flagged as drafts.
func (s *Store) DraftMeets() ([]models.Meet, error) {
	return s.queryMeets(`SELECT ` + meetCols + ` FROM meets WHERE is_draft = 1 ORDER BY when_at DESC`)
}

// UpdateMeet merges the non-nil fields of upd into the stored record.
func (s *Store) UpdateMeet(id int64, upd MeetUpdate) (models.Meet, error) {
	m, err := s.GetMeet(id)
	if err != nil {
		return models.Meet{}, err
	}

	if upd.PersonID != nil {
		m.PersonID = upd.PersonID
	}
	if upd.ClearEvent {
		m.EventID = nil
	} else if upd.EventID != nil {
		m.EventID = upd.EventID
	}
	if upd.When != nil {
		m.When = *upd.When
	}
	if upd.Where != nil {
		m.Where = *upd.Where
	}
	if upd.Context != nil {
		m.Context = *upd.Context
	}
	if upd.NextStep != nil {
		m.NextStep = *upd.NextStep
	}
	if upd.NextStepType != nil {
		m.NextStepType = *upd.NextStepType
	}
	if upd.Topics != nil {
		if len(*upd.Topics) > 3 {
			return models.Meet{}, fmt.Errorf("%w: a meet holds at most 3 topics", ErrValidation)
		}
		m.Topics = *upd.Topics
	}
	if upd.Energy != nil {
		m.Energy = *upd.Energy
	}
	if upd.VoiceNoteURL != nil {
		m.VoiceNoteURL = *upd.VoiceNoteURL
	}
	if upd.IsDraft != nil {
		m.IsDraft = *upd.IsDraft
	}
	if upd.NeedsRefining != nil {
		m.NeedsRefining = *upd.NeedsRefining
	}

	m.UpdatedAt = time.Now()
	_, err = s.db.Exec(
		`UPDATE meets SET person_id = ?, event_id = ?, when_at = ?, where_at = ?, context = ?, next_step = ?,
		 next_step_type = ?, topics = ?, energy = ?, voice_note_url = ?, is_draft = ?, needs_refining = ?, updated_at = ?
		 WHERE id = ?`,
		nullInt(m.PersonID), nullInt(m.EventID), fmtTime(m.When), m.Where, m.Context, m.NextStep,
		string(m.NextStepType), joinList(m.Topics), string(m.Energy), m.VoiceNoteURL,
		m.IsDraft, m.NeedsRefining, fmtTime(m.UpdatedAt), m.ID,
	)
	if err != nil {
		return models.Meet{}, fmt.Errorf("update meet: %w", err)
	}

	s.notify(TableMeets)
	return m, nil
}

// MergeMeet upserts a meet by id for the JSON import path.
func (s *Store) MergeMeet(m models.Meet) (created bool, err error) {
	if m.When.IsZero() {
		m.When = time.Now()
	}
	if m.NextStepType == "" {
		m.NextStepType = models.NextStepNone
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
	}

	if m.ID != 0 {
		if _, getErr := s.GetMeet(m.ID); getErr == nil {
			_, err = s.db.Exec(
				`UPDATE meets SET person_id = ?, event_id = ?, when_at = ?, where_at = ?, context = ?, next_step = ?,
				 next_step_type = ?, topics = ?, energy = ?, voice_note_url = ?, is_draft = ?, needs_refining = ?, updated_at = ?
				 WHERE id = ?`,
				nullInt(m.PersonID), nullInt(m.EventID), fmtTime(m.When), m.Where, m.Context, m.NextStep,
				string(m.NextStepType), joinList(m.Topics), string(m.Energy), m.VoiceNoteURL,
				m.IsDraft, m.NeedsRefining, fmtTime(time.Now()), m.ID,
			)
			if err != nil {
				return false, fmt.Errorf("merge meet: %w", err)
			}
			s.notify(TableMeets)
			return false, nil
		}
	}

	id := any(nil)
	if m.ID != 0 {
		id = m.ID
	}
	_, err = s.db.Exec(
		`INSERT INTO meets (id, person_id, event_id, when_at, where_at, context, next_step, next_step_type, topics, energy, voice_note_url, is_draft, needs_refining, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, nullInt(m.PersonID), nullInt(m.EventID), fmtTime(m.When), m.Where, m.Context,
		m.NextStep, string(m.NextStepType), joinList(m.Topics), string(m.Energy),
		m.VoiceNoteURL, m.IsDraft, m.NeedsRefining, fmtTime(m.CreatedAt), fmtTime(m.UpdatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("insert meet: %w", err)
	}
	s.notify(TableMeets)
	return true, nil
}

// DeleteMeet removes one meet; follow-ups that referenced it keep their
// person but lose the meet link.
func (s *Store) DeleteMeet(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := fmtTime(time.Now())
	if _, err := tx.Exec(`UPDATE follow_ups SET meet_id = NULL, updated_at = ? WHERE meet_id = ?`, now, id); err != nil {
		return fmt.Errorf("unlink follow-ups: %w", err)
	}
	if _, err := tx.Exec(`UPDATE promises SET meet_id = NULL WHERE meet_id = ?`, id); err != nil {
		return fmt.Errorf("unlink promises: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM meets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete meet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.notify(TableMeets, TableFollowUps, TablePromises)
	return nil
}

func (s *Store) queryMeets(query string, args ...any) ([]models.Meet, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query meets: %w", err)
	}
	defer rows.Close()

	var meets []models.Meet
	for rows.Next() {
		m, err := scanMeet(rows)
		if err != nil {
			return nil, err
		}
		meets = append(meets, m)
	}
	return meets, rows.Err()
}

func scanMeet(row rowScanner) (models.Meet, error) {
	var m models.Meet
	var personID, eventID sql.NullInt64
	var when, topics, nextStepType, energy, createdAt, updatedAt string
	err := row.Scan(&m.ID, &personID, &eventID, &when, &m.Where, &m.Context, &m.NextStep,
		&nextStepType, &topics, &energy, &m.VoiceNoteURL, &m.IsDraft, &m.NeedsRefining,
		&createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return models.Meet{}, ErrNotFound
	}
	if err != nil {
		return models.Meet{}, fmt.Errorf("scan meet: %w", err)
	}
	m.PersonID = intPtr(personID)
	m.EventID = intPtr(eventID)
	m.When = parseTime(when)
	m.NextStepType = models.NextStepType(nextStepType)
	m.Topics = splitList(topics)
	m.Energy = models.Energy(energy)
	m.CreatedAt = parseTime(createdAt)
	m.UpdatedAt = parseTime(updatedAt)
	return m, nil
}
