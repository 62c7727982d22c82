package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/wagnerlima/pocketnetwork/internal/models"
)

const personCols = `id, name, pronouns, company, role, email, phone, photo_url, linkedin_url, notes, tags, needs_refining, created_at, updated_at`

// PersonUpdate is a partial update; nil fields are left untouched.
type PersonUpdate struct {
	Name          *string
	Pronouns      *string
	Company       *string
	Role          *string
	Email         *string
	Phone         *string
	PhotoURL      *string
	LinkedInURL   *string
	Notes         *string
	Tags          *[]string
	NeedsRefining *bool
}

// CreatePerson validates and inserts a new person, returning the stored
// snapshot with its assigned id.
func (s *Store) CreatePerson(p models.Person) (models.Person, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return models.Person{}, fmt.Errorf("%w: person name is required", ErrValidation)
	}

	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now

	res, err := s.db.Exec(
		`INSERT INTO people (name, pronouns, company, role, email, phone, photo_url, linkedin_url, notes, tags, needs_refining, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Pronouns, p.Company, p.Role, p.Email, p.Phone, p.PhotoURL, p.LinkedInURL,
		p.Notes, joinList(p.Tags), p.NeedsRefining, fmtTime(now), fmtTime(now),
	)
	if err != nil {
		return models.Person{}, fmt.Errorf("insert person: %w", err)
	}
	p.ID, _ = res.LastInsertId()

	s.notify(TablePeople)
	return p, nil
}

// ImportPerson inserts a person preserving its snapshot id when that id
// is free. Used by the JSON import path only.
func (s *Store) ImportPerson(p models.Person) (models.Person, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return models.Person{}, fmt.Errorf("%w: person name is required", ErrValidation)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	id := any(nil)
	if p.ID != 0 {
		if _, err := s.GetPerson(p.ID); err == nil {
			// id taken by an unrelated person; let SQLite renumber
		} else {
			id = p.ID
		}
	}

	res, err := s.db.Exec(
		`INSERT INTO people (id, name, pronouns, company, role, email, phone, photo_url, linkedin_url, notes, tags, needs_refining, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.Name, p.Pronouns, p.Company, p.Role, p.Email, p.Phone, p.PhotoURL, p.LinkedInURL,
		p.Notes, joinList(p.Tags), p.NeedsRefining, fmtTime(p.CreatedAt), fmtTime(p.UpdatedAt),
	)
	if err != nil {
		return models.Person{}, fmt.Errorf("insert person: %w", err)
	}
	p.ID, _ = res.LastInsertId()

	s.notify(TablePeople)
	return p, nil
}

// GetPerson returns a snapshot of one person.
func (s *Store) GetPerson(id int64) (models.Person, error) {
	row := s.db.QueryRow(`SELECT `+personCols+` FROM people WHERE id = ?`, id)
	return scanPerson(row)
}

// ListPeople returns all people in insertion order.
func (s *Store) ListPeople() ([]models.Person, error) {
	return s.queryPeople(`SELECT ` + personCols + ` FROM people ORDER BY id`)
}

// PeopleNeedingRefining returns people flagged as hastily created.
func (s *Store) PeopleNeedingRefining() ([]models.Person, error) {
	return s.queryPeople(`SELECT ` + personCols + ` FROM people WHERE needs_refining = 1 ORDER BY id`)
}

// FindPersonByName looks a person up by case-insensitive exact name.
func (s *Store) FindPersonByName(name string) (models.Person, bool, error) {
	row := s.db.QueryRow(
		`SELECT `+personCols+` FROM people WHERE name = ? COLLATE NOCASE ORDER BY id LIMIT 1`,
		strings.TrimSpace(name),
	)
	p, err := scanPerson(row)
	if err == ErrNotFound {
		return models.Person{}, false, nil
	}
	if err != nil {
		return models.Person{}, false, err
	}
	return p, true, nil
}

// FindPersonByLinkedIn looks a person up by exact (case-sensitive)
// profile URL.
func (s *Store) FindPersonByLinkedIn(url string) (models.Person, bool, error) {
	if url == "" {
		return models.Person{}, false, nil
	}
	row := s.db.QueryRow(
		`SELECT `+personCols+` FROM people WHERE linkedin_url = ? ORDER BY id LIMIT 1`, url,
	)
	p, err := scanPerson(row)
	if err == ErrNotFound {
		return models.Person{}, false, nil
	}
	if err != nil {
		return models.Person{}, false, err
	}
	return p, true, nil
}

// UpdatePerson merges the non-nil fields of upd into the stored record.
func (s *Store) UpdatePerson(id int64, upd PersonUpdate) (models.Person, error) {
	p, err := s.GetPerson(id)
	if err != nil {
		return models.Person{}, err
	}

	if upd.Name != nil {
		p.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Pronouns != nil {
		p.Pronouns = *upd.Pronouns
	}
	if upd.Company != nil {
		p.Company = *upd.Company
	}
	if upd.Role != nil {
		p.Role = *upd.Role
	}
	if upd.Email != nil {
		p.Email = *upd.Email
	}
	if upd.Phone != nil {
		p.Phone = *upd.Phone
	}
	if upd.PhotoURL != nil {
		p.PhotoURL = *upd.PhotoURL
	}
	if upd.LinkedInURL != nil {
		p.LinkedInURL = *upd.LinkedInURL
	}
	if upd.Notes != nil {
		p.Notes = *upd.Notes
	}
	if upd.Tags != nil {
		p.Tags = *upd.Tags
	}
	if upd.NeedsRefining != nil {
		p.NeedsRefining = *upd.NeedsRefining
	}

	return s.writePerson(p)
}

// ReplacePerson overwrites every field of an existing person. The JSON
// import merge path uses this after reconciliation.
func (s *Store) ReplacePerson(id int64, p models.Person) (models.Person, error) {
	if _, err := s.GetPerson(id); err != nil {
		return models.Person{}, err
	}
	p.ID = id
	return s.writePerson(p)
}

// AppendPersonNotes appends content to a person's notes, separated from
// any existing notes by a blank line.
func (s *Store) AppendPersonNotes(id int64, content string) (models.Person, error) {
	p, err := s.GetPerson(id)
	if err != nil {
		return models.Person{}, err
	}
	if p.Notes == "" {
		p.Notes = content
	} else {
		p.Notes = p.Notes + "\n\n" + content
	}
	return s.writePerson(p)
}

// DeletePerson removes a person and cascades to every meet, follow-up,
// and promise owned by them.
func (s *Store) DeletePerson(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Explicit cascade; the schema's ON DELETE clauses are the backstop.
	if _, err := tx.Exec(`DELETE FROM follow_ups WHERE person_id = ?`, id); err != nil {
		return fmt.Errorf("delete follow-ups: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM promises WHERE person_id = ?`, id); err != nil {
		return fmt.Errorf("delete promises: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM meets WHERE person_id = ?`, id); err != nil {
		return fmt.Errorf("delete meets: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM people WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.notify(TablePeople, TableMeets, TableFollowUps, TablePromises)
	return nil
}

func (s *Store) writePerson(p models.Person) (models.Person, error) {
	if p.Name == "" {
		return models.Person{}, fmt.Errorf("%w: person name is required", ErrValidation)
	}
	p.UpdatedAt = time.Now()

	_, err := s.db.Exec(
		`UPDATE people SET name = ?, pronouns = ?, company = ?, role = ?, email = ?, phone = ?,
		 photo_url = ?, linkedin_url = ?, notes = ?, tags = ?, needs_refining = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.Pronouns, p.Company, p.Role, p.Email, p.Phone, p.PhotoURL, p.LinkedInURL,
		p.Notes, joinList(p.Tags), p.NeedsRefining, fmtTime(p.UpdatedAt), p.ID,
	)
	if err != nil {
		return models.Person{}, fmt.Errorf("update person: %w", err)
	}

	s.notify(TablePeople)
	return p, nil
}

func (s *Store) queryPeople(query string, args ...any) ([]models.Person, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}
	defer rows.Close()

	var people []models.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (models.Person, error) {
	var p models.Person
	var tags, createdAt, updatedAt string
	err := row.Scan(&p.ID, &p.Name, &p.Pronouns, &p.Company, &p.Role, &p.Email, &p.Phone,
		&p.PhotoURL, &p.LinkedInURL, &p.Notes, &tags, &p.NeedsRefining, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return models.Person{}, ErrNotFound
	}
	if err != nil {
		return models.Person{}, fmt.Errorf("scan person: %w", err)
	}
	p.Tags = splitList(tags)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}
