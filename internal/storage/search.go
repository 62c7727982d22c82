package storage

import (
	"fmt"

	"github.com/wagnerlima/pocketnetwork/internal/models"
)

// SearchPeople performs FTS5 full-text search over person names,
// companies, and notes.
func (s *Store) SearchPeople(query string) ([]models.Person, error) {
	rows, err := s.db.Query(
		`SELECT p.id FROM people p
		 JOIN people_fts ON people_fts.rowid = p.id
		 WHERE people_fts MATCH ?
		 ORDER BY p.id`,
		query,
	)
	if err != nil {
		return nil, fmt.Errorf("search people fts: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		rows.Scan(&id)
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var people []models.Person
	for _, id := range ids {
		p, err := s.GetPerson(id)
		if err == ErrNotFound {
			continue // deleted between search and load
		}
		if err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	return people, nil
}

// SearchDumps performs FTS5 full-text search over inbox dump content.
func (s *Store) SearchDumps(query string) ([]models.InboxDump, error) {
	rows, err := s.db.Query(
		`SELECT d.id FROM inbox_dumps d
		 JOIN dumps_fts ON dumps_fts.rowid = d.id
		 WHERE dumps_fts MATCH ?
		 ORDER BY d.id`,
		query,
	)
	if err != nil {
		return nil, fmt.Errorf("search dumps fts: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		rows.Scan(&id)
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var dumps []models.InboxDump
	for _, id := range ids {
		d, err := s.GetDump(id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		dumps = append(dumps, d)
	}
	return dumps, nil
}
