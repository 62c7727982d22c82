package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/wagnerlima/pocketnetwork/internal/models"
)

const dumpCols = `id, type, content, blob_url, event_id, status, processed, processed_at, created_at`

// CreateDump validates and inserts a new inbox dump with status "new".
func (s *Store) CreateDump(d models.InboxDump) (models.InboxDump, error) {
	switch d.Type {
	case models.DumpText:
		if d.Content == "" {
			return models.InboxDump{}, fmt.Errorf("%w: text dump needs content", ErrValidation)
		}
	case models.DumpPhoto, models.DumpAudio:
		if d.BlobURL == "" {
			return models.InboxDump{}, fmt.Errorf("%w: %s dump needs an attachment reference", ErrValidation, d.Type)
		}
	default:
		return models.InboxDump{}, fmt.Errorf("%w: unknown dump type %q", ErrValidation, d.Type)
	}

	d.Status = models.DumpNew
	d.Processed = false
	d.ProcessedAt = nil
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	res, err := s.db.Exec(
		`INSERT INTO inbox_dumps (type, content, blob_url, event_id, status, processed, created_at)
		 VALUES (?, ?, ?, ?, 'new', 0, ?)`,
		string(d.Type), d.Content, d.BlobURL, nullInt(d.EventID), fmtTime(d.CreatedAt),
	)
	if err != nil {
		return models.InboxDump{}, fmt.Errorf("insert dump: %w", err)
	}
	d.ID, _ = res.LastInsertId()

	s.notify(TableInboxDumps)
	return d, nil
}

// GetDump returns a snapshot of one dump.
func (s *Store) GetDump(id int64) (models.InboxDump, error) {
	row := s.db.QueryRow(`SELECT `+dumpCols+` FROM inbox_dumps WHERE id = ?`, id)
	return scanDump(row)
}

// DumpsByStatus returns dumps in the given status, oldest first. A
// limit of 0 means no limit.
func (s *Store) DumpsByStatus(status models.DumpStatus, limit int) ([]models.InboxDump, error) {
	q := `SELECT ` + dumpCols + ` FROM inbox_dumps WHERE status = ? ORDER BY id`
	args := []any{string(status)}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryDumps(q, args...)
}

// CountDumps returns how many dumps sit in the given status.
func (s *Store) CountDumps(status models.DumpStatus) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM inbox_dumps WHERE status = ?`, string(status)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count dumps: %w", err)
	}
	return n, nil
}

// ListDumps returns every dump in insertion order.
func (s *Store) ListDumps() ([]models.InboxDump, error) {
	return s.queryDumps(`SELECT ` + dumpCols + ` FROM inbox_dumps ORDER BY id`)
}

// MarkDumpTriaged advances a dump new -> triaged and stamps it
// processed. This is the shared commit epilogue of every triage action.
func (s *Store) MarkDumpTriaged(id int64) (models.InboxDump, error) {
	return s.setDumpStatus(id, models.DumpTriaged)
}

// ArchiveDump advances a dump new -> archived.
func (s *Store) ArchiveDump(id int64) (models.InboxDump, error) {
	return s.setDumpStatus(id, models.DumpArchived)
}

// RestoreDump moves an archived dump back to new so it re-enters the
// triage queue. Restoring clears the processed stamp.
func (s *Store) RestoreDump(id int64) (models.InboxDump, error) {
	d, err := s.GetDump(id)
	if err != nil {
		return models.InboxDump{}, err
	}
	if d.Status != models.DumpArchived {
		return models.InboxDump{}, fmt.Errorf("%w: only archived dumps can be restored", ErrValidation)
	}

	_, err = s.db.Exec(
		`UPDATE inbox_dumps SET status = 'new', processed = 0, processed_at = NULL WHERE id = ?`, id,
	)
	if err != nil {
		return models.InboxDump{}, fmt.Errorf("restore dump: %w", err)
	}
	d.Status = models.DumpNew
	d.Processed = false
	d.ProcessedAt = nil

	s.notify(TableInboxDumps)
	return d, nil
}

// MergeDump upserts a dump by id for the JSON import path.
func (s *Store) MergeDump(d models.InboxDump) (created bool, err error) {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	if d.Status == "" {
		d.Status = models.DumpNew
	}
	// Processed tracks whether status has left "new".
	d.Processed = d.Status != models.DumpNew

	if d.ID != 0 {
		if _, getErr := s.GetDump(d.ID); getErr == nil {
			_, err = s.db.Exec(
				`UPDATE inbox_dumps SET type = ?, content = ?, blob_url = ?, event_id = ?, status = ?, processed = ?, processed_at = ? WHERE id = ?`,
				string(d.Type), d.Content, d.BlobURL, nullInt(d.EventID), string(d.Status),
				d.Processed, fmtTimePtr(d.ProcessedAt), d.ID,
			)
			if err != nil {
				return false, fmt.Errorf("merge dump: %w", err)
			}
			s.notify(TableInboxDumps)
			return false, nil
		}
	}

	id := any(nil)
	if d.ID != 0 {
		id = d.ID
	}
	_, err = s.db.Exec(
		`INSERT INTO inbox_dumps (id, type, content, blob_url, event_id, status, processed, processed_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, string(d.Type), d.Content, d.BlobURL, nullInt(d.EventID), string(d.Status),
		d.Processed, fmtTimePtr(d.ProcessedAt), fmtTime(d.CreatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("insert dump: %w", err)
	}
	s.notify(TableInboxDumps)
	return true, nil
}

// DeleteDump removes one dump.
func (s *Store) DeleteDump(id int64) error {
	res, err := s.db.Exec(`DELETE FROM inbox_dumps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete dump: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.notify(TableInboxDumps)
	return nil
}

func (s *Store) setDumpStatus(id int64, status models.DumpStatus) (models.InboxDump, error) {
	d, err := s.GetDump(id)
	if err != nil {
		return models.InboxDump{}, err
	}
	if d.Status == status {
		return d, nil
	}
	if d.Status != models.DumpNew {
		return models.InboxDump{}, fmt.Errorf("%w: dump is already %s", ErrValidation, d.Status)
	}

	now := time.Now()
	_, err = s.db.Exec(
		`UPDATE inbox_dumps SET status = ?, processed = 1, processed_at = ? WHERE id = ?`,
		string(status), fmtTime(now), id,
	)
	if err != nil {
		return models.InboxDump{}, fmt.Errorf("update dump status: %w", err)
	}
	d.Status = status
	d.Processed = true
	d.ProcessedAt = &now

	s.notify(TableInboxDumps)
	return d, nil
}

func (s *Store) queryDumps(query string, args ...any) ([]models.InboxDump, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query dumps: %w", err)
	}
	defer rows.Close()

	var dumps []models.InboxDump
	for rows.Next() {
		d, err := scanDump(rows)
		if err != nil {
			return nil, err
		}
		dumps = append(dumps, d)
	}
	return dumps, rows.Err()
}

func scanDump(row rowScanner) (models.InboxDump, error) {
	var d models.InboxDump
	var eventID sql.NullInt64
	var processedAt sql.NullString
	var typ, status, createdAt string
	err := row.Scan(&d.ID, &typ, &d.Content, &d.BlobURL, &eventID, &status, &d.Processed,
		&processedAt, &createdAt)
	if err == sql.ErrNoRows {
		return models.InboxDump{}, ErrNotFound
	}
	if err != nil {
		return models.InboxDump{}, fmt.Errorf("scan dump: %w", err)
	}
	d.Type = models.DumpType(typ)
	d.EventID = intPtr(eventID)
	d.Status = models.DumpStatus(status)
	d.ProcessedAt = parseTimePtr(processedAt)
	d.CreatedAt = parseTime(createdAt)
	return d, nil
}
