package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// ErrNotFound is returned when an operation targets an id that does not
// exist (or no longer exists).
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when a write is rejected before it happens
// because a required field is missing or out of range.
var ErrValidation = errors.New("validation failed")

// Table identifies one of the entity tables for change notifications.
type Table string

const (
	TablePeople     Table = "people"
	TableEvents     Table = "events"
	TableMeets      Table = "meets"
	TableFollowUps  Table = "followUps"
	TablePromises   Table = "promises"
	TableInboxDumps Table = "inboxDumps"
)

// Store is the single-writer entity store backing the whole model.
type Store struct {
	db *sql.DB

	mu       sync.Mutex
	watchers map[int]func(Table)
	nextID   int
}

// Open opens (or creates) the database file under dataDir and runs the
// schema migration.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "pocketnetwork.db")
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	if _, err := db.Exec(Triggers); err != nil {
		db.Close()
		return nil, fmt.Errorf("create triggers: %w", err)
	}

	return &Store{db: db, watchers: make(map[int]func(Table))}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Watch registers a change listener. The callback is invoked after each
// committed mutation with the table that changed. The returned function
// cancels the registration.
func (s *Store) Watch(fn func(Table)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers, id)
	}
}

// notify fans a table-change notification out to all watchers.
func (s *Store) notify(tables ...Table) {
	s.mu.Lock()
	fns := make([]func(Table), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		for _, t := range tables {
			fn(t)
		}
	}
}

// --- column codecs ---

const timeLayout = time.RFC3339Nano

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// Older exports used plain RFC 3339 without fractional seconds.
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t
}

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

// joinList serializes a list column; ';' is the same delimiter the CSV
// projection uses.
func joinList(items []string) string {
	return strings.Join(items, ";")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
