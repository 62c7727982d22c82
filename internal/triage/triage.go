// Package triage drives the batch workflow that converts inbox dumps
// into structured records. A session works through status=new dumps in
// fixed batches; each dump receives exactly one of four outcomes and is
// marked triaged on commit. Validation happens before any write, so a
// rejected action leaves the dump untouched and the session on the same
// item. Abandoning a session loses nothing: remaining dumps stay new
// and the next session picks them up in a fresh batch.
package triage

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wagnerlima/pocketnetwork/internal/models"
	"github.com/wagnerlima/pocketnetwork/internal/storage"
)

// BatchSize is how many dumps one triage pass presents.
const BatchSize = 3

// ErrBatchDone is returned by action methods once the batch is
// exhausted.
var ErrBatchDone = errors.New("triage batch complete")

// Session is one triage pass over a batch of dumps.
type Session struct {
	store *storage.Store

	mu    sync.Mutex
	batch []models.InboxDump
	idx   int
}

// Start loads the next batch of untriaged dumps. An empty batch is not
// an error; Current reports it.
func Start(store *storage.Store) (*Session, error) {
	batch, err := store.DumpsByStatus(models.DumpNew, BatchSize)
	if err != nil {
		return nil, fmt.Errorf("load triage batch: %w", err)
	}
	return &Session{store: store, batch: batch}, nil
}

// Current returns the dump under triage, or ok=false when the batch is
// exhausted (or was empty to begin with).
func (s *Session) Current() (models.InboxDump, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx >= len(s.batch) {
		return models.InboxDump{}, false
	}
	return s.batch[s.idx], true
}

// Remaining returns how many dumps are left in this batch, including
// the current one.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batch) - s.idx
}

// MeetInput is the form for the convert-to-meet action.
type MeetInput struct {
	Name    string // person name, required
	Context string // optional override; text dumps pre-fill from content
}

// ConvertToMeet turns the current dump into a person (found or created
// by case-insensitive name) plus a meet recorded at the dump's capture
// time. Audio dumps carry their attachment onto the meet.
func (s *Session) ConvertToMeet(in MeetInput) (models.Meet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dump, err := s.current()
	if err != nil {
		return models.Meet{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Meet{}, fmt.Errorf("%w: person name is required", storage.ErrValidation)
	}

	person, found, err := s.store.FindPersonByName(name)
	if err != nil {
		return models.Meet{}, err
	}
	if !found {
		person, err = s.store.CreatePerson(models.Person{Name: name})
		if err != nil {
			return models.Meet{}, err
		}
	}

	context := strings.TrimSpace(in.Context)
	if context == "" && dump.Type == models.DumpText {
		context = dump.Content
	}
	voiceNote := ""
	if dump.Type == models.DumpAudio {
		voiceNote = dump.BlobURL
	}

	meet, _, err := s.store.CreateMeet(models.Meet{
		PersonID:     &person.ID,
		EventID:      dump.EventID,
		When:         dump.CreatedAt,
		Context:      context,
		NextStepType: models.NextStepNone,
		VoiceNoteURL: voiceNote,
	}, storage.AutoFollowUp{Suppress: true})
	if err != nil {
		return models.Meet{}, err
	}

	if err := s.commit(dump.ID); err != nil {
		return models.Meet{}, err
	}
	return meet, nil
}

// PromiseInput is the form for the convert-to-promise action.
type PromiseInput struct {
	PersonID    int64
	Description string
	Verb        models.PromiseVerb
	DueDate     *time.Time
}

// ConvertToPromise turns the current dump into a promise to an existing
// person.
func (s *Session) ConvertToPromise(in PromiseInput) (models.Promise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dump, err := s.current()
	if err != nil {
		return models.Promise{}, err
	}
	if in.PersonID == 0 {
		return models.Promise{}, fmt.Errorf("%w: select a person", storage.ErrValidation)
	}
	if strings.TrimSpace(in.Description) == "" {
		return models.Promise{}, fmt.Errorf("%w: promise description is required", storage.ErrValidation)
	}
	if _, err := s.store.GetPerson(in.PersonID); err != nil {
		return models.Promise{}, err
	}

	promise, err := s.store.CreatePromise(models.Promise{
		PersonID:    in.PersonID,
		Verb:        in.Verb,
		Description: strings.TrimSpace(in.Description),
		DueDate:     in.DueDate,
	})
	if err != nil {
		return models.Promise{}, err
	}

	if err := s.commit(dump.ID); err != nil {
		return models.Promise{}, err
	}
	return promise, nil
}

// AttachToPerson appends the current dump's content to an existing
// person's notes, blank-line separated.
func (s *Session) AttachToPerson(personID int64) (models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dump, err := s.current()
	if err != nil {
		return models.Person{}, err
	}
	if personID == 0 {
		return models.Person{}, fmt.Errorf("%w: select a person", storage.ErrValidation)
	}
	content := dump.Content
	if content == "" {
		content = dump.BlobURL
	}

	person, err := s.store.AppendPersonNotes(personID, content)
	if err != nil {
		return models.Person{}, err
	}

	if err := s.commit(dump.ID); err != nil {
		return models.Person{}, err
	}
	return person, nil
}

// Archive dismisses the current dump with no side effect beyond the
// shared commit epilogue.
func (s *Session) Archive() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dump, err := s.current()
	if err != nil {
		return err
	}
	return s.commit(dump.ID)
}

// current must be called with the lock held.
func (s *Session) current() (models.InboxDump, error) {
	if s.idx >= len(s.batch) {
		return models.InboxDump{}, ErrBatchDone
	}
	return s.batch[s.idx], nil
}

// commit is the epilogue every action shares: the dump leaves "new"
// exactly once, and the session advances. Must be called with the lock
// held.
func (s *Session) commit(dumpID int64) error {
	if _, err := s.store.MarkDumpTriaged(dumpID); err != nil {
		return err
	}
	s.idx++
	return nil
}
