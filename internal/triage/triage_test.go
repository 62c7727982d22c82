package triage

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/wagnerlima/pocketnetwork/internal/models"
	"github.com/wagnerlima/pocketnetwork/internal/storage"
)

func setupStore(t *testing.T) *storage.Store {
	t.Helper()
	dir, err := os.MkdirTemp("", "pocketnetwork-test-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	st, err := storage.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func addTextDump(t *testing.T, st *storage.Store, content string) models.InboxDump {
	t.Helper()
	d, err := st.CreateDump(models.InboxDump{Type: models.DumpText, Content: content})
	if err != nil {
		t.Fatalf("CreateDump: %v", err)
	}
	return d
}

func TestBatchSize(t *testing.T) {
	st := setupStore(t)
	for i := 0; i < 5; i++ {
		addTextDump(t, st, "note")
	}

	s, err := Start(st)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.Remaining() != BatchSize {
		t.Errorf("Remaining = %d, want %d", s.Remaining(), BatchSize)
	}
}

func TestConvertToMeet(t *testing.T) {
	st := setupStore(t)
	dump := addTextDump(t, st, "met Ana at the conf, she works on infra")

	s, _ := Start(st)
	meet, err := s.ConvertToMeet(MeetInput{Name: "Ana"})
	if err != nil {
		t.Fatalf("ConvertToMeet: %v", err)
	}

	// Person created by name.
	person, found, err := st.FindPersonByName("Ana")
	if err != nil || !found {
		t.Fatalf("Person not created: %v", err)
	}
	if meet.PersonID == nil || *meet.PersonID != person.ID {
		t.Error("Meet should reference the created person")
	}
	// Text dump content pre-fills the context, capture time is kept.
	if meet.Context != dump.Content {
		t.Errorf("Context = %q, want dump content", meet.Context)
	}
	if !meet.When.Equal(dump.CreatedAt) {
		t.Errorf("When = %v, want capture time %v", meet.When, dump.CreatedAt)
	}
	// Conversion never spawns a follow-up.
	followUps, err := st.PendingFollowUps()
	if err != nil {
		t.Fatalf("PendingFollowUps: %v", err)
	}
	if len(followUps) != 0 {
		t.Errorf("Expected no follow-ups, got %d", len(followUps))
	}

	got, err := st.GetDump(dump.ID)
	if err != nil {
		t.Fatalf("GetDump: %v", err)
	}
	if got.Status != models.DumpTriaged || !got.Processed {
		t.Errorf("Dump after triage = %+v, want triaged and processed", got)
	}
}

func TestConvertToMeetReusesExistingPerson(t *testing.T) {
	st := setupStore(t)
	existing, _ := st.CreatePerson(models.Person{Name: "Ana Silva"})
	addTextDump(t, st, "ran into ana again")

	s, _ := Start(st)
	meet, err := s.ConvertToMeet(MeetInput{Name: "ana silva"})
	if err != nil {
		t.Fatalf("ConvertToMeet: %v", err)
	}
	if meet.PersonID == nil || *meet.PersonID != existing.ID {
		t.Error("Expected the existing person to be reused")
	}

	people, _ := st.ListPeople()
	if len(people) != 1 {
		t.Errorf("People = %d, want 1", len(people))
	}
}

func TestConvertToMeetRejectsEmptyName(t *testing.T) {
	st := setupStore(t)
	dump := addTextDump(t, st, "someone interesting")

	s, _ := Start(st)
	if _, err := s.ConvertToMeet(MeetInput{Name: "  "}); !errors.Is(err, storage.ErrValidation) {
		t.Fatalf("Expected ErrValidation, got %v", err)
	}

	// Rejection leaves the dump untouched and the session on the same item.
	got, _ := st.GetDump(dump.ID)
	if got.Status != models.DumpNew {
		t.Errorf("Dump status = %q, want new", got.Status)
	}
	if cur, ok := s.Current(); !ok || cur.ID != dump.ID {
		t.Error("Session should still be on the same dump")
	}
}

func TestConvertToPromise(t *testing.T) {
	st := setupStore(t)
	person, _ := st.CreatePerson(models.Person{Name: "Ana"})
	addTextDump(t, st, "promised to send the talk link")

	due := time.Now().AddDate(0, 0, 2)
	s, _ := Start(st)
	promise, err := s.ConvertToPromise(PromiseInput{
		PersonID:    person.ID,
		Description: "send the talk link",
		Verb:        models.VerbSendLink,
		DueDate:     &due,
	})
	if err != nil {
		t.Fatalf("ConvertToPromise: %v", err)
	}
	if promise.PersonID != person.ID || promise.Verb != models.VerbSendLink {
		t.Errorf("Promise = %+v", promise)
	}

	if _, err := s.ConvertToPromise(PromiseInput{PersonID: 999, Description: "x"}); err == nil {
		t.Error("Expected error for unknown person")
	}
}

func TestAttachToPerson(t *testing.T) {
	st := setupStore(t)
	person, _ := st.CreatePerson(models.Person{Name: "Ana", Notes: "existing"})
	addTextDump(t, st, "works on developer tools now")

	s, _ := Start(st)
	got, err := s.AttachToPerson(person.ID)
	if err != nil {
		t.Fatalf("AttachToPerson: %v", err)
	}
	if got.Notes != "existing\n\nworks on developer tools now" {
		t.Errorf("Notes = %q", got.Notes)
	}
}

func TestArchiveAndResume(t *testing.T) {
	st := setupStore(t)
	first := addTextDump(t, st, "first")
	second := addTextDump(t, st, "second")

	s, _ := Start(st)
	if err := s.Archive(); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	// Triage-archive marks the dump triaged, not archived.
	got, _ := st.GetDump(first.ID)
	if got.Status != models.DumpTriaged {
		t.Errorf("Status = %q, want triaged", got.Status)
	}

	// The session advanced; the second dump is now current.
	if cur, ok := s.Current(); !ok || cur.ID != second.ID {
		t.Fatal("Expected the second dump to be current")
	}

	// Abandoning the session loses nothing: a fresh session picks up the rest.
	s2, err := Start(st)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if cur, ok := s2.Current(); !ok || cur.ID != second.ID {
		t.Error("Fresh session should resume at the untouched dump")
	}
}

func TestBatchExhaustion(t *testing.T) {
	st := setupStore(t)
	addTextDump(t, st, "only one")

	s, _ := Start(st)
	if err := s.Archive(); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if err := s.Archive(); !errors.Is(err, ErrBatchDone) {
		t.Fatalf("Expected ErrBatchDone, got %v", err)
	}
	if _, ok := s.Current(); ok {
		t.Error("Current should report exhaustion")
	}
}
