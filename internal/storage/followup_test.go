package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/wagnerlima/pocketnetwork/internal/models"
)

func TestCompleteFollowUpIsTerminal(t *testing.T) {
	st := setupStore(t)
	p, _ := st.CreatePerson(models.Person{Name: "Ana"})
	f, _ := st.CreateFollowUp(models.FollowUp{PersonID: p.ID, Description: "ping", DueDate: time.Now()})

	done, err := st.CompleteFollowUp(f.ID)
	if err != nil {
		t.Fatalf("CompleteFollowUp: %v", err)
	}
	if !done.Completed || done.CompletedAt == nil {
		t.Fatal("Expected completed with a timestamp")
	}
	if done.Status != models.StatusDone {
		t.Errorf("Status = %q, want done", done.Status)
	}

	first := *done.CompletedAt
	again, err := st.CompleteFollowUp(f.ID)
	if err != nil {
		t.Fatalf("Second CompleteFollowUp: %v", err)
	}
	if !again.CompletedAt.Equal(first) {
		t.Errorf("Second completion moved the timestamp: %v -> %v", first, again.CompletedAt)
	}
}

func TestSnoozeFollowUp(t *testing.T) {
	st := setupStore(t)
	p, _ := st.CreatePerson(models.Person{Name: "Ana"})
	f, _ := st.CreateFollowUp(models.FollowUp{
		PersonID:    p.ID,
		Description: "ping",
		DueDate:     time.Now().AddDate(0, 0, -5),
	})

	got, err := st.SnoozeFollowUp(f.ID, 2)
	if err != nil {
		t.Fatalf("SnoozeFollowUp: %v", err)
	}
	wantDue := time.Now().AddDate(0, 0, 2)
	if diff := got.DueDate.Sub(wantDue); diff < -time.Minute || diff > time.Minute {
		t.Errorf("DueDate = %v, want about %v", got.DueDate, wantDue)
	}
	if got.SnoozedCount != 1 {
		t.Errorf("SnoozedCount = %d, want 1", got.SnoozedCount)
	}

	got, err = st.SnoozeFollowUp(f.ID, 7)
	if err != nil {
		t.Fatalf("SnoozeFollowUp: %v", err)
	}
	if got.SnoozedCount != 2 {
		t.Errorf("SnoozedCount = %d, want 2", got.SnoozedCount)
	}
}

func TestSnoozeFollowUpRejections(t *testing.T) {
	st := setupStore(t)
	p, _ := st.CreatePerson(models.Person{Name: "Ana"})
	f, _ := st.CreateFollowUp(models.FollowUp{PersonID: p.ID, Description: "ping", DueDate: time.Now()})

	if _, err := st.SnoozeFollowUp(f.ID, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("Zero days: got %v", err)
	}

	st.CompleteFollowUp(f.ID)
	if _, err := st.SnoozeFollowUp(f.ID, 3); !errors.Is(err, ErrValidation) {
		t.Errorf("Snoozing a completed follow-up: got %v", err)
	}
}

func TestCreateFollowUpValidation(t *testing.T) {
	st := setupStore(t)
	p, _ := st.CreatePerson(models.Person{Name: "Ana"})

	if _, err := st.CreateFollowUp(models.FollowUp{Description: "x", DueDate: time.Now()}); !errors.Is(err, ErrValidation) {
		t.Errorf("Missing person: got %v", err)
	}
	if _, err := st.CreateFollowUp(models.FollowUp{PersonID: p.ID, Description: "x"}); !errors.Is(err, ErrValidation) {
		t.Errorf("Missing due date: got %v", err)
	}
}

func TestCompletePromiseIsTerminal(t *testing.T) {
	st := setupStore(t)
	p, _ := st.CreatePerson(models.Person{Name: "Ana"})
	pr, err := st.CreatePromise(models.Promise{PersonID: p.ID, Verb: models.VerbIntro, Description: "intro to Bruno"})
	if err != nil {
		t.Fatalf("CreatePromise: %v", err)
	}

	done, err := st.CompletePromise(pr.ID)
	if err != nil {
		t.Fatalf("CompletePromise: %v", err)
	}
	if !done.Completed || done.CompletedAt == nil {
		t.Fatal("Expected completed with a timestamp")
	}

	first := *done.CompletedAt
	again, err := st.CompletePromise(pr.ID)
	if err != nil {
		t.Fatalf("Second CompletePromise: %v", err)
	}
	if !again.CompletedAt.Equal(first) {
		t.Error("Second completion moved the timestamp")
	}
}

func TestPendingPromisesOrder(t *testing.T) {
	st := setupStore(t)
	p, _ := st.CreatePerson(models.Person{Name: "Ana"})

	later := time.Now().AddDate(0, 0, 5)
	sooner := time.Now().AddDate(0, 0, 1)
	st.CreatePromise(models.Promise{PersonID: p.ID, Description: "undated"})
	st.CreatePromise(models.Promise{PersonID: p.ID, Description: "later", DueDate: &later})
	st.CreatePromise(models.Promise{PersonID: p.ID, Description: "sooner", DueDate: &sooner})

	promises, err := st.PendingPromises()
	if err != nil {
		t.Fatalf("PendingPromises: %v", err)
	}
	if len(promises) != 3 {
		t.Fatalf("Expected 3 promises, got %d", len(promises))
	}
	if promises[0].Description != "sooner" || promises[1].Description != "later" || promises[2].Description != "undated" {
		t.Errorf("Order = %q, %q, %q; want dated first, undated last",
			promises[0].Description, promises[1].Description, promises[2].Description)
	}
}

func TestDumpValidation(t *testing.T) {
	st := setupStore(t)

	if _, err := st.CreateDump(models.InboxDump{Type: models.DumpText}); !errors.Is(err, ErrValidation) {
		t.Errorf("Text dump without content: got %v", err)
	}
	if _, err := st.CreateDump(models.InboxDump{Type: models.DumpAudio}); !errors.Is(err, ErrValidation) {
		t.Errorf("Audio dump without attachment: got %v", err)
	}
	if _, err := st.CreateDump(models.InboxDump{Type: models.DumpPhoto, BlobURL: "blob:1"}); err != nil {
		t.Errorf("Photo dump with attachment: got %v", err)
	}
}

func TestDumpStatusTransitions(t *testing.T) {
	st := setupStore(t)

	d, err := st.CreateDump(models.InboxDump{Type: models.DumpText, Content: "met someone at the meetup"})
	if err != nil {
		t.Fatalf("CreateDump: %v", err)
	}
	if d.Status != models.DumpNew || d.Processed {
		t.Fatalf("New dump should be unprocessed with status new, got %+v", d)
	}

	got, err := st.ArchiveDump(d.ID)
	if err != nil {
		t.Fatalf("ArchiveDump: %v", err)
	}
	if got.Status != models.DumpArchived || !got.Processed || got.ProcessedAt == nil {
		t.Fatalf("Archived dump = %+v", got)
	}

	// triaged and archived are terminal for triage purposes
	if _, err := st.MarkDumpTriaged(d.ID); !errors.Is(err, ErrValidation) {
		t.Errorf("Triaging an archived dump: got %v", err)
	}

	got, err = st.RestoreDump(d.ID)
	if err != nil {
		t.Fatalf("RestoreDump: %v", err)
	}
	if got.Status != models.DumpNew || got.Processed || got.ProcessedAt != nil {
		t.Fatalf("Restored dump = %+v", got)
	}

	got, err = st.MarkDumpTriaged(d.ID)
	if err != nil {
		t.Fatalf("MarkDumpTriaged: %v", err)
	}
	if got.Status != models.DumpTriaged || !got.Processed {
		t.Fatalf("Triaged dump = %+v", got)
	}
}

func TestDumpsByStatusLimit(t *testing.T) {
	st := setupStore(t)

	for i := 0; i < 5; i++ {
		if _, err := st.CreateDump(models.InboxDump{Type: models.DumpText, Content: "note"}); err != nil {
			t.Fatalf("CreateDump: %v", err)
		}
	}

	dumps, err := st.DumpsByStatus(models.DumpNew, 3)
	if err != nil {
		t.Fatalf("DumpsByStatus: %v", err)
	}
	if len(dumps) != 3 {
		t.Errorf("Expected 3 dumps with limit, got %d", len(dumps))
	}

	count, err := st.CountDumps(models.DumpNew)
	if err != nil {
		t.Fatalf("CountDumps: %v", err)
	}
	if count != 5 {
		t.Errorf("CountDumps = %d, want 5", count)
	}
}
