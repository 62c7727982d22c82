package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wagnerlima/pocketnetwork/internal/models"
)

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "pocketnetwork-test-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// setupStore creates a fresh store in a temp directory.
func setupStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(tempDir(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestOpenCreatesDatabase(t *testing.T) {
	dir := tempDir(t)
	st, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	if _, err := os.Stat(filepath.Join(dir, "pocketnetwork.db")); err != nil {
		t.Errorf("Expected database file to exist: %v", err)
	}
}

func TestCreateAndGetPerson(t *testing.T) {
	st := setupStore(t)

	p, err := st.CreatePerson(models.Person{
		Name:    "Ana Silva",
		Company: "Acme",
		Role:    "Engineer",
		Tags:    []string{"conference", "go"},
	})
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("Expected an assigned id")
	}

	got, err := st.GetPerson(p.ID)
	if err != nil {
		t.Fatalf("GetPerson: %v", err)
	}
	if got.Name != "Ana Silva" {
		t.Errorf("Name = %q, want %q", got.Name, "Ana Silva")
	}
	if got.Company != "Acme" {
		t.Errorf("Company = %q, want %q", got.Company, "Acme")
	}
	if len(got.Tags) != 2 || got.Tags[0] != "conference" || got.Tags[1] != "go" {
		t.Errorf("Tags = %v, want [conference go]", got.Tags)
	}
}

func TestCreatePersonRequiresName(t *testing.T) {
	st := setupStore(t)

	_, err := st.CreatePerson(models.Person{Name: "   "})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Expected ErrValidation, got %v", err)
	}
}

func TestFindPersonByNameCaseInsensitive(t *testing.T) {
	st := setupStore(t)

	created, err := st.CreatePerson(models.Person{Name: "Ana Silva"})
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}

	p, found, err := st.FindPersonByName("ana silva")
	if err != nil {
		t.Fatalf("FindPersonByName: %v", err)
	}
	if !found {
		t.Fatal("Expected a match")
	}
	if p.ID != created.ID {
		t.Errorf("Matched id %d, want %d", p.ID, created.ID)
	}

	_, found, err = st.FindPersonByName("Bruno")
	if err != nil {
		t.Fatalf("FindPersonByName: %v", err)
	}
	if found {
		t.Error("Expected no match for unknown name")
	}
}

func TestUpdatePersonPartial(t *testing.T) {
	st := setupStore(t)

	p, _ := st.CreatePerson(models.Person{Name: "Ana", Company: "Acme"})

	role := "CTO"
	got, err := st.UpdatePerson(p.ID, PersonUpdate{Role: &role})
	if err != nil {
		t.Fatalf("UpdatePerson: %v", err)
	}
	if got.Role != "CTO" {
		t.Errorf("Role = %q, want %q", got.Role, "CTO")
	}
	if got.Company != "Acme" {
		t.Errorf("Company = %q, want it untouched", got.Company)
	}
}

func TestAppendPersonNotes(t *testing.T) {
	st := setupStore(t)

	p, _ := st.CreatePerson(models.Person{Name: "Ana"})

	got, err := st.AppendPersonNotes(p.ID, "met at GopherCon")
	if err != nil {
		t.Fatalf("AppendPersonNotes: %v", err)
	}
	if got.Notes != "met at GopherCon" {
		t.Errorf("Notes = %q", got.Notes)
	}

	got, err = st.AppendPersonNotes(p.ID, "loves SQLite")
	if err != nil {
		t.Fatalf("AppendPersonNotes: %v", err)
	}
	if got.Notes != "met at GopherCon\n\nloves SQLite" {
		t.Errorf("Notes = %q, want blank-line separated append", got.Notes)
	}
}

func TestDeletePersonCascades(t *testing.T) {
	st := setupStore(t)

	p, _ := st.CreatePerson(models.Person{Name: "Ana"})
	meet, followUp, err := st.CreateMeet(models.Meet{
		PersonID:     &p.ID,
		NextStepType: models.NextStepCoffee,
	}, AutoFollowUp{})
	if err != nil {
		t.Fatalf("CreateMeet: %v", err)
	}
	if followUp == nil {
		t.Fatal("Expected an auto follow-up")
	}
	promise, err := st.CreatePromise(models.Promise{PersonID: p.ID, Description: "send the deck"})
	if err != nil {
		t.Fatalf("CreatePromise: %v", err)
	}

	if err := st.DeletePerson(p.ID); err != nil {
		t.Fatalf("DeletePerson: %v", err)
	}

	if _, err := st.GetPerson(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPerson after delete = %v, want ErrNotFound", err)
	}
	if _, err := st.GetMeet(meet.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMeet after delete = %v, want ErrNotFound", err)
	}
	if _, err := st.GetFollowUp(followUp.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetFollowUp after delete = %v, want ErrNotFound", err)
	}
	if _, err := st.GetPromise(promise.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPromise after delete = %v, want ErrNotFound", err)
	}
}

func TestDeletePersonNotFound(t *testing.T) {
	st := setupStore(t)

	if err := st.DeletePerson(99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestWatchNotifiesOnMutation(t *testing.T) {
	st := setupStore(t)

	var changed []Table
	cancel := st.Watch(func(table Table) {
		changed = append(changed, table)
	})

	if _, err := st.CreatePerson(models.Person{Name: "Ana"}); err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	if len(changed) != 1 || changed[0] != TablePeople {
		t.Fatalf("changed = %v, want [people]", changed)
	}

	cancel()
	if _, err := st.CreatePerson(models.Person{Name: "Bruno"}); err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	if len(changed) != 1 {
		t.Errorf("Watcher fired after cancel: %v", changed)
	}
}

func TestSearchPeople(t *testing.T) {
	st := setupStore(t)

	ana, _ := st.CreatePerson(models.Person{Name: "Ana Silva", Company: "Acme", Notes: "kubernetes fan"})
	st.CreatePerson(models.Person{Name: "Bruno Costa", Company: "Globex"})

	results, err := st.SearchPeople("kubernetes")
	if err != nil {
		t.Fatalf("SearchPeople: %v", err)
	}
	if len(results) != 1 || results[0].ID != ana.ID {
		t.Fatalf("Expected only Ana, got %v", results)
	}

	// The index follows updates.
	notes := "prefers postgres now"
	if _, err := st.UpdatePerson(ana.ID, PersonUpdate{Notes: &notes}); err != nil {
		t.Fatalf("UpdatePerson: %v", err)
	}
	results, err = st.SearchPeople("kubernetes")
	if err != nil {
		t.Fatalf("SearchPeople: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Stale index: %v", results)
	}
}

func TestHideFollowUpUntilKeepsDueDate(t *testing.T) {
	st := setupStore(t)

	p, _ := st.CreatePerson(models.Person{Name: "Ana"})
	due := time.Now().Add(24 * time.Hour)
	f, err := st.CreateFollowUp(models.FollowUp{PersonID: p.ID, Description: "ping", DueDate: due})
	if err != nil {
		t.Fatalf("CreateFollowUp: %v", err)
	}

	until := time.Now().Add(48 * time.Hour)
	got, err := st.HideFollowUpUntil(f.ID, until)
	if err != nil {
		t.Fatalf("HideFollowUpUntil: %v", err)
	}
	if got.SnoozedUntil == nil {
		t.Fatal("Expected snoozedUntil to be set")
	}
	if !got.DueDate.Equal(f.DueDate) {
		t.Errorf("DueDate moved from %v to %v", f.DueDate, got.DueDate)
	}
}
