package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/wagnerlima/pocketnetwork/internal/models"
	"github.com/wagnerlima/pocketnetwork/internal/storage"
)

func TestCSVPeopleHeaderAndQuoting(t *testing.T) {
	st := setupStore(t)
	if _, err := st.CreatePerson(models.Person{
		Name:  `Ana "Dev" Silva`,
		Notes: "likes commas, and\nnewlines",
		Tags:  []string{"go", "sqlite"},
	}); err != nil {
		t.Fatal(err)
	}

	doc, err := CSV(st, storage.TablePeople)
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(doc)).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	wantHeader := []string{"id", "name", "pronouns", "company", "role", "linkedInUrl", "notes", "tags", "createdAt", "updatedAt"}
	if len(records) != 2 {
		t.Fatalf("Expected header + 1 row, got %d records", len(records))
	}
	for i, h := range wantHeader {
		if records[0][i] != h {
			t.Errorf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}
	row := records[1]
	if row[1] != `Ana "Dev" Silva` {
		t.Errorf("name = %q, quoting broke round-trip", row[1])
	}
	if row[6] != "likes commas, and\nnewlines" {
		t.Errorf("notes = %q", row[6])
	}
	if row[7] != "go;sqlite" {
		t.Errorf("tags = %q, want semicolon joined", row[7])
	}
}

func TestCSVTableHeaders(t *testing.T) {
	st := setupStore(t)

	want := map[storage.Table]string{
		storage.TableMeets:      "id,personId,eventId,when,where,context,nextStep,nextStepType,topics,energy,isDraft,needsRefining,createdAt,updatedAt",
		storage.TableEvents:     "id,name,date,location,series,notes,createdAt,updatedAt",
		storage.TableFollowUps:  "id,meetId,personId,description,dueDate,status,priority,completed,snoozedUntil,draftTone,createdAt,updatedAt",
		storage.TablePromises:   "id,personId,meetId,verb,description,dueDate,status,completed,createdAt",
		storage.TableInboxDumps: "id,type,content,eventId,status,processed,createdAt",
	}
	for table, header := range want {
		doc, err := CSV(st, table)
		if err != nil {
			t.Fatalf("CSV(%s): %v", table, err)
		}
		first := strings.SplitN(doc, "\n", 2)[0]
		if strings.TrimRight(first, "\r") != header {
			t.Errorf("%s header = %q, want %q", table, first, header)
		}
	}

	if _, err := CSV(st, storage.Table("bogus")); err == nil {
		t.Error("Expected error for unknown table")
	}
}

func TestDetectColumns(t *testing.T) {
	m := DetectColumns([]string{"Full Name", "Job Title", "Organization", "LinkedIn Profile", "Notes", "Tags", "Favorite Color"})
	if m.Name != 0 || m.Role != 1 || m.Company != 2 || m.LinkedInURL != 3 || m.Notes != 4 || m.Tags != 5 {
		t.Errorf("Mapping = %+v", m)
	}
	if m.Pronouns != -1 {
		t.Errorf("Pronouns should be absent, got %d", m.Pronouns)
	}
}

func TestImportPeopleCSVDedupe(t *testing.T) {
	st := setupStore(t)
	if _, err := st.CreatePerson(models.Person{Name: "Sam Jones", Company: "Acme"}); err != nil {
		t.Fatal(err)
	}

	input := strings.Join([]string{
		"name,company,role",
		"Sam Jones,Acme,CTO",     // updates the existing Sam
		"Sam Jones,Globex,",      // different company: new person
		"Sam Jones,,Advisor",     // no company: cannot safely match, new person
		",Acme,",                 // nameless row: error
		"Dana Hill,Initech,CEO",  // plain new person
	}, "\n")

	res, err := ImportPeopleCSV(st, strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("ImportPeopleCSV: %v", err)
	}
	if res.Updated != 1 || res.Created != 3 || res.Errors != 1 {
		t.Fatalf("Result = %+v, want 1 updated, 3 created, 1 error", res)
	}

	people, _ := st.ListPeople()
	if len(people) != 4 {
		t.Fatalf("People = %d, want 4", len(people))
	}
	if people[0].Role != "CTO" {
		t.Errorf("Existing Sam should have gained the role, got %q", people[0].Role)
	}
	if people[0].Company != "Acme" {
		t.Errorf("Existing Sam company = %q", people[0].Company)
	}
}

func TestImportPeopleCSVTags(t *testing.T) {
	st := setupStore(t)

	input := "name,tags\nAna,go; sqlite ;\n"
	res, err := ImportPeopleCSV(st, strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("ImportPeopleCSV: %v", err)
	}
	if res.Created != 1 {
		t.Fatalf("Result = %+v", res)
	}
	people, _ := st.ListPeople()
	if len(people[0].Tags) != 2 || people[0].Tags[0] != "go" || people[0].Tags[1] != "sqlite" {
		t.Errorf("Tags = %v, want [go sqlite]", people[0].Tags)
	}
}

func TestCSVTimestampsAreUTC(t *testing.T) {
	st := setupStore(t)
	if _, err := st.CreateEvent(models.Event{Name: "GopherCon", Date: time.Now()}); err != nil {
		t.Fatal(err)
	}

	doc, err := CSV(st, storage.TableEvents)
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(doc)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := time.Parse(time.RFC3339Nano, records[1][2]); err != nil {
		t.Errorf("date %q is not RFC 3339: %v", records[1][2], err)
	}
	if !strings.HasSuffix(records[1][2], "Z") {
		t.Errorf("date %q should be UTC", records[1][2])
	}
}
