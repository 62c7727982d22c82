package export

import (
	"strings"
	"testing"
	"time"

	"github.com/wagnerlima/pocketnetwork/internal/models"
)

func TestGenerateICS(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 30, 0, 0, time.Local)
	due := time.Date(2026, 9, 1, 18, 45, 0, 0, time.Local)

	entry := FollowUpEvent(models.FollowUp{Description: "ask about the infra; role", DueDate: due}, "Ana Silva")
	doc := GenerateICS([]CalendarEvent{entry}, now)

	for _, line := range strings.Split(strings.TrimRight(doc, "\r\n"), "\r\n") {
		if strings.ContainsAny(line, "\n") {
			t.Fatalf("Line %q contains a bare newline", line)
		}
	}

	want := []string{
		"BEGIN:VCALENDAR\r\n",
		"VERSION:2.0\r\n",
		"PRODID:-//PocketNetwork//Relationship Manager//EN\r\n",
		"SUMMARY:Follow up: Ana Silva\r\n",
		"DESCRIPTION:ask about the infra\\; role\r\n",
		"DTSTART:20260901T090000\r\n", // 09:00 local on the due date
		"DTEND:20260901T093000\r\n",   // 30 minute block
		"DTSTAMP:20260828T103000\r\n",
		"BEGIN:VALARM\r\n",
		"TRIGGER:-PT15M\r\n",
		"END:VCALENDAR\r\n",
	}
	for _, w := range want {
		if !strings.Contains(doc, w) {
			t.Errorf("Missing %q in:\n%s", strings.TrimRight(w, "\r\n"), doc)
		}
	}
	if !strings.Contains(doc, "@pocketnetwork.app\r\n") {
		t.Error("UID should carry the app domain")
	}
}

func TestEventEntryTwoHourBlock(t *testing.T) {
	date := time.Date(2026, 9, 5, 19, 0, 0, 0, time.Local)
	entry := EventEntry(models.Event{Name: "GopherCon party", Location: "Rooftop, 5th floor", Date: date})

	if entry.Alarm {
		t.Error("Plain events carry no alarm")
	}
	if entry.End.Sub(entry.Start) != 2*time.Hour {
		t.Errorf("Duration = %v, want 2h", entry.End.Sub(entry.Start))
	}

	doc := GenerateICS([]CalendarEvent{entry}, time.Now())
	if !strings.Contains(doc, "LOCATION:Rooftop\\, 5th floor\r\n") {
		t.Errorf("Location not escaped:\n%s", doc)
	}
	if strings.Contains(doc, "VALARM") {
		t.Error("No VALARM expected")
	}
}

func TestGenerateVCard(t *testing.T) {
	card := GenerateVCard(models.Person{
		Name:        "Ana Maria Silva",
		Company:     "Acme; Labs",
		Role:        "CTO",
		Email:       "ana@acme.dev",
		Phone:       "+1 555 0100",
		LinkedInURL: "https://linkedin.com/in/anasilva",
		Notes:       "met at GopherCon,\nloves SQLite",
	})

	want := []string{
		"BEGIN:VCARD\r\n",
		"VERSION:3.0\r\n",
		"N:Silva;Ana Maria;;;\r\n",
		"FN:Ana Maria Silva\r\n",
		"ORG:Acme\\; Labs\r\n",
		"TITLE:CTO\r\n",
		"EMAIL;TYPE=INTERNET:ana@acme.dev\r\n",
		"TEL;TYPE=CELL:+1 555 0100\r\n",
		"URL:https://linkedin.com/in/anasilva\r\n",
		"NOTE:met at GopherCon\\,\\nloves SQLite\r\n",
		"END:VCARD\r\n",
	}
	for _, w := range want {
		if !strings.Contains(card, w) {
			t.Errorf("Missing %q in:\n%s", strings.TrimRight(w, "\r\n"), card)
		}
	}
}

func TestGenerateVCardPhoto(t *testing.T) {
	inline := GenerateVCard(models.Person{
		Name:     "Ana",
		PhotoURL: "data:image/jpeg;base64,AAAA",
	})
	if !strings.Contains(inline, "PHOTO;ENCODING=b;TYPE=JPEG:AAAA\r\n") {
		t.Errorf("Inline photo missing:\n%s", inline)
	}

	remote := GenerateVCard(models.Person{
		Name:     "Ana",
		PhotoURL: "https://example.com/ana.jpg",
	})
	if strings.Contains(remote, "PHOTO") {
		t.Error("Remote photo URLs have no vCard representation")
	}
}

func TestGenerateVCardsBatch(t *testing.T) {
	out := GenerateVCards([]models.Person{{Name: "Ana"}, {Name: "Bruno"}})
	if strings.Count(out, "BEGIN:VCARD") != 2 {
		t.Errorf("Expected 2 cards:\n%s", out)
	}
}
