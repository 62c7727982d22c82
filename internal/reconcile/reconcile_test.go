package reconcile

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wagnerlima/pocketnetwork/internal/models"
)

func TestFindMatch(t *testing.T) {
	existing := []models.Person{
		{ID: 1, Name: "Ana Silva", Company: "Acme", LinkedInURL: "https://linkedin.com/in/anasilva"},
		{ID: 2, Name: "Bruno Costa"},
		{ID: 3, Name: "Carla Mota", Company: "Globex"},
	}

	cases := []struct {
		name      string
		candidate models.Person
		wantID    int64 // 0 means no match
	}{
		{
			name:      "url match wins regardless of name",
			candidate: models.Person{Name: "A. Silva", LinkedInURL: "https://linkedin.com/in/anasilva"},
			wantID:    1,
		},
		{
			name:      "url is case sensitive",
			candidate: models.Person{LinkedInURL: "https://linkedin.com/in/AnaSilva"},
			wantID:    0,
		},
		{
			name:      "name match requires company agreement when both have one",
			candidate: models.Person{Name: "ana silva", Company: "Acme"},
			wantID:    1,
		},
		{
			name:      "same name different company is a new person",
			candidate: models.Person{Name: "Ana Silva", Company: "Globex"},
			wantID:    0,
		},
		{
			name:      "one-sided company is ambiguous",
			candidate: models.Person{Name: "Ana Silva"},
			wantID:    0,
		},
		{
			name:      "name alone matches when neither has a company",
			candidate: models.Person{Name: "BRUNO COSTA"},
			wantID:    2,
		},
		{
			name:      "empty candidate name never matches",
			candidate: models.Person{Name: "  "},
			wantID:    0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			match := FindMatch(tc.candidate, existing)
			switch {
			case tc.wantID == 0 && match != nil:
				t.Errorf("Expected no match, got id %d", match.ID)
			case tc.wantID != 0 && match == nil:
				t.Errorf("Expected match id %d, got none", tc.wantID)
			case tc.wantID != 0 && match.ID != tc.wantID:
				t.Errorf("Matched id %d, want %d", match.ID, tc.wantID)
			}
		})
	}
}

func TestFindCSVMatchRequiresCompany(t *testing.T) {
	existing := []models.Person{
		{ID: 1, Name: "Sam Jones", Company: "Acme"},
		{ID: 2, Name: "Sam Jones"},
	}

	// Both name and company must be present and agree.
	if m := FindCSVMatch(models.Person{Name: "sam jones", Company: "acme"}, existing); m == nil || m.ID != 1 {
		t.Errorf("Expected match on id 1, got %v", m)
	}
	if m := FindCSVMatch(models.Person{Name: "Sam Jones"}, existing); m != nil {
		t.Errorf("Companyless row should not match, got id %d", m.ID)
	}
	if m := FindCSVMatch(models.Person{Name: "Sam Jones", Company: "Globex"}, existing); m != nil {
		t.Errorf("Different company should not match, got id %d", m.ID)
	}
}

func TestMerge(t *testing.T) {
	existing := models.Person{
		ID:      7,
		Name:    "Ana Silva",
		Company: "Acme",
		Notes:   "old notes",
		Tags:    []string{"go"},
	}
	incoming := models.Person{
		ID:            99,
		Name:          "Ana Silva",
		Role:          "CTO",
		Notes:         "new notes",
		NeedsRefining: true,
	}

	got := Merge(existing, incoming)
	want := models.Person{
		ID:            7,
		Name:          "Ana Silva",
		Company:       "Acme", // empty incoming field keeps stored value
		Role:          "CTO",
		Notes:         "new notes", // notes follow last-write-wins
		Tags:          []string{"go"},
		NeedsRefining: true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge mismatch (-want +got):\n%s", diff)
	}
}
