// Package reconcile decides whether an incoming person record denotes
// an existing contact or a new one. It is pure logic over two record
// sets; the caller performs the eventual store write.
package reconcile

import (
	"strings"

	"github.com/wagnerlima/pocketnetwork/internal/models"
)

// FindMatch applies the duplicate-detection rules in order, first match
// wins:
//
//  1. Exact (case-sensitive) profile-URL equality.
//  2. Case-insensitive name equality. When both records carry a
//     company, the companies must also match; when only one does, the
//     pair is ambiguous and counts as no match.
//
// A nil return means the candidate is a new person.
func FindMatch(candidate models.Person, existing []models.Person) *models.Person {
	if url := strings.TrimSpace(candidate.LinkedInURL); url != "" {
		for i := range existing {
			if existing[i].LinkedInURL == url {
				return &existing[i]
			}
		}
	}

	name := strings.TrimSpace(candidate.Name)
	if name == "" {
		return nil
	}
	for i := range existing {
		if !strings.EqualFold(existing[i].Name, name) {
			continue
		}
		switch {
		case candidate.Company != "" && existing[i].Company != "":
			if strings.EqualFold(existing[i].Company, candidate.Company) {
				return &existing[i]
			}
		case candidate.Company == "" && existing[i].Company == "":
			return &existing[i]
		}
		// Only one side names a company: ambiguous, keep scanning.
	}
	return nil
}

// FindCSVMatch is the stricter variant used by people CSV import: the
// URL rule is unchanged, but the name rule requires both records to
// name a company and both name and company to match.
func FindCSVMatch(candidate models.Person, existing []models.Person) *models.Person {
	if url := strings.TrimSpace(candidate.LinkedInURL); url != "" {
		for i := range existing {
			if existing[i].LinkedInURL == url {
				return &existing[i]
			}
		}
	}

	name := strings.TrimSpace(candidate.Name)
	if name == "" || candidate.Company == "" {
		return nil
	}
	for i := range existing {
		if strings.EqualFold(existing[i].Name, name) &&
			existing[i].Company != "" &&
			strings.EqualFold(existing[i].Company, candidate.Company) {
			return &existing[i]
		}
	}
	return nil
}

// Merge overlays the incoming record onto the existing one: non-empty
// incoming fields overwrite, empty ones leave the stored value alone.
// Identity and creation time always come from the existing record.
// Notes follow the same overwrite rule (last write wins), keeping
// repeated imports idempotent; append-style note growth belongs to the
// triage attach action instead.
func Merge(existing, incoming models.Person) models.Person {
	out := existing

	if v := strings.TrimSpace(incoming.Name); v != "" {
		out.Name = v
	}
	if incoming.Pronouns != "" {
		out.Pronouns = incoming.Pronouns
	}
	if incoming.Company != "" {
		out.Company = incoming.Company
	}
	if incoming.Role != "" {
		out.Role = incoming.Role
	}
	if incoming.Email != "" {
		out.Email = incoming.Email
	}
	if incoming.Phone != "" {
		out.Phone = incoming.Phone
	}
	if incoming.PhotoURL != "" {
		out.PhotoURL = incoming.PhotoURL
	}
	if incoming.LinkedInURL != "" {
		out.LinkedInURL = incoming.LinkedInURL
	}
	if incoming.Notes != "" {
		out.Notes = incoming.Notes
	}
	if len(incoming.Tags) > 0 {
		out.Tags = incoming.Tags
	}
	if incoming.NeedsRefining {
		out.NeedsRefining = true
	}

	return out
}
