package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/wagnerlima/pocketnetwork/internal/models"
	"github.com/wagnerlima/pocketnetwork/internal/reconcile"
	"github.com/wagnerlima/pocketnetwork/internal/storage"
)

// CSVTables lists the tables CSV export covers, in export order.
var CSVTables = []storage.Table{
	storage.TablePeople,
	storage.TableMeets,
	storage.TableEvents,
	storage.TableFollowUps,
	storage.TablePromises,
	storage.TableInboxDumps,
}

// CSV renders one table as an RFC 4180 document with a header row.
// Multi-valued fields are joined with ';' inside a single cell and the
// csv writer handles any quoting.
func CSV(st *storage.Store, table storage.Table) (string, error) {
	var rows [][]string
	switch table {
	case storage.TablePeople:
		people, err := st.ListPeople()
		if err != nil {
			return "", err
		}
		rows = append(rows, []string{"id", "name", "pronouns", "company", "role", "linkedInUrl", "notes", "tags", "createdAt", "updatedAt"})
		for _, p := range people {
			rows = append(rows, []string{
				id(p.ID), p.Name, p.Pronouns, p.Company, p.Role, p.LinkedInURL, p.Notes,
				strings.Join(p.Tags, ";"), stamp(p.CreatedAt), stamp(p.UpdatedAt),
			})
		}
	case storage.TableMeets:
		meets, err := st.ListMeets()
		if err != nil {
			return "", err
		}
		rows = append(rows, []string{"id", "personId", "eventId", "when", "where", "context", "nextStep", "nextStepType", "topics", "energy", "isDraft", "needsRefining", "createdAt", "updatedAt"})
		for _, m := range meets {
			rows = append(rows, []string{
				id(m.ID), idPtr(m.PersonID), idPtr(m.EventID), stamp(m.When), m.Where, m.Context,
				m.NextStep, string(m.NextStepType), strings.Join(m.Topics, ";"), string(m.Energy),
				boolCell(m.IsDraft), boolCell(m.NeedsRefining), stamp(m.CreatedAt), stamp(m.UpdatedAt),
			})
		}
	case storage.TableEvents:
		events, err := st.ListEvents()
		if err != nil {
			return "", err
		}
		rows = append(rows, []string{"id", "name", "date", "location", "series", "notes", "createdAt", "updatedAt"})
		for _, e := range events {
			rows = append(rows, []string{
				id(e.ID), e.Name, stamp(e.Date), e.Location, e.Series, e.Notes,
				stamp(e.CreatedAt), stamp(e.UpdatedAt),
			})
		}
	case storage.TableFollowUps:
		followUps, err := st.ListFollowUps()
		if err != nil {
			return "", err
		}
		rows = append(rows, []string{"id", "meetId", "personId", "description", "dueDate", "status", "priority", "completed", "snoozedUntil", "draftTone", "createdAt", "updatedAt"})
		for _, f := range followUps {
			rows = append(rows, []string{
				id(f.ID), idPtr(f.MeetID), id(f.PersonID), f.Description, stamp(f.DueDate),
				string(f.Status), string(f.Priority), boolCell(f.Completed),
				stampPtr(f.SnoozedUntil), string(f.DraftTone), stamp(f.CreatedAt), stamp(f.UpdatedAt),
			})
		}
	case storage.TablePromises:
		promises, err := st.ListPromises()
		if err != nil {
			return "", err
		}
		rows = append(rows, []string{"id", "personId", "meetId", "verb", "description", "dueDate", "status", "completed", "createdAt"})
		for _, p := range promises {
			rows = append(rows, []string{
				id(p.ID), id(p.PersonID), idPtr(p.MeetID), string(p.Verb), p.Description,
				stampPtr(p.DueDate), string(p.Status), boolCell(p.Completed), stamp(p.CreatedAt),
			})
		}
	case storage.TableInboxDumps:
		dumps, err := st.ListDumps()
		if err != nil {
			return "", err
		}
		rows = append(rows, []string{"id", "type", "content", "eventId", "status", "processed", "createdAt"})
		for _, d := range dumps {
			rows = append(rows, []string{
				id(d.ID), string(d.Type), d.Content, idPtr(d.EventID), string(d.Status),
				boolCell(d.Processed), stamp(d.CreatedAt),
			})
		}
	default:
		return "", fmt.Errorf("%w: unknown table %q", storage.ErrValidation, table)
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	w.Flush()
	return b.String(), w.Error()
}

func id(v int64) string      { return strconv.FormatInt(v, 10) }
func boolCell(v bool) string { return strconv.FormatBool(v) }

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func idPtr(v *int64) string {
	if v == nil {
		return ""
	}
	return id(*v)
}

func stampPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return stamp(*t)
}

// ColumnMapping maps person fields to zero-based CSV column indexes. -1
// means the field is absent from the file.
type ColumnMapping struct {
	Name        int
	Pronouns    int
	Company     int
	Role        int
	LinkedInURL int
	Notes       int
	Tags        int
}

// DetectColumns guesses a mapping from header names by keyword.
// Unrecognized headers are ignored.
func DetectColumns(header []string) ColumnMapping {
	m := ColumnMapping{Name: -1, Pronouns: -1, Company: -1, Role: -1, LinkedInURL: -1, Notes: -1, Tags: -1}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case m.Name == -1 && (strings.Contains(h, "name") || strings.Contains(h, "display")):
			m.Name = i
		case m.Pronouns == -1 && strings.Contains(h, "pronoun"):
			m.Pronouns = i
		case m.Company == -1 && (strings.Contains(h, "company") || strings.Contains(h, "organization")):
			m.Company = i
		case m.Role == -1 && (strings.Contains(h, "role") || strings.Contains(h, "title") || strings.Contains(h, "position")):
			m.Role = i
		case m.LinkedInURL == -1 && (strings.Contains(h, "linkedin") || strings.Contains(h, "url")):
			m.LinkedInURL = i
		case m.Notes == -1 && (strings.Contains(h, "note") || strings.Contains(h, "description")):
			m.Notes = i
		case m.Tags == -1 && strings.Contains(h, "tag"):
			m.Tags = i
		}
	}
	return m
}

// CSVImportResult summarizes a people CSV import.
type CSVImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

// ImportPeopleCSV reads a people CSV and merges each row through the
// strict duplicate rules. A nil mapping is auto-detected from the
// header row. Rows without a name are counted as errors and skipped;
// the rest of the file still imports.
func ImportPeopleCSV(st *storage.Store, r io.Reader, mapping *ColumnMapping) (*CSVImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) > 0 {
		if mapping == nil {
			m := DetectColumns(records[0])
			mapping = &m
		}
		records = records[1:]
	}
	if mapping == nil {
		return &CSVImportResult{}, nil
	}

	res := &CSVImportResult{}
	for _, rec := range records {
		cell := func(idx int) string {
			if idx < 0 || idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}

		candidate := models.Person{
			Name:        cell(mapping.Name),
			Pronouns:    cell(mapping.Pronouns),
			Company:     cell(mapping.Company),
			Role:        cell(mapping.Role),
			LinkedInURL: cell(mapping.LinkedInURL),
			Notes:       cell(mapping.Notes),
		}
		if tags := cell(mapping.Tags); tags != "" {
			for _, t := range strings.Split(tags, ";") {
				if t = strings.TrimSpace(t); t != "" {
					candidate.Tags = append(candidate.Tags, t)
				}
			}
		}
		if candidate.Name == "" {
			res.Errors++
			continue
		}

		existing, err := st.ListPeople()
		if err != nil {
			return nil, err
		}
		if match := reconcile.FindCSVMatch(candidate, existing); match != nil {
			if _, err := st.ReplacePerson(match.ID, reconcile.Merge(*match, candidate)); err != nil {
				res.Errors++
				continue
			}
			res.Updated++
		} else {
			if _, err := st.CreatePerson(candidate); err != nil {
				res.Errors++
				continue
			}
			res.Created++
		}
	}
	return res, nil
}
