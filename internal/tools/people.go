package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/pocketnetwork/internal/export"
	"github.com/wagnerlima/pocketnetwork/internal/models"
	"github.com/wagnerlima/pocketnetwork/internal/storage"
)

// PeopleTools holds references needed by the contact tool handlers.
type PeopleTools struct {
	Store *storage.Store
}

// --- Input types ---

type AddPersonInput struct {
	Name        string   `json:"name" jsonschema:"Person's display name (required)"`
	Pronouns    string   `json:"pronouns,omitempty" jsonschema:"Preferred pronouns"`
	Company     string   `json:"company,omitempty" jsonschema:"Company or organization"`
	Role        string   `json:"role,omitempty" jsonschema:"Role or job title"`
	Email       string   `json:"email,omitempty" jsonschema:"Email address"`
	Phone       string   `json:"phone,omitempty" jsonschema:"Phone number"`
	LinkedInURL string   `json:"linkedin_url,omitempty" jsonschema:"Profile URL used for duplicate detection"`
	Notes       string   `json:"notes,omitempty" jsonschema:"Free-form notes"`
	Tags        []string `json:"tags,omitempty" jsonschema:"Labels for grouping and search"`
}

type UpdatePersonInput struct {
	ID          int64     `json:"id" jsonschema:"Person id"`
	Name        *string   `json:"name,omitempty" jsonschema:"New display name"`
	Pronouns    *string   `json:"pronouns,omitempty" jsonschema:"New pronouns"`
	Company     *string   `json:"company,omitempty" jsonschema:"New company"`
	Role        *string   `json:"role,omitempty" jsonschema:"New role"`
	Email       *string   `json:"email,omitempty" jsonschema:"New email"`
	Phone       *string   `json:"phone,omitempty" jsonschema:"New phone"`
	LinkedInURL *string   `json:"linkedin_url,omitempty" jsonschema:"New profile URL"`
	Notes       *string   `json:"notes,omitempty" jsonschema:"Replacement notes"`
	Tags        *[]string `json:"tags,omitempty" jsonschema:"Replacement tag list"`
	Refined     bool      `json:"refined,omitempty" jsonschema:"Clear the needs-refining flag"`
}

type PersonIDInput struct {
	ID int64 `json:"id" jsonschema:"Person id"`
}

type ListPeopleInput struct {
	NeedsRefining bool `json:"needs_refining,omitempty" jsonschema:"Only list stub contacts awaiting detail"`
}

type SearchPeopleInput struct {
	Query string `json:"query" jsonschema:"Full-text query over name, company, and notes (supports FTS5 syntax)"`
}

type ExportVCardInput struct {
	ID int64 `json:"id,omitempty" jsonschema:"Person id; omit to export every contact"`
}

// personView is a person plus their interaction history.
type personView struct {
	models.Person
	Meets     []models.Meet     `json:"meets"`
	FollowUps []models.FollowUp `json:"followUps"`
	Promises  []models.Promise  `json:"promises"`
}

// --- Handlers ---

func (t *PeopleTools) AddPerson(_ context.Context, _ *mcp.CallToolRequest, input AddPersonInput) (*mcp.CallToolResult, any, error) {
	person, err := t.Store.CreatePerson(models.Person{
		Name:        input.Name,
		Pronouns:    input.Pronouns,
		Company:     input.Company,
		Role:        input.Role,
		Email:       input.Email,
		Phone:       input.Phone,
		LinkedInURL: input.LinkedInURL,
		Notes:       input.Notes,
		Tags:        input.Tags,
	})
	if err != nil {
		return toolError("Failed to add person: %v", err), nil, nil
	}
	return toolJSON(person)
}

func (t *PeopleTools) UpdatePerson(_ context.Context, _ *mcp.CallToolRequest, input UpdatePersonInput) (*mcp.CallToolResult, any, error) {
	upd := storage.PersonUpdate{
		Name:        input.Name,
		Pronouns:    input.Pronouns,
		Company:     input.Company,
		Role:        input.Role,
		Email:       input.Email,
		Phone:       input.Phone,
		LinkedInURL: input.LinkedInURL,
		Notes:       input.Notes,
		Tags:        input.Tags,
	}
	if input.Refined {
		refined := false
		upd.NeedsRefining = &refined
	}

	person, err := t.Store.UpdatePerson(input.ID, upd)
	if err != nil {
		return toolError("Failed to update person: %v", err), nil, nil
	}
	return toolJSON(person)
}

func (t *PeopleTools) GetPerson(_ context.Context, _ *mcp.CallToolRequest, input PersonIDInput) (*mcp.CallToolResult, any, error) {
	person, err := t.Store.GetPerson(input.ID)
	if err != nil {
		return toolError("Failed to get person: %v", err), nil, nil
	}

	view := personView{Person: person}
	if view.Meets, err = t.Store.MeetsByPerson(person.ID); err != nil {
		return toolError("Failed to load meets: %v", err), nil, nil
	}
	if view.FollowUps, err = t.Store.FollowUpsByPerson(person.ID); err != nil {
		return toolError("Failed to load follow-ups: %v", err), nil, nil
	}
	if view.Promises, err = t.Store.PromisesByPerson(person.ID); err != nil {
		return toolError("Failed to load promises: %v", err), nil, nil
	}
	return toolJSON(view)
}

func (t *PeopleTools) ListPeople(_ context.Context, _ *mcp.CallToolRequest, input ListPeopleInput) (*mcp.CallToolResult, any, error) {
	var (
		people []models.Person
		err    error
	)
	if input.NeedsRefining {
		people, err = t.Store.PeopleNeedingRefining()
	} else {
		people, err = t.Store.ListPeople()
	}
	if err != nil {
		return toolError("Failed to list people: %v", err), nil, nil
	}
	if people == nil {
		people = []models.Person{}
	}
	return toolJSON(people)
}

func (t *PeopleTools) SearchPeople(_ context.Context, _ *mcp.CallToolRequest, input SearchPeopleInput) (*mcp.CallToolResult, any, error) {
	if input.Query == "" {
		return toolError("Search query is required"), nil, nil
	}
	people, err := t.Store.SearchPeople(input.Query)
	if err != nil {
		return toolError("Search failed: %v", err), nil, nil
	}
	if people == nil {
		people = []models.Person{}
	}
	return toolJSON(people)
}

func (t *PeopleTools) DeletePerson(_ context.Context, _ *mcp.CallToolRequest, input PersonIDInput) (*mcp.CallToolResult, any, error) {
	if err := t.Store.DeletePerson(input.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return toolError("Person %d not found", input.ID), nil, nil
		}
		return toolError("Failed to delete person: %v", err), nil, nil
	}
	return toolText(fmt.Sprintf("Person %d and their meets, follow-ups, and promises deleted.", input.ID)), nil, nil
}

func (t *PeopleTools) ExportVCard(_ context.Context, _ *mcp.CallToolRequest, input ExportVCardInput) (*mcp.CallToolResult, any, error) {
	if input.ID != 0 {
		person, err := t.Store.GetPerson(input.ID)
		if err != nil {
			return toolError("Failed to get person: %v", err), nil, nil
		}
		return toolText(export.GenerateVCard(person)), nil, nil
	}

	people, err := t.Store.ListPeople()
	if err != nil {
		return toolError("Failed to list people: %v", err), nil, nil
	}
	return toolText(export.GenerateVCards(people)), nil, nil
}
