package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           int64
	UserName     string
	PasswordHash []byte
	CreatedAt    time.Time
}

// RefreshToken is a server-stored, single-use token that mints new access tokens.
type RefreshToken struct {
	UserID  int64
	Token   string
	Expires time.Time
}

// Procedure is one version of a procedure. UUID is stable across versions;
// (UUID, Version) is unique.
type Procedure struct {
	ID           int64
	UUID         uuid.UUID
	Version      int
	Title        string
	Author       string
	OwnerID      int64
	CreatedAt    time.Time
	LastModified time.Time
}

type Page struct {
	ID           int64
	ProcedureID  int64
	DisplayIndex int
	CreatedAt    time.Time
	LastModified time.Time
}

type Concept struct {
	ID           int64
	UUID         uuid.UUID
	Name         string
	DisplayName  string
	Description  string
	DataType     DataType
	MimeType     string
	Constraint   string
	CreatedAt    time.Time
	LastModified time.Time
}

// ElementFields is the question template shared by Element and AbstractElement.
type ElementFields struct {
	DisplayIndex int
	ElementType  ElementType
	Choices      []string
	Question     string
	Answer       string
	Required     bool
	Image        string
	Audio        string
	Action       string
	MimeType     string
}

// Copy returns f with its own choices slice.
func (f ElementFields) Copy() ElementFields {
	if f.Choices != nil {
		f.Choices = append([]string(nil), f.Choices...)
	}
	return f
}

type Element struct {
	ID        int64
	PageID    int64
	ConceptID *int64
	ElementFields
	CreatedAt    time.Time
	LastModified time.Time
}

// AbstractElement is a reusable element template owned by a concept.
type AbstractElement struct {
	ID        int64
	ConceptID int64
	ElementFields
	CreatedAt    time.Time
	LastModified time.Time
}

// ShowIf is a visibility rule for a page. Conditions is stored as-is;
// evaluation happens on the client.
type ShowIf struct {
	ID           int64
	PageID       int64
	Conditions   string
	CreatedAt    time.Time
	LastModified time.Time
}

type Device struct {
	ID             int64
	RegistrationID string
	CreatedAt      time.Time
}

// PushEvent is an append-only record of a publish notification.
type PushEvent struct {
	ID          int64
	ProcedureID int64
	SecretKey   string
	CreatedAt   time.Time
}

// EncodeChoices renders a choice list in its stored JSON form.
func EncodeChoices(choices []string) (string, error) {
	if choices == nil {
		choices = []string{}
	}
	b, err := json.Marshal(choices)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeChoices parses the stored JSON form. An empty string yields no choices.
func DecodeChoices(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var choices []string
	if err := json.Unmarshal([]byte(s), &choices); err != nil {
		return nil, fmt.Errorf("invalid choices %q: %w", s, err)
	}
	if len(choices) == 0 {
		return nil, nil
	}
	return choices, nil
}
