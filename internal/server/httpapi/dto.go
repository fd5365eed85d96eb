package httpapi

import (
	"time"

	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/services"
	"github.com/google/uuid"
)

type credentialsRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// defaultProcedureVersion applies when a create request carries no version.
const defaultProcedureVersion = 1

type procedureRequest struct {
	UUID    string `json:"uuid" validate:"omitempty,uuid"`
	Version *int   `json:"version" validate:"omitempty,gte=0"`
	Title   string `json:"title" validate:"max=255"`
	Author  string `json:"author" validate:"max=255"`
}

func (r procedureRequest) model() *models.Procedure {
	p := &models.Procedure{Version: defaultProcedureVersion, Title: r.Title, Author: r.Author}
	if r.Version != nil {
		p.Version = *r.Version
	}
	if r.UUID != "" {
		p.UUID = uuid.MustParse(r.UUID)
	}
	return p
}

type procedurePatchRequest struct {
	Title  *string `json:"title" validate:"omitempty,max=255"`
	Author *string `json:"author" validate:"omitempty,max=255"`
}

type deepCopyRequest struct {
	LatestVersion int `json:"latest_version" validate:"gte=0"`
}

type procedureResponse struct {
	ID           int64     `json:"id"`
	UUID         string    `json:"uuid"`
	Version      int       `json:"version"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Owner        int64     `json:"owner"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
}

func newProcedureResponse(p *models.Procedure) procedureResponse {
	return procedureResponse{
		ID:           p.ID,
		UUID:         p.UUID.String(),
		Version:      p.Version,
		Title:        p.Title,
		Author:       p.Author,
		Owner:        p.OwnerID,
		CreatedAt:    p.CreatedAt,
		LastModified: p.LastModified,
	}
}

func newProcedureList(ps []*models.Procedure) []procedureResponse {
	out := make([]procedureResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, newProcedureResponse(p))
	}
	return out
}

type validateResponse struct {
	Valid        bool   `json:"valid"`
	Scope        string `json:"scope,omitempty"`
	ID           int64  `json:"id,omitempty"`
	DisplayIndex *int   `json:"display_index,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

func validationResponse(e *models.ValidationError) validateResponse {
	r := validateResponse{Scope: string(e.Scope), ID: e.ID, Reason: e.Reason}
	if e.Scope == models.ScopePage {
		idx := e.DisplayIndex
		r.DisplayIndex = &idx
	}
	return r
}

type publishResponse struct {
	Procedure    procedureResponse `json:"procedure"`
	PushEventID  int64             `json:"push_event_id"`
	PushSent     bool              `json:"push_sent"`
	PushSuccess  int               `json:"push_success"`
	PushFailure  int               `json:"push_failure"`
	PushError    string            `json:"push_error,omitempty"`
	FailedTokens []string          `json:"failed_tokens,omitempty"`
}

func newPublishResponse(r *services.PublishResult) publishResponse {
	out := publishResponse{Procedure: newProcedureResponse(r.Procedure)}
	if r.Event != nil {
		out.PushEventID = r.Event.ID
	}
	if r.PushError != nil {
		out.PushError = r.PushError.Error()
	}
	if r.Push != nil {
		out.PushSent = true
		out.PushSuccess = r.Push.SuccessCount
		out.PushFailure = r.Push.FailureCount
		out.FailedTokens = r.Push.FailedTokens
	}
	return out
}

type pageRequest struct {
	ProcedureID  int64 `json:"procedure_id" validate:"required,gt=0"`
	DisplayIndex int   `json:"display_index" validate:"gte=0"`
}

type pagePatchRequest struct {
	DisplayIndex int `json:"display_index" validate:"gte=0"`
}

type pageResponse struct {
	ID           int64     `json:"id"`
	ProcedureID  int64     `json:"procedure_id"`
	DisplayIndex int       `json:"display_index"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
}

func newPageResponse(p *models.Page) pageResponse {
	return pageResponse{
		ID:           p.ID,
		ProcedureID:  p.ProcedureID,
		DisplayIndex: p.DisplayIndex,
		CreatedAt:    p.CreatedAt,
		LastModified: p.LastModified,
	}
}

// elementFields is the editable part shared by elements and abstract elements.
type elementFields struct {
	DisplayIndex int      `json:"display_index" validate:"gte=0"`
	ElementType  string   `json:"element_type" validate:"required"`
	Choices      []string `json:"choices"`
	Question     string   `json:"question"`
	Answer       string   `json:"answer"`
	Required     bool     `json:"required"`
	Image        string   `json:"image"`
	Audio        string   `json:"audio"`
	Action       string   `json:"action"`
	MimeType     string   `json:"mime_type"`
}

func (f elementFields) model() models.ElementFields {
	return models.ElementFields{
		DisplayIndex: f.DisplayIndex,
		ElementType:  models.ElementType(f.ElementType),
		Choices:      f.Choices,
		Question:     f.Question,
		Answer:       f.Answer,
		Required:     f.Required,
		Image:        f.Image,
		Audio:        f.Audio,
		Action:       f.Action,
		MimeType:     f.MimeType,
	}
}

func newElementFields(m models.ElementFields) elementFields {
	choices := m.Choices
	if choices == nil {
		choices = []string{}
	}
	return elementFields{
		DisplayIndex: m.DisplayIndex,
		ElementType:  string(m.ElementType),
		Choices:      choices,
		Question:     m.Question,
		Answer:       m.Answer,
		Required:     m.Required,
		Image:        m.Image,
		Audio:        m.Audio,
		Action:       m.Action,
		MimeType:     m.MimeType,
	}
}

type elementRequest struct {
	PageID    int64  `json:"page_id" validate:"required,gt=0"`
	ConceptID *int64 `json:"concept_id" validate:"omitempty,gt=0"`
	elementFields
}

type elementPatchRequest struct {
	ConceptID *int64 `json:"concept_id" validate:"omitempty,gt=0"`
	elementFields
}

type elementResponse struct {
	ID        int64  `json:"id"`
	PageID    int64  `json:"page_id"`
	ConceptID *int64 `json:"concept_id"`
	elementFields
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
}

func newElementResponse(e *models.Element) elementResponse {
	return elementResponse{
		ID:            e.ID,
		PageID:        e.PageID,
		ConceptID:     e.ConceptID,
		elementFields: newElementFields(e.ElementFields),
		CreatedAt:     e.CreatedAt,
		LastModified:  e.LastModified,
	}
}

type showIfRequest struct {
	PageID     int64  `json:"page_id" validate:"required,gt=0"`
	Conditions string `json:"conditions" validate:"required"`
}

type showIfPatchRequest struct {
	Conditions string `json:"conditions" validate:"required"`
}

type showIfResponse struct {
	ID           int64     `json:"id"`
	PageID       int64     `json:"page_id"`
	Conditions   string    `json:"conditions"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
}

func newShowIfResponse(si *models.ShowIf) showIfResponse {
	return showIfResponse{
		ID:           si.ID,
		PageID:       si.PageID,
		Conditions:   si.Conditions,
		CreatedAt:    si.CreatedAt,
		LastModified: si.LastModified,
	}
}

type conceptRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	DisplayName string `json:"display_name" validate:"max=255"`
	Description string `json:"description"`
	DataType    string `json:"data_type"`
	MimeType    string `json:"mime_type"`
	Constraint  string `json:"constraint"`
}

func (r conceptRequest) model() *models.Concept {
	return &models.Concept{
		Name:        r.Name,
		DisplayName: r.DisplayName,
		Description: r.Description,
		DataType:    models.DataType(r.DataType),
		MimeType:    r.MimeType,
		Constraint:  r.Constraint,
	}
}

type conceptResponse struct {
	ID           int64     `json:"id"`
	UUID         string    `json:"uuid"`
	Name         string    `json:"name"`
	DisplayName  string    `json:"display_name"`
	Description  string    `json:"description"`
	DataType     string    `json:"data_type"`
	MimeType     string    `json:"mime_type"`
	Constraint   string    `json:"constraint"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
}

func newConceptResponse(c *models.Concept) conceptResponse {
	return conceptResponse{
		ID:           c.ID,
		UUID:         c.UUID.String(),
		Name:         c.Name,
		DisplayName:  c.DisplayName,
		Description:  c.Description,
		DataType:     string(c.DataType),
		MimeType:     c.MimeType,
		Constraint:   c.Constraint,
		CreatedAt:    c.CreatedAt,
		LastModified: c.LastModified,
	}
}

type abstractElementRequest struct {
	ConceptID int64 `json:"concept_id" validate:"required,gt=0"`
	elementFields
}

type abstractElementResponse struct {
	ID        int64 `json:"id"`
	ConceptID int64 `json:"concept_id"`
	elementFields
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
}

func newAbstractElementResponse(e *models.AbstractElement) abstractElementResponse {
	return abstractElementResponse{
		ID:            e.ID,
		ConceptID:     e.ConceptID,
		elementFields: newElementFields(e.ElementFields),
		CreatedAt:     e.CreatedAt,
		LastModified:  e.LastModified,
	}
}

type deviceRequest struct {
	RegistrationID string `json:"registration_id" validate:"required,max=255"`
}

type deviceResponse struct {
	ID             int64     `json:"id"`
	RegistrationID string    `json:"registration_id"`
	CreatedAt      time.Time `json:"created_at"`
}

type uploadRequest struct {
	Kind        string `json:"kind" validate:"required,oneof=image audio"`
	ContentType string `json:"content_type"`
}

type mediaResponse struct {
	Key string `json:"key,omitempty"`
	URL string `json:"url"`
}
