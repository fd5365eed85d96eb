package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/procedurebuilder/internal/common"
	"github.com/dmitrijs2005/procedurebuilder/internal/logging"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/push"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodToken = "good-token"

type fakeUsers struct {
	registered []string
	loginErr   error
}

func (f *fakeUsers) Register(ctx context.Context, username, password string) (*models.User, error) {
	f.registered = append(f.registered, username)
	return &models.User{ID: 1, UserName: username}, nil
}

func (f *fakeUsers) Login(ctx context.Context, username, password string) (*services.TokenPair, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil
}

func (f *fakeUsers) RefreshToken(ctx context.Context, token string) (*services.TokenPair, error) {
	if token != "r" {
		return nil, common.ErrInvalidToken
	}
	return &services.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil
}

func (f *fakeUsers) Authenticate(token string) (int64, error) {
	if token != goodToken {
		return 0, common.ErrInvalidToken
	}
	return 7, nil
}

type fakeProcedures struct {
	Procedures
	err       error
	owner     int64
	tree      *models.ProcedureTree
	validate  error
	lastTitle *string
}

func (f *fakeProcedures) proc(id int64) *models.Procedure {
	return &models.Procedure{ID: id, UUID: uuid.Nil, Version: 1, Title: "Intake", OwnerID: f.owner}
}

func (f *fakeProcedures) Create(ctx context.Context, owner int64, p *models.Procedure) (*models.Procedure, error) {
	f.owner = owner
	p.ID = 1
	p.OwnerID = owner
	return p, f.err
}

func (f *fakeProcedures) Get(ctx context.Context, owner, id int64) (*models.Procedure, error) {
	f.owner = owner
	if f.err != nil {
		return nil, f.err
	}
	return f.proc(id), nil
}

func (f *fakeProcedures) Update(ctx context.Context, owner, id int64, title, author *string) (*models.Procedure, error) {
	f.lastTitle = title
	return f.proc(id), f.err
}

func (f *fakeProcedures) Validate(ctx context.Context, owner, id int64) error {
	return f.validate
}

func (f *fakeProcedures) Tree(ctx context.Context, owner, id int64) (*models.ProcedureTree, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tree, nil
}

func (f *fakeProcedures) DeepCopy(ctx context.Context, owner, id int64, latest int) (*models.Procedure, error) {
	if f.err != nil {
		return nil, f.err
	}
	p := f.proc(id + 1)
	p.Version = latest + 1
	return p, nil
}

type fakePublisher struct {
	result *services.PublishResult
	err    error
	tree   *models.ProcedureTree
}

func (f *fakePublisher) Publish(ctx context.Context, owner, id int64) (*services.PublishResult, error) {
	return f.result, f.err
}

func (f *fakePublisher) Fetch(ctx context.Context, id int64, key string) (*models.ProcedureTree, error) {
	if key == "" {
		return nil, common.ErrorUnauthorized
	}
	if key != "secret" {
		return nil, common.ErrorForbidden
	}
	return f.tree, nil
}

type fakeElements struct {
	Elements
}

func (fakeElements) Create(ctx context.Context, owner int64, e *models.Element) (*models.Element, error) {
	if err := e.ElementType.Validate(); err != nil {
		return nil, err
	}
	e.ID = 5
	return e, nil
}

func sampleTree() *models.ProcedureTree {
	return &models.ProcedureTree{
		Procedure: models.Procedure{ID: 3, Version: 2, Title: "Intake"},
		Pages: []models.PageNode{{
			Page:     models.Page{ID: 1},
			Elements: []models.Element{{ID: 10, ElementFields: models.ElementFields{ElementType: models.ElementEntry, Question: "Name"}}},
		}},
	}
}

type fixture struct {
	srv        *HTTPServer
	users      *fakeUsers
	procedures *fakeProcedures
	publisher  *fakePublisher
}

func newFixture() *fixture {
	f := &fixture{
		users:      &fakeUsers{},
		procedures: &fakeProcedures{tree: sampleTree()},
		publisher:  &fakePublisher{tree: sampleTree()},
	}
	f.srv = NewHTTPServer(":0", logging.Nop{}, Services{
		Users:      f.users,
		Procedures: f.procedures,
		Publisher:  f.publisher,
		Elements:   fakeElements{},
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string, auth bool) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+goodToken)
	}
	resp, err := f.srv.App().Test(req, -1)
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func decodeError(t *testing.T, b []byte) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(b, &e))
	return e
}

func TestHealth(t *testing.T) {
	resp, body := newFixture().do(t, http.MethodGet, "/api/health", "", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestAuthMiddleware(t *testing.T) {
	f := newFixture()

	resp, body := f.do(t, http.MethodGet, "/api/procedures/1", "", false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, decodeError(t, body).Status)

	req := httptest.NewRequest(http.MethodGet, "/api/procedures/1", nil)
	req.Header.Set("Authorization", "Bearer nope")
	resp, err := f.srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/procedures/1", "", true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(7), f.procedures.owner)
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture()

	resp, _ := f.do(t, http.MethodPost, "/api/auth/register", `{"username":"alice","password":"secret1"}`, false)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, []string{"alice"}, f.users.registered)

	resp, body := f.do(t, http.MethodPost, "/api/auth/register", `{"username":"al","password":"x"}`, false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, http.StatusBadRequest, decodeError(t, body).Status)

	resp, body = f.do(t, http.MethodPost, "/api/auth/login", `{"username":"alice","password":"secret1"}`, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"access_token":"a","refresh_token":"r"}`, string(body))

	f.users.loginErr = common.ErrorUnauthorized
	resp, _ = f.do(t, http.MethodPost, "/api/auth/login", `{"username":"alice","password":"secret1"}`, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = f.do(t, http.MethodPost, "/api/auth/refresh", `{"refresh_token":"r"}`, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"access_token":"a2","refresh_token":"r2"}`, string(body))

	resp, _ = f.do(t, http.MethodPost, "/api/auth/refresh", `{"refresh_token":"old"}`, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{err: common.ErrorNotFound, status: http.StatusNotFound, message: "not found"},
		{err: common.ErrorForbidden, status: http.StatusForbidden, message: "forbidden"},
		{err: common.ErrDuplicateVersion, status: http.StatusConflict, message: "duplicate procedure version"},
		{err: common.ErrAlreadyExists, status: http.StatusConflict, message: "already exists"},
		{err: fmt.Errorf("%w: bad", common.ErrConstraintViolation), status: http.StatusBadRequest, message: "constraint violation: bad"},
		{err: &models.ValidationError{Scope: models.ScopeProcedure, ID: 1, Reason: "does not have any pages"}, status: http.StatusUnprocessableEntity, message: "procedure 1: does not have any pages"},
		{err: errors.New("db error: boom"), status: http.StatusInternalServerError, message: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			f := newFixture()
			f.procedures.err = tt.err

			resp, body := f.do(t, http.MethodGet, "/api/procedures/1", "", true)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, ErrorResponse{Status: tt.status, Message: tt.message}, decodeError(t, body))
		})
	}
}

func TestInvalidID(t *testing.T) {
	resp, body := newFixture().do(t, http.MethodGet, "/api/procedures/abc", "", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid id", decodeError(t, body).Message)
}

func TestCreateAndPatchProcedure(t *testing.T) {
	f := newFixture()

	resp, body := f.do(t, http.MethodPost, "/api/procedures", `{"title":"Intake","author":"Nurse"}`, true)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var p procedureResponse
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, int64(7), p.Owner)
	assert.Equal(t, "Nurse", p.Author)
	assert.Equal(t, 1, p.Version)

	resp, _ = f.do(t, http.MethodPatch, "/api/procedures/1", `{"title":"Renamed"}`, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, f.procedures.lastTitle)
	assert.Equal(t, "Renamed", *f.procedures.lastTitle)
}

func TestCreateProcedure_UUIDAndVersion(t *testing.T) {
	f := newFixture()

	resp, body := f.do(t, http.MethodPost, "/api/procedures", `{"uuid":"6f1c1b7e-1d2a-4f43-9b7e-0a1b2c3d4e5f","version":0,"title":"Intake"}`, true)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var p procedureResponse
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, 0, p.Version)
	assert.Equal(t, "6f1c1b7e-1d2a-4f43-9b7e-0a1b2c3d4e5f", p.UUID)

	resp, _ = f.do(t, http.MethodPost, "/api/procedures", `{"version":-1}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/procedures", `{"uuid":"not-a-uuid"}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestValidateProcedure(t *testing.T) {
	f := newFixture()

	_, body := f.do(t, http.MethodGet, "/api/procedures/1/validate", "", true)
	assert.JSONEq(t, `{"valid":true}`, string(body))

	f.procedures.validate = &models.ValidationError{Scope: models.ScopePage, ID: 4, DisplayIndex: 0, Reason: "does not have any elements"}
	resp, body := f.do(t, http.MethodGet, "/api/procedures/1/validate", "", true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"valid":false,"scope":"page","id":4,"display_index":0,"reason":"does not have any elements"}`, string(body))
}

func TestDeepCopy(t *testing.T) {
	f := newFixture()

	resp, body := f.do(t, http.MethodPost, "/api/procedures/1/deepcopy", `{"latest_version":4}`, true)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var p procedureResponse
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, 5, p.Version)

	f.procedures.err = common.ErrDuplicateVersion
	resp, _ = f.do(t, http.MethodPost, "/api/procedures/1/deepcopy", `{"latest_version":0}`, true)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestPublishProcedure(t *testing.T) {
	f := newFixture()
	f.publisher.result = &services.PublishResult{
		Procedure: &models.Procedure{ID: 9, Version: 3, CreatedAt: time.Unix(0, 0).UTC(), LastModified: time.Unix(0, 0).UTC()},
		Event:     &models.PushEvent{ID: 2},
		PushError: errors.New("fcm down"),
	}

	resp, body := f.do(t, http.MethodPost, "/api/procedures/1/publish", "", true)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var out publishResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 3, out.Procedure.Version)
	assert.Equal(t, int64(2), out.PushEventID)
	assert.False(t, out.PushSent)
	assert.Equal(t, "fcm down", out.PushError)

	f.publisher.result.PushError = nil
	f.publisher.result.Push = &push.Response{SuccessCount: 2}
	_, body = f.do(t, http.MethodPost, "/api/procedures/1/publish", "", true)
	require.NoError(t, json.Unmarshal(body, &out))
	assert.True(t, out.PushSent)
	assert.Equal(t, 2, out.PushSuccess)

	f.publisher.err = &models.ValidationError{Scope: models.ScopeProcedure, ID: 1, Reason: "does not have any pages"}
	resp, _ = f.do(t, http.MethodPost, "/api/procedures/1/publish", "", true)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestExportProcedure(t *testing.T) {
	f := newFixture()

	resp, body := f.do(t, http.MethodGet, "/api/procedures/3/export?format=yaml", "", true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "title: Intake")

	resp, body = f.do(t, http.MethodGet, "/api/procedures/3/export", "", true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "<Procedure")

	resp, _ = f.do(t, http.MethodGet, "/api/procedures/3/export?format=pdf", "", true)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestFetchProcedure(t *testing.T) {
	f := newFixture()

	resp, body := f.do(t, http.MethodGet, "/api/fetch/3?key=secret&format=json", "", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"title": "Intake"`)

	resp, _ = f.do(t, http.MethodGet, "/api/fetch/3?key=wrong", "", false)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/fetch/3", "", false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProcedureGraph(t *testing.T) {
	resp, body := newFixture().do(t, http.MethodGet, "/api/procedures/3/graph", "", true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"nodes":[{"label":"Name","page":0}],"linear_edges":[],"conditional_edges":[]}`, string(body))
}

func TestCreateElement(t *testing.T) {
	f := newFixture()

	resp, body := f.do(t, http.MethodPost, "/api/elements", `{"page_id":1,"element_type":"RADIO","choices":["a","b"],"question":"Q"}`, true)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var e elementResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, int64(5), e.ID)
	assert.Equal(t, []string{"a", "b"}, e.Choices)

	resp, _ = f.do(t, http.MethodPost, "/api/elements", `{"page_id":1,"element_type":"SLIDER"}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/elements", `{"element_type":"ENTRY"}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
