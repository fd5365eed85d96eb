package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"maps"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/procedurebuilder/internal/common"
	"github.com/dmitrijs2005/procedurebuilder/internal/dbx"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/abstractelements"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/concepts"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/devices"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/elements"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/pages"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/procedures"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/pushevents"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/showifs"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory stand-in for the database. Rows are stored by
// value so callers cannot alias them.
type memStore struct {
	nextID     int64
	users      map[int64]models.User
	refresh    map[string]models.RefreshToken
	procedures map[int64]models.Procedure
	pages      map[int64]models.Page
	elements   map[int64]models.Element
	showIfs    map[int64]models.ShowIf
	concepts   map[int64]models.Concept
	abstract   map[int64]models.AbstractElement
	devices    map[string]models.Device
	events     []models.PushEvent

	touches []string
	locks   []uuid.UUID

	// failElementCreateAfter makes the n-th element insert fail.
	failElementCreateAfter int
	elementCreates         int

	// onBegin runs when a transaction opened through newMemTxDB begins.
	onBegin func()
}

// memData is the part of memStore a rollback restores.
type memData struct {
	nextID     int64
	users      map[int64]models.User
	refresh    map[string]models.RefreshToken
	procedures map[int64]models.Procedure
	pages      map[int64]models.Page
	elements   map[int64]models.Element
	showIfs    map[int64]models.ShowIf
	concepts   map[int64]models.Concept
	abstract   map[int64]models.AbstractElement
	devices    map[string]models.Device
	events     []models.PushEvent
}

func (s *memStore) snapshot() memData {
	return memData{
		nextID:     s.nextID,
		users:      maps.Clone(s.users),
		refresh:    maps.Clone(s.refresh),
		procedures: maps.Clone(s.procedures),
		pages:      maps.Clone(s.pages),
		elements:   maps.Clone(s.elements),
		showIfs:    maps.Clone(s.showIfs),
		concepts:   maps.Clone(s.concepts),
		abstract:   maps.Clone(s.abstract),
		devices:    maps.Clone(s.devices),
		events:     slices.Clone(s.events),
	}
}

func (s *memStore) restore(d memData) {
	s.nextID = d.nextID
	s.users, s.refresh, s.procedures = d.users, d.refresh, d.procedures
	s.pages, s.elements, s.showIfs = d.pages, d.elements, d.showIfs
	s.concepts, s.abstract, s.devices = d.concepts, d.abstract, d.devices
	s.events = d.events
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[int64]models.User{},
		refresh:    map[string]models.RefreshToken{},
		procedures: map[int64]models.Procedure{},
		pages:      map[int64]models.Page{},
		elements:   map[int64]models.Element{},
		showIfs:    map[int64]models.ShowIf{},
		concepts:   map[int64]models.Concept{},
		abstract:   map[int64]models.AbstractElement{},
		devices:    map[string]models.Device{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type memManager struct {
	repomanager.RepositoryManager
	s *memStore
}

func (m *memManager) Users(dbx.DBTX) users.Repository                 { return memUsers{m.s} }
func (m *memManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return memRefresh{m.s} }
func (m *memManager) Procedures(dbx.DBTX) procedures.Repository       { return memProcedures{m.s} }
func (m *memManager) Pages(dbx.DBTX) pages.Repository                 { return memPages{m.s} }
func (m *memManager) Elements(dbx.DBTX) elements.Repository           { return memElements{m.s} }
func (m *memManager) ShowIfs(dbx.DBTX) showifs.Repository             { return memShowIfs{m.s} }
func (m *memManager) Concepts(dbx.DBTX) concepts.Repository           { return memConcepts{m.s} }
func (m *memManager) AbstractElements(dbx.DBTX) abstractelements.Repository {
	return memAbstract{m.s}
}
func (m *memManager) Devices(dbx.DBTX) devices.Repository       { return memDevices{m.s} }
func (m *memManager) PushEvents(dbx.DBTX) pushevents.Repository { return memEvents{m.s} }

// --- users ---

type memUsers struct{ s *memStore }

func (r memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	for _, existing := range r.s.users {
		if existing.UserName == u.UserName {
			return nil, common.ErrAlreadyExists
		}
	}
	u.ID = r.s.id()
	r.s.users[u.ID] = *u
	return u, nil
}

func (r memUsers) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	for _, u := range r.s.users {
		if u.UserName == login {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

type memRefresh struct{ s *memStore }

func (r memRefresh) Create(ctx context.Context, userID int64, token string, expires time.Time) error {
	r.s.refresh[token] = models.RefreshToken{UserID: userID, Token: token, Expires: expires}
	return nil
}

func (r memRefresh) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	t, ok := r.s.refresh[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (r memRefresh) Delete(ctx context.Context, token string) error {
	delete(r.s.refresh, token)
	return nil
}

// --- procedures ---

type memProcedures struct{ s *memStore }

func (r memProcedures) Create(ctx context.Context, p *models.Procedure) (*models.Procedure, error) {
	for _, existing := range r.s.procedures {
		if existing.UUID == p.UUID && existing.Version == p.Version {
			return nil, common.ErrDuplicateVersion
		}
	}
	p.ID = r.s.id()
	r.s.procedures[p.ID] = *p
	return p, nil
}

func (r memProcedures) Get(ctx context.Context, id int64) (*models.Procedure, error) {
	p, ok := r.s.procedures[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (r memProcedures) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Procedure, error) {
	var out []*models.Procedure
	for _, p := range r.s.procedures {
		if p.OwnerID == ownerID {
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memProcedures) ListVersions(ctx context.Context, id uuid.UUID) ([]*models.Procedure, error) {
	var out []*models.Procedure
	for _, p := range r.s.procedures {
		if p.UUID == id {
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (r memProcedures) Update(ctx context.Context, p *models.Procedure) error {
	cur, ok := r.s.procedures[p.ID]
	if !ok {
		return common.ErrorNotFound
	}
	cur.Title, cur.Author, cur.LastModified = p.Title, p.Author, p.LastModified
	r.s.procedures[p.ID] = cur
	return nil
}

func (r memProcedures) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.procedures[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.procedures, id)
	for pid, pg := range r.s.pages {
		if pg.ProcedureID == id {
			_ = memPages(r).Delete(ctx, pid)
		}
	}
	return nil
}

func (r memProcedures) Touch(ctx context.Context, id int64, at time.Time) error {
	p, ok := r.s.procedures[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.LastModified = at
	r.s.procedures[id] = p
	r.s.touches = append(r.s.touches, "procedure")
	return nil
}

func (r memProcedures) LockUUID(ctx context.Context, id uuid.UUID) error {
	r.s.locks = append(r.s.locks, id)
	return nil
}

func (r memProcedures) MaxVersion(ctx context.Context, id uuid.UUID) (int, error) {
	latest := 0
	for _, p := range r.s.procedures {
		if p.UUID == id && p.Version > latest {
			latest = p.Version
		}
	}
	return latest, nil
}

// --- pages ---

type memPages struct{ s *memStore }

func (r memPages) Create(ctx context.Context, p *models.Page) (*models.Page, error) {
	if _, ok := r.s.procedures[p.ProcedureID]; !ok {
		return nil, common.ErrorNotFound
	}
	p.ID = r.s.id()
	r.s.pages[p.ID] = *p
	return p, nil
}

func (r memPages) Get(ctx context.Context, id int64) (*models.Page, error) {
	p, ok := r.s.pages[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (r memPages) ListByProcedure(ctx context.Context, procedureID int64) ([]*models.Page, error) {
	var out []*models.Page
	for _, p := range r.s.pages {
		if p.ProcedureID == procedureID {
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memPages) Update(ctx context.Context, p *models.Page) error {
	if _, ok := r.s.pages[p.ID]; !ok {
		return common.ErrorNotFound
	}
	r.s.pages[p.ID] = *p
	return nil
}

func (r memPages) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.pages[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.pages, id)
	for eid, e := range r.s.elements {
		if e.PageID == id {
			delete(r.s.elements, eid)
		}
	}
	for sid, si := range r.s.showIfs {
		if si.PageID == id {
			delete(r.s.showIfs, sid)
		}
	}
	return nil
}

func (r memPages) Touch(ctx context.Context, id int64, at time.Time) error {
	p, ok := r.s.pages[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.LastModified = at
	r.s.pages[id] = p
	r.s.touches = append(r.s.touches, "page")
	return nil
}

// --- elements ---

type memElements struct{ s *memStore }

func (r memElements) Create(ctx context.Context, e *models.Element) (*models.Element, error) {
	r.s.elementCreates++
	if r.s.failElementCreateAfter > 0 && r.s.elementCreates >= r.s.failElementCreateAfter {
		return nil, common.ErrorInternal
	}
	if err := e.ElementType.Validate(); err != nil {
		return nil, err
	}
	if _, ok := r.s.pages[e.PageID]; !ok {
		return nil, common.ErrorNotFound
	}
	e.ID = r.s.id()
	stored := *e
	stored.ElementFields = e.ElementFields.Copy()
	r.s.elements[e.ID] = stored
	return e, nil
}

func (r memElements) Get(ctx context.Context, id int64) (*models.Element, error) {
	e, ok := r.s.elements[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	e.ElementFields = e.ElementFields.Copy()
	return &e, nil
}

func (r memElements) ListByPage(ctx context.Context, pageID int64) ([]*models.Element, error) {
	var out []*models.Element
	for _, e := range r.s.elements {
		if e.PageID == pageID {
			e.ElementFields = e.ElementFields.Copy()
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memElements) Update(ctx context.Context, e *models.Element) error {
	if _, ok := r.s.elements[e.ID]; !ok {
		return common.ErrorNotFound
	}
	r.s.elements[e.ID] = *e
	return nil
}

func (r memElements) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.elements[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.elements, id)
	return nil
}

// --- show-ifs ---

type memShowIfs struct{ s *memStore }

func (r memShowIfs) Create(ctx context.Context, si *models.ShowIf) (*models.ShowIf, error) {
	if _, ok := r.s.pages[si.PageID]; !ok {
		return nil, common.ErrorNotFound
	}
	si.ID = r.s.id()
	r.s.showIfs[si.ID] = *si
	return si, nil
}

func (r memShowIfs) Get(ctx context.Context, id int64) (*models.ShowIf, error) {
	si, ok := r.s.showIfs[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &si, nil
}

func (r memShowIfs) ListByPage(ctx context.Context, pageID int64) ([]*models.ShowIf, error) {
	var out []*models.ShowIf
	for _, si := range r.s.showIfs {
		if si.PageID == pageID {
			out = append(out, &si)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memShowIfs) Update(ctx context.Context, si *models.ShowIf) error {
	if _, ok := r.s.showIfs[si.ID]; !ok {
		return common.ErrorNotFound
	}
	r.s.showIfs[si.ID] = *si
	return nil
}

func (r memShowIfs) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.showIfs[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.showIfs, id)
	return nil
}

// --- concepts ---

type memConcepts struct{ s *memStore }

func (r memConcepts) Create(ctx context.Context, c *models.Concept) (*models.Concept, error) {
	if err := c.DataType.Validate(); err != nil {
		return nil, err
	}
	c.ID = r.s.id()
	r.s.concepts[c.ID] = *c
	return c, nil
}

func (r memConcepts) Get(ctx context.Context, id int64) (*models.Concept, error) {
	c, ok := r.s.concepts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (r memConcepts) List(ctx context.Context) ([]*models.Concept, error) {
	var out []*models.Concept
	for _, c := range r.s.concepts {
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memConcepts) Update(ctx context.Context, c *models.Concept) error {
	if _, ok := r.s.concepts[c.ID]; !ok {
		return common.ErrorNotFound
	}
	r.s.concepts[c.ID] = *c
	return nil
}

func (r memConcepts) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.concepts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.concepts, id)
	return nil
}

func (r memConcepts) Touch(ctx context.Context, id int64, at time.Time) error {
	c, ok := r.s.concepts[id]
	if !ok {
		return common.ErrorNotFound
	}
	c.LastModified = at
	r.s.concepts[id] = c
	r.s.touches = append(r.s.touches, "concept")
	return nil
}

type memAbstract struct{ s *memStore }

func (r memAbstract) Create(ctx context.Context, e *models.AbstractElement) (*models.AbstractElement, error) {
	if _, ok := r.s.concepts[e.ConceptID]; !ok {
		return nil, common.ErrorNotFound
	}
	e.ID = r.s.id()
	r.s.abstract[e.ID] = *e
	return e, nil
}

func (r memAbstract) Get(ctx context.Context, id int64) (*models.AbstractElement, error) {
	e, ok := r.s.abstract[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &e, nil
}

func (r memAbstract) ListByConcept(ctx context.Context, conceptID int64) ([]*models.AbstractElement, error) {
	var out []*models.AbstractElement
	for _, e := range r.s.abstract {
		if e.ConceptID == conceptID {
			out = append(out, &e)
		}
	}
	return out, nil
}

func (r memAbstract) Update(ctx context.Context, e *models.AbstractElement) error {
	if _, ok := r.s.abstract[e.ID]; !ok {
		return common.ErrorNotFound
	}
	r.s.abstract[e.ID] = *e
	return nil
}

func (r memAbstract) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.abstract[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.abstract, id)
	return nil
}

// --- devices & push events ---

type memDevices struct{ s *memStore }

func (r memDevices) Register(ctx context.Context, token string) (*models.Device, error) {
	if d, ok := r.s.devices[token]; ok {
		return &d, nil
	}
	d := models.Device{ID: r.s.id(), RegistrationID: token}
	r.s.devices[token] = d
	return &d, nil
}

func (r memDevices) Unregister(ctx context.Context, token string) error {
	if _, ok := r.s.devices[token]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.devices, token)
	return nil
}

func (r memDevices) List(ctx context.Context) ([]*models.Device, error) {
	var out []*models.Device
	for _, d := range r.s.devices {
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memEvents struct{ s *memStore }

func (r memEvents) Create(ctx context.Context, e *models.PushEvent) (*models.PushEvent, error) {
	e.ID = r.s.id()
	r.s.events = append(r.s.events, *e)
	return e, nil
}

func (r memEvents) ListByProcedure(ctx context.Context, procedureID int64) ([]*models.PushEvent, error) {
	var out []*models.PushEvent
	for _, e := range r.s.events {
		if e.ProcedureID == procedureID {
			out = append(out, &e)
		}
	}
	return out, nil
}

// --- transactional handle ---

// memTxDriver is a database/sql driver whose only feature is transactions:
// Begin snapshots the memStore named by the DSN and Rollback restores it.
type memTxDriver struct{}

var (
	memTxOnce   sync.Once
	memTxStores sync.Map
)

func (memTxDriver) Open(name string) (driver.Conn, error) {
	s, ok := memTxStores.Load(name)
	if !ok {
		return nil, errors.New("unknown mem store " + name)
	}
	return &memTxConn{s: s.(*memStore)}, nil
}

type memTxConn struct{ s *memStore }

func (c *memTxConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("memtx: statements not supported")
}

func (c *memTxConn) Close() error { return nil }

func (c *memTxConn) Begin() (driver.Tx, error) {
	if c.s.onBegin != nil {
		c.s.onBegin()
	}
	return &memTx{s: c.s, saved: c.s.snapshot()}, nil
}

type memTx struct {
	s     *memStore
	saved memData
}

func (t *memTx) Commit() error { return nil }

func (t *memTx) Rollback() error {
	t.s.restore(t.saved)
	return nil
}

// newMemTxDB returns a handle whose transactions commit into s or roll s
// back to its state at Begin.
func newMemTxDB(t *testing.T, s *memStore) *sql.DB {
	t.Helper()
	memTxOnce.Do(func() { sql.Register("memtx", memTxDriver{}) })
	memTxStores.Store(t.Name(), s)
	db, err := sql.Open("memtx", t.Name())
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
		memTxStores.Delete(t.Name())
	})
	return db
}

// --- helpers ---

// newTxDB returns a sqlmock handle that accepts any number of transactions.
func newTxDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func expectTx(mock sqlmock.Sqlmock, n int) {
	for i := 0; i < n; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
}

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

// seedProcedure stores a procedure with pageElems[i] elements on page i and
// one show-if on every page after the first.
func seedProcedure(s *memStore, owner int64, pageElems ...int) models.Procedure {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := models.Procedure{
		ID: s.id(), UUID: uuid.New(), Version: 1, Title: "Intake", Author: "Nurse",
		OwnerID: owner, CreatedAt: created, LastModified: created,
	}
	s.procedures[p.ID] = p

	for i, n := range pageElems {
		pg := models.Page{ID: s.id(), ProcedureID: p.ID, DisplayIndex: i, CreatedAt: created, LastModified: created}
		s.pages[pg.ID] = pg
		for j := 0; j < n; j++ {
			e := models.Element{
				ID: s.id(), PageID: pg.ID,
				ElementFields: models.ElementFields{
					DisplayIndex: j, ElementType: models.ElementRadio, Choices: []string{"yes", "no"}, Question: "Q",
				},
				CreatedAt: created, LastModified: created,
			}
			s.elements[e.ID] = e
		}
		if i > 0 {
			si := models.ShowIf{ID: s.id(), PageID: pg.ID, Conditions: `{"type":"EQUALS"}`, CreatedAt: created, LastModified: created}
			s.showIfs[si.ID] = si
		}
	}
	return p
}
