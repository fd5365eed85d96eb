package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/procedurebuilder/internal/common"
	"github.com/dmitrijs2005/procedurebuilder/internal/dbx"
	"github.com/dmitrijs2005/procedurebuilder/internal/logging"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ProcedureService manages procedures, their snapshots and revisions.
//
// An owner of 0 bypasses the ownership check; it is used by the admin CLI.
type ProcedureService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewProcedureService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *ProcedureService {
	return &ProcedureService{
		db:          db,
		repomanager: m,
		logger:      l.With("module", "procedures"),
		now:         time.Now,
	}
}

func authorize(p *models.Procedure, owner int64) error {
	if owner != 0 && p.OwnerID != owner {
		return common.ErrorForbidden
	}
	return nil
}

// Create stores a new procedure at the version given, 0 included. A zero
// UUID gets a fresh one.
func (s *ProcedureService) Create(ctx context.Context, owner int64, p *models.Procedure) (*models.Procedure, error) {
	if p.Version < 0 {
		return nil, fmt.Errorf("%w: negative version %d", common.ErrValidation, p.Version)
	}
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	now := s.now()
	p.ID = 0
	p.OwnerID = owner
	p.CreatedAt = now
	p.LastModified = now

	created, err := s.repomanager.Procedures(s.db).Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "procedure created", "procedure_id", created.ID, "uuid", created.UUID, "version", created.Version)
	return created, nil
}

func (s *ProcedureService) get(ctx context.Context, db dbx.DBTX, owner, id int64) (*models.Procedure, error) {
	p, err := s.repomanager.Procedures(db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(p, owner); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProcedureService) Get(ctx context.Context, owner, id int64) (*models.Procedure, error) {
	return s.get(ctx, s.db, owner, id)
}

func (s *ProcedureService) List(ctx context.Context, owner int64) ([]*models.Procedure, error) {
	return s.repomanager.Procedures(s.db).ListByOwner(ctx, owner)
}

// Versions lists every stored version of the procedure's UUID.
func (s *ProcedureService) Versions(ctx context.Context, owner, id int64) ([]*models.Procedure, error) {
	p, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Procedures(s.db).ListVersions(ctx, p.UUID)
}

// Update changes title and author. Nil fields are left alone.
func (s *ProcedureService) Update(ctx context.Context, owner, id int64, title, author *string) (*models.Procedure, error) {
	p, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if title != nil {
		p.Title = *title
	}
	if author != nil {
		p.Author = *author
	}
	p.LastModified = s.now()

	if err := s.repomanager.Procedures(s.db).Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes one procedure version and, by cascade, its subtree.
func (s *ProcedureService) Delete(ctx context.Context, owner, id int64) error {
	if _, err := s.Get(ctx, owner, id); err != nil {
		return err
	}
	return s.repomanager.Procedures(s.db).Delete(ctx, id)
}

// Tree loads the full snapshot of a procedure.
func (s *ProcedureService) Tree(ctx context.Context, owner, id int64) (*models.ProcedureTree, error) {
	return s.loadTree(ctx, s.db, owner, id)
}

func (s *ProcedureService) loadTree(ctx context.Context, db dbx.DBTX, owner, id int64) (*models.ProcedureTree, error) {
	p, err := s.get(ctx, db, owner, id)
	if err != nil {
		return nil, err
	}

	pages, err := s.repomanager.Pages(db).ListByProcedure(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("load pages: %w", err)
	}

	tree := &models.ProcedureTree{Procedure: *p, Pages: make([]models.PageNode, 0, len(pages))}
	elementsRepo := s.repomanager.Elements(db)
	showIfsRepo := s.repomanager.ShowIfs(db)

	for _, page := range pages {
		node := models.PageNode{Page: *page}

		elements, err := elementsRepo.ListByPage(ctx, page.ID)
		if err != nil {
			return nil, fmt.Errorf("load elements of page %d: %w", page.ID, err)
		}
		for _, e := range elements {
			node.Elements = append(node.Elements, *e)
		}

		showIfs, err := showIfsRepo.ListByPage(ctx, page.ID)
		if err != nil {
			return nil, fmt.Errorf("load show-ifs of page %d: %w", page.ID, err)
		}
		for _, si := range showIfs {
			node.ShowIfs = append(node.ShowIfs, *si)
		}

		tree.Pages = append(tree.Pages, node)
	}

	tree.Sort()
	return tree, nil
}

// Validate checks that the procedure has pages and every page has elements.
// It reports problems only; nothing is written.
func (s *ProcedureService) Validate(ctx context.Context, owner, id int64) error {
	tree, err := s.Tree(ctx, owner, id)
	if err != nil {
		return err
	}
	return tree.Validate()
}

// DeepCopy stores a copy of the procedure as version latestVersion+1.
// If that version already exists the copy fails with
// common.ErrDuplicateVersion and nothing is written.
func (s *ProcedureService) DeepCopy(ctx context.Context, owner, id int64, latestVersion int) (*models.Procedure, error) {
	var out *models.Procedure
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		src, err := s.loadTree(ctx, tx, owner, id)
		if err != nil {
			return err
		}
		copied, err := s.insertTree(ctx, tx, src, src.Clone(latestVersion+1, s.now()))
		if err != nil {
			return err
		}
		out = &copied.Procedure
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "procedure copied", "source_id", id, "procedure_id", out.ID, "version", out.Version)
	return out, nil
}

// Revise stores a copy of the procedure as the next version of its UUID.
// The version is computed inside the transaction under a per-UUID lock, so
// concurrent revisions get distinct versions.
func (s *ProcedureService) Revise(ctx context.Context, owner, id int64) (*models.Procedure, error) {
	var out *models.Procedure
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tree, err := s.revise(ctx, tx, owner, id)
		if err != nil {
			return err
		}
		out = &tree.Procedure
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "procedure revised", "source_id", id, "procedure_id", out.ID, "version", out.Version)
	return out, nil
}

func (s *ProcedureService) revise(ctx context.Context, tx dbx.DBTX, owner, id int64) (*models.ProcedureTree, error) {
	src, err := s.loadTree(ctx, tx, owner, id)
	if err != nil {
		return nil, err
	}
	return s.reviseTree(ctx, tx, src)
}

// reviseTree stores src as the next version of its UUID.
func (s *ProcedureService) reviseTree(ctx context.Context, tx dbx.DBTX, src *models.ProcedureTree) (*models.ProcedureTree, error) {
	procs := s.repomanager.Procedures(tx)
	if err := procs.LockUUID(ctx, src.Procedure.UUID); err != nil {
		return nil, err
	}
	latest, err := procs.MaxVersion(ctx, src.Procedure.UUID)
	if err != nil {
		return nil, err
	}

	return s.insertTree(ctx, tx, src, src.Clone(latest+1, s.now()))
}

// insertTree writes dst, an unsaved clone of src, and returns it with IDs
// filled in. Show-if conditions that name elements of src are rewritten to
// name their copies.
func (s *ProcedureService) insertTree(ctx context.Context, tx dbx.DBTX, src, dst *models.ProcedureTree) (*models.ProcedureTree, error) {
	p, err := s.repomanager.Procedures(tx).Create(ctx, &dst.Procedure)
	if err != nil {
		return nil, err
	}

	pagesRepo := s.repomanager.Pages(tx)
	elementsRepo := s.repomanager.Elements(tx)
	showIfsRepo := s.repomanager.ShowIfs(tx)

	copied := map[int64]int64{}
	for i := range dst.Pages {
		node := &dst.Pages[i]
		node.Page.ProcedureID = p.ID
		if _, err := pagesRepo.Create(ctx, &node.Page); err != nil {
			return nil, fmt.Errorf("copy page %d: %w", node.Page.DisplayIndex, err)
		}

		for j := range node.Elements {
			node.Elements[j].PageID = node.Page.ID
			if _, err := elementsRepo.Create(ctx, &node.Elements[j]); err != nil {
				return nil, fmt.Errorf("copy element: %w", err)
			}
			copied[src.Pages[i].Elements[j].ID] = node.Elements[j].ID
		}
	}

	// Conditions may point at elements on any page, so they go in last.
	for i := range dst.Pages {
		node := &dst.Pages[i]
		for j := range node.ShowIfs {
			si := &node.ShowIfs[j]
			si.PageID = node.Page.ID
			si.Conditions = models.RemapCriteriaElements(si.Conditions, copied)
			if _, err := showIfsRepo.Create(ctx, si); err != nil {
				return nil, fmt.Errorf("copy show-if: %w", err)
			}
		}
	}

	return dst, nil
}
