package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/procedurebuilder/internal/common"
	"github.com/dmitrijs2005/procedurebuilder/internal/dbx"
	"github.com/dmitrijs2005/procedurebuilder/internal/logging"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/push"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/repomanager"
)

// PublishResult is the outcome of a publish. Push is nil when delivery was
// queued or failed; PushError carries the failure, if any.
type PublishResult struct {
	Procedure *models.Procedure
	Event     *models.PushEvent
	Push      *push.Response
	PushError error
}

// PublishService turns a procedure into a new published version and notifies
// every registered device about it.
type PublishService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	procedures   *ProcedureService
	dispatcher   push.Dispatcher
	fetchURLBase string
	logger       logging.Logger
	now          func() time.Time
}

func NewPublishService(db *sql.DB, m repomanager.RepositoryManager, ps *ProcedureService, d push.Dispatcher, fetchURLBase string, l logging.Logger) *PublishService {
	return &PublishService{
		db:           db,
		repomanager:  m,
		procedures:   ps,
		dispatcher:   d,
		fetchURLBase: strings.TrimRight(fetchURLBase, "/"),
		logger:       l.With("module", "publish"),
		now:          time.Now,
	}
}

// FetchURL is where devices download the given procedure version. key is
// the secret of the push event announcing it.
func (s *PublishService) FetchURL(procedureID int64, key string) string {
	return fmt.Sprintf("%s/api/fetch/%d?key=%s", s.fetchURLBase, procedureID, url.QueryEscape(key))
}

// Fetch returns the snapshot of a published version to a device holding the
// secret of one of its push events.
func (s *PublishService) Fetch(ctx context.Context, procedureID int64, key string) (*models.ProcedureTree, error) {
	if key == "" {
		return nil, common.ErrorUnauthorized
	}
	events, err := s.repomanager.PushEvents(s.db).ListByProcedure(ctx, procedureID)
	if err != nil {
		return nil, err
	}

	ok := false
	for _, ev := range events {
		if subtle.ConstantTimeCompare([]byte(ev.SecretKey), []byte(key)) == 1 {
			ok = true
		}
	}
	if !ok {
		return nil, common.ErrorForbidden
	}
	return s.procedures.Tree(ctx, 0, procedureID)
}

// Publish validates the procedure, stores it as the next version together
// with a push event, and then notifies devices. The snapshot that is
// validated is the one copied, both read in the same transaction. A failed
// notification is logged and reported in the result; the publish itself
// still succeeds.
func (s *PublishService) Publish(ctx context.Context, owner, id int64) (*PublishResult, error) {
	res := &PublishResult{}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		src, err := s.procedures.loadTree(ctx, tx, owner, id)
		if err != nil {
			return err
		}
		if err := src.Validate(); err != nil {
			return err
		}
		tree, err := s.procedures.reviseTree(ctx, tx, src)
		if err != nil {
			return err
		}

		key, err := common.MakeRandHexString(16)
		if err != nil {
			return err
		}
		ev, err := s.repomanager.PushEvents(tx).Create(ctx, &models.PushEvent{
			ProcedureID: tree.Procedure.ID,
			SecretKey:   key,
			CreatedAt:   s.now(),
		})
		if err != nil {
			return err
		}

		res.Procedure = &tree.Procedure
		res.Event = ev
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "procedure published",
		"source_id", id, "procedure_id", res.Procedure.ID, "version", res.Procedure.Version)

	payload := push.NewProcedurePayload(res.Procedure.ID, s.FetchURL(res.Procedure.ID, res.Event.SecretKey))
	res.Push, res.PushError = s.dispatcher.Dispatch(ctx, payload)
	if res.PushError != nil {
		s.logger.Error(ctx, "push notification failed",
			"procedure_id", res.Procedure.ID, "error", res.PushError)
	}

	return res, nil
}
