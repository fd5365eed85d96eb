// Package httpapi exposes the procedure builder over a JSON HTTP API built
// on fiber.
package httpapi

import (
	"context"
	"time"

	"github.com/dmitrijs2005/procedurebuilder/internal/logging"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type Users interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Authenticate(token string) (int64, error)
}

type Procedures interface {
	Create(ctx context.Context, owner int64, p *models.Procedure) (*models.Procedure, error)
	Get(ctx context.Context, owner, id int64) (*models.Procedure, error)
	List(ctx context.Context, owner int64) ([]*models.Procedure, error)
	Versions(ctx context.Context, owner, id int64) ([]*models.Procedure, error)
	Update(ctx context.Context, owner, id int64, title, author *string) (*models.Procedure, error)
	Delete(ctx context.Context, owner, id int64) error
	Tree(ctx context.Context, owner, id int64) (*models.ProcedureTree, error)
	Validate(ctx context.Context, owner, id int64) error
	DeepCopy(ctx context.Context, owner, id int64, latestVersion int) (*models.Procedure, error)
	Revise(ctx context.Context, owner, id int64) (*models.Procedure, error)
}

type Publisher interface {
	Publish(ctx context.Context, owner, id int64) (*services.PublishResult, error)
	Fetch(ctx context.Context, procedureID int64, key string) (*models.ProcedureTree, error)
}

type Pages interface {
	Create(ctx context.Context, owner, procedureID int64, displayIndex int) (*models.Page, error)
	Move(ctx context.Context, owner, id int64, displayIndex int) (*models.Page, error)
	Delete(ctx context.Context, owner, id int64) error
}

type Elements interface {
	Get(ctx context.Context, owner, id int64) (*models.Element, error)
	Create(ctx context.Context, owner int64, e *models.Element) (*models.Element, error)
	Update(ctx context.Context, owner int64, e *models.Element) (*models.Element, error)
	Delete(ctx context.Context, owner, id int64) error
}

type ShowIfs interface {
	Create(ctx context.Context, owner, pageID int64, conditions string) (*models.ShowIf, error)
	Update(ctx context.Context, owner, id int64, conditions string) (*models.ShowIf, error)
	Delete(ctx context.Context, owner, id int64) error
}

type Concepts interface {
	Create(ctx context.Context, c *models.Concept) (*models.Concept, error)
	Get(ctx context.Context, id int64) (*models.Concept, error)
	List(ctx context.Context) ([]*models.Concept, error)
	Update(ctx context.Context, c *models.Concept) (*models.Concept, error)
	Delete(ctx context.Context, id int64) error
	AbstractElements(ctx context.Context, conceptID int64) ([]*models.AbstractElement, error)
	GetAbstractElement(ctx context.Context, id int64) (*models.AbstractElement, error)
	CreateAbstractElement(ctx context.Context, e *models.AbstractElement) (*models.AbstractElement, error)
	UpdateAbstractElement(ctx context.Context, e *models.AbstractElement) (*models.AbstractElement, error)
	DeleteAbstractElement(ctx context.Context, id int64) error
}

type Devices interface {
	Register(ctx context.Context, registrationID string) (*models.Device, error)
	Unregister(ctx context.Context, registrationID string) error
}

type Media interface {
	UploadURL(ctx context.Context, kind, contentType string) (key, url string, err error)
	DownloadURL(ctx context.Context, key string) (string, error)
}

// Services is everything the handlers call into.
type Services struct {
	Users      Users
	Procedures Procedures
	Publisher  Publisher
	Pages      Pages
	Elements   Elements
	ShowIfs    ShowIfs
	Concepts   Concepts
	Devices    Devices
	Media      Media
}

type HTTPServer struct {
	address  string
	app      *fiber.App
	services Services
	validate *validator.Validate
	logger   logging.Logger
}

func NewHTTPServer(a string, l logging.Logger, s Services) *HTTPServer {
	srv := &HTTPServer{
		address:  a,
		services: s,
		validate: validator.New(),
		logger:   l.With("module", "http_server"),
	}
	srv.app = fiber.New(fiber.Config{
		AppName:               "procedurebuilder",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          srv.errorHandler,
	})
	srv.routes()
	return srv
}

// App returns the underlying fiber application.
func (s *HTTPServer) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled and then shuts the listener down.
func (s *HTTPServer) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
	return s.app.Listen(s.address)
}
