// Package admin implements spbctl, the operator CLI of the procedure
// builder: schema migrations, user and device provisioning, and procedure
// validation and publishing without going through the HTTP API.
package admin

import (
	"context"
	"io"

	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/services"
	"github.com/spf13/cobra"
)

// Backend is what the commands need from the server core.
type Backend interface {
	Migrate(ctx context.Context) error
	CreateUser(ctx context.Context, username, password string) (*models.User, error)
	RegisterDevice(ctx context.Context, token string) (*models.Device, error)
	ValidateProcedure(ctx context.Context, id int64) error
	PublishProcedure(ctx context.Context, owner, id int64) (*services.PublishResult, error)
	ProcedureTree(ctx context.Context, id int64) (*models.ProcedureTree, error)
	MediaUploadURL(ctx context.Context, kind, contentType string) (key, url string, err error)
	Close() error
}

// Opener builds a Backend from the global options.
type Opener func(ctx context.Context, opts *RootOptions) (Backend, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	EnvFile    string
	DSN        string

	// Stdin is read by commands that accept piped input.
	Stdin io.Reader
}

// ConfigArgs turns the global flags into arguments for config.LoadConfigFrom.
func (o *RootOptions) ConfigArgs() []string {
	var args []string
	if o.ConfigFile != "" {
		args = append(args, "-c", o.ConfigFile)
	}
	if o.EnvFile != "" {
		args = append(args, "-env", o.EnvFile)
	}
	if o.DSN != "" {
		args = append(args, "-d", o.DSN)
	}
	return args
}

// NewRootCommand creates the spbctl root command.
func NewRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "spbctl",
		Short:         "Procedure builder administration",
		Long:          "Administer a procedure builder database: migrations, users, devices and publishing.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.Stdin = cmd.InOrStdin()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "JSON config file")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env", "", "dotenv file")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "PostgreSQL DSN (overrides config)")

	cmd.AddCommand(NewMigrateCommand(opts, open))
	cmd.AddCommand(NewUserCommand(opts, open))
	cmd.AddCommand(NewDeviceCommand(opts, open))
	cmd.AddCommand(NewProcedureCommand(opts, open))
	cmd.AddCommand(NewMediaCommand(opts, open))

	return cmd
}

// withBackend opens a backend, runs fn and closes the backend.
func withBackend(cmd *cobra.Command, opts *RootOptions, open Opener, fn func(ctx context.Context, b Backend) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := open(ctx, opts)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(ctx, b)
}
