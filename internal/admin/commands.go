package admin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/procedurebuilder/internal/common"
	"github.com/dmitrijs2005/procedurebuilder/internal/filex"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/export"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
	"github.com/spf13/cobra"
)

func NewMigrateCommand(opts *RootOptions, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, opts, open, func(ctx context.Context, b Backend) error {
				if err := b.Migrate(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}
}

func NewUserCommand(opts *RootOptions, open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage builder users",
	}

	var passwordStdin bool
	create := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user; the password is prompted for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password []byte
			var err error
			if passwordStdin {
				password, err = readLine(bufio.NewReader(opts.Stdin))
			} else {
				password, err = GetPassword(cmd.ErrOrStderr())
			}
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)
			if len(password) == 0 {
				return errors.New("empty password")
			}

			return withBackend(cmd, opts, open, func(ctx context.Context, b Backend) error {
				u, err := b.CreateUser(ctx, args[0], string(password))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "user %q created with id %d\n", u.UserName, u.ID)
				return nil
			})
		},
	}
	create.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")

	cmd.AddCommand(create)
	return cmd
}

func NewDeviceCommand(opts *RootOptions, open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Manage push devices",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "register <registration-id>",
		Short: "Register a device token for push notifications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, opts, open, func(ctx context.Context, b Backend) error {
				d, err := b.RegisterDevice(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "device %d registered\n", d.ID)
				return nil
			})
		},
	})
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid procedure id %q", s)
	}
	return id, nil
}

func NewProcedureCommand(opts *RootOptions, open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "procedure",
		Short: "Validate, publish and export procedures",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <id>",
		Short: "Check that a procedure has pages and every page has elements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withBackend(cmd, opts, open, func(ctx context.Context, b Backend) error {
				err := b.ValidateProcedure(ctx, id)
				var verr *models.ValidationError
				if errors.As(err, &verr) {
					fmt.Fprintf(cmd.OutOrStdout(), "invalid: %s\n", verr.Error())
					return err
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "valid")
				return nil
			})
		},
	})

	var owner int64
	publish := &cobra.Command{
		Use:   "publish <id>",
		Short: "Publish a procedure as a new version and notify devices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withBackend(cmd, opts, open, func(ctx context.Context, b Backend) error {
				res, err := b.PublishProcedure(ctx, owner, id)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "published procedure %d as version %d (id %d)\n", id, res.Procedure.Version, res.Procedure.ID)
				switch {
				case res.PushError != nil:
					fmt.Fprintf(out, "push failed: %v\n", res.PushError)
				case res.Push != nil:
					fmt.Fprintf(out, "push sent: %d ok, %d failed\n", res.Push.SuccessCount, res.Push.FailureCount)
				default:
					fmt.Fprintln(out, "push queued")
				}
				return nil
			})
		},
	}
	publish.Flags().Int64Var(&owner, "owner", 0, "owner user id (0 skips the ownership check)")
	cmd.AddCommand(publish)

	var format, outDir string
	exportCmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Print a procedure as xml, json or yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			return withBackend(cmd, opts, open, func(ctx context.Context, b Backend) error {
				tree, err := b.ProcedureTree(ctx, id)
				if err != nil {
					return err
				}
				body, err := export.Render(tree, f)
				if err != nil {
					return err
				}
				if outDir == "" {
					_, err = cmd.OutOrStdout().Write(body)
					return err
				}
				name := fmt.Sprintf("%s-v%d.%s", tree.Procedure.UUID, tree.Procedure.Version, f)
				path, err := filex.WriteFile(outDir, name, body)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}
	exportCmd.Flags().StringVar(&format, "format", "xml", "output format (xml|json|yaml)")
	exportCmd.Flags().StringVar(&outDir, "out", "", "write into this directory instead of stdout")
	cmd.AddCommand(exportCmd)

	return cmd
}
