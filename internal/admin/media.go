package admin

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/procedurebuilder/internal/netx"
	"github.com/spf13/cobra"
)

// putObject is a test seam for netx.PutObject.
var putObject = netx.PutObject

func contentTypeOf(name string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

func NewMediaCommand(opts *RootOptions, open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Upload element media to object storage",
	}

	var kind string
	upload := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image or audio file and print its media key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			ct := contentTypeOf(args[0], data)

			return withBackend(cmd, opts, open, func(ctx context.Context, b Backend) error {
				key, url, err := b.MediaUploadURL(ctx, kind, ct)
				if err != nil {
					return err
				}
				if err := putObject(ctx, nil, url, ct, data); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), key)
				return nil
			})
		},
	}
	upload.Flags().StringVar(&kind, "kind", "image", "media kind (image|audio)")

	cmd.AddCommand(upload)
	return cmd
}
