package cmd

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eykd/tanmark-go/internal/vault"
)

// NewImageCmd creates the image subcommand.
func NewImageCmd(io ImageIO) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "image <file> <image-file>",
		Short:        "Copy an image into the document's assets and insert it at the caret",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, imagePath := args[0], args[1]
			alt, _ := cmd.Flags().GetString("alt")
			if alt == "" {
				base := filepath.Base(imagePath)
				alt = strings.TrimSuffix(base, filepath.Ext(base))
			}

			changed, err := runEdit(cmd, io, path, func(env editEnv) error {
				ticket := env.session.BeginImageInsert()
				var ing vault.Ingested
				data, err := io.ReadImage(imagePath)
				if err == nil {
					ing, err = io.IngestImage(cmd.Context(), data, imagePath, path, env.cfg.Assets.Dir)
				}
				if cerr := env.session.CompleteImageInsert(ticket, ing, alt, err); cerr != nil {
					return cerr
				}
				if err != nil {
					return withCode(CodeIngestFailure, err)
				}
				return nil
			})
			return finishEdit(cmd, path, changed, err)
		},
	}

	addEditFlags(cmd)
	cmd.Flags().String("alt", "", "alternative text (default: image file name without extension)")

	return cmd
}
