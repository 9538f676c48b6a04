package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewPasteCmd creates the paste subcommand.
func NewPasteCmd(docIO DocumentIO) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "paste <file> [text]",
		Short:        "Paste text into a document, reading stdin when no text is given",
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			var text string
			if len(args) == 2 {
				text = args[1]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				text = string(data)
			}

			changed, err := runEdit(cmd, docIO, path, func(env editEnv) error {
				return env.session.Paste(text)
			})
			return finishEdit(cmd, path, changed, err)
		},
	}

	addEditFlags(cmd)

	return cmd
}
