package cmd

import (
	"github.com/spf13/cobra"
)

// NewTypeCmd creates the type subcommand.
func NewTypeCmd(io DocumentIO) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "type <file> <text>",
		Short: "Type text into a document as if entered at the keyboard",
		Long: "Type text into a document one character at a time. Input rules " +
			"fire as they would while typing, so \"**bold**\" becomes bold text " +
			"and \"[ ] \" at the start of a list item makes a task list. " +
			"Newlines press Enter.",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, text := args[0], args[1]
			backspaces, _ := cmd.Flags().GetInt("backspace")

			changed, err := runEdit(cmd, io, path, func(env editEnv) error {
				for range backspaces {
					if err := env.session.Backspace(); err != nil {
						return err
					}
				}
				return env.session.TypeText(text)
			})
			return finishEdit(cmd, path, changed, err)
		},
	}

	addEditFlags(cmd)
	cmd.Flags().Int("backspace", 0, "press Backspace this many times before typing")

	return cmd
}
