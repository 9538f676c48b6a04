package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eykd/tanmark-go/internal/markdown"
)

// NewFmtCmd creates the fmt subcommand.
func NewFmtCmd(io DocumentIO) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "fmt <file>...",
		Short:        "Rewrite Markdown documents in normalized form",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonMode, _ := cmd.Flags().GetBool("json")
			checkOnly, _ := cmd.Flags().GetBool("check")

			var diags []Diagnostic
			changed := false
			for _, path := range args {
				_, log, err := loadEnv(cmd, documentDir(path), io)
				if err != nil {
					return err
				}
				ctx := cmd.Context()

				src, err := io.ReadDocument(ctx, path)
				if err != nil {
					diags = append(diags, Diagnostic{Severity: severityError, Code: CodeReadFailure, Message: err.Error(), Path: path})
					continue
				}
				out := markdown.Serialize(markdown.Parse([]byte(src)))
				if out == src {
					continue
				}
				if checkOnly {
					diags = append(diags, Diagnostic{Severity: severityWarning, Code: CodeNotNormalized, Message: "document is not normalized", Path: path})
					continue
				}
				if err := io.SaveDocument(ctx, path, out); err != nil {
					diags = append(diags, Diagnostic{Severity: severityError, Code: CodeWriteFailure, Message: err.Error(), Path: path})
					continue
				}
				log.Debug("formatted", "path", path)
				changed = true
				if !jsonMode {
					fmt.Fprintln(cmd.OutOrStdout(), path)
				}
			}

			if err := report(cmd, jsonMode, changed, diags); err != nil {
				return err
			}
			if checkOnly && len(diags) > 0 {
				return fmt.Errorf("%d document(s) not normalized", len(diags))
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "output result as JSON")
	cmd.Flags().Bool("check", false, "report documents that are not normalized without rewriting them")

	return cmd
}
