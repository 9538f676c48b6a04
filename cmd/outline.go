package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eykd/tanmark-go/internal/markdown"
	"github.com/eykd/tanmark-go/internal/outline"
)

// documentOutline is the outline of one document in JSON output.
type documentOutline struct {
	Path     string         `json:"path"`
	Headings []outline.Item `json:"headings"`
}

// outlineOutput is the JSON output schema for the outline command.
type outlineOutput struct {
	Version     string            `json:"version"`
	Documents   []documentOutline `json:"documents"`
	Diagnostics []Diagnostic      `json:"diagnostics"`
}

// NewOutlineCmd creates the outline subcommand.
func NewOutlineCmd(io DocumentReader) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "outline <file>...",
		Short:        "List the headings of documents",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonMode, _ := cmd.Flags().GetBool("json")
			width, _ := cmd.Flags().GetInt("name-width")

			out := outlineOutput{Version: resultSchemaVersion, Documents: []documentOutline{}, Diagnostics: []Diagnostic{}}
			for _, path := range args {
				if _, _, err := loadEnv(cmd, documentDir(path), io); err != nil {
					return err
				}
				src, err := io.ReadDocument(cmd.Context(), path)
				if err != nil {
					out.Diagnostics = append(out.Diagnostics, Diagnostic{Severity: severityError, Code: CodeReadFailure, Message: err.Error(), Path: path})
					continue
				}
				items := outline.Of(markdown.Parse([]byte(src)))
				if items == nil {
					items = []outline.Item{}
				}
				out.Documents = append(out.Documents, documentOutline{Path: path, Headings: items})
			}

			if jsonMode {
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(out); err != nil {
					return fmt.Errorf("encoding output: %w", err)
				}
			} else {
				for _, d := range out.Documents {
					renderOutline(cmd, d, width)
				}
				printDiagnostics(cmd, out.Diagnostics)
			}
			if hasDiagnosticError(out.Diagnostics) {
				return fmt.Errorf("outline reported errors")
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "output result as JSON")
	cmd.Flags().Int("name-width", outline.DefaultMaxLength, "maximum width of file names in headers")

	return cmd
}

func renderOutline(cmd *cobra.Command, d documentOutline, width int) {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, titleStyle.Render(outline.TruncateFileName(filepath.Base(d.Path), width)))
	if len(d.Headings) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  (no headings)"))
		return
	}
	for _, it := range d.Headings {
		indent := strings.Repeat("  ", it.Level)
		fmt.Fprintf(w, "%s%s %s\n", indent, headingStyle.Render(it.Text), dimStyle.Render(fmt.Sprintf("@%d", it.Pos)))
	}
}
