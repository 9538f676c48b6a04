package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/spf13/cobra"

	"github.com/eykd/tanmark-go/internal/markdown"
)

// roundTrip holds the outcome of serializing a document twice.
type roundTrip struct {
	first, second string
	sameTree      bool
}

// checkRoundTrip serializes src, re-parses the output and serializes again.
// A stable document yields the same text both times and the same tree.
func checkRoundTrip(src string) roundTrip {
	d := markdown.Parse([]byte(src))
	first := markdown.Serialize(d)
	again := markdown.Parse([]byte(first))
	return roundTrip{
		first:    first,
		second:   markdown.Serialize(again),
		sameTree: d.Equal(again),
	}
}

func (r roundTrip) ok() bool { return r.sameTree && r.first == r.second }

// unifiedDiff renders the difference between two serializations of path.
func unifiedDiff(path, from, to string) string {
	name := filepath.Base(path)
	edits := myers.ComputeEdits(span.URIFromPath(name), from, to)
	return fmt.Sprint(gotextdiff.ToUnified(name+" (pass 1)", name+" (pass 2)", from, edits))
}

// NewCheckCmd creates the check subcommand.
func NewCheckCmd(io DocumentReader) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "check <file>...",
		Short:        "Verify that documents survive a serialize/parse round trip",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonMode, _ := cmd.Flags().GetBool("json")

			var diags []Diagnostic
			for _, path := range args {
				if _, _, err := loadEnv(cmd, documentDir(path), io); err != nil {
					return err
				}
				src, err := io.ReadDocument(cmd.Context(), path)
				if err != nil {
					diags = append(diags, Diagnostic{Severity: severityError, Code: CodeReadFailure, Message: err.Error(), Path: path})
					continue
				}
				rt := checkRoundTrip(src)
				if rt.ok() {
					if src != rt.first {
						diags = append(diags, Diagnostic{Severity: severityWarning, Code: CodeNotNormalized, Message: "document is not normalized", Path: path})
					}
					continue
				}
				msg := "serialized document re-parses to a different tree"
				if rt.first != rt.second {
					msg = "serialization is not stable under re-parse"
					if !jsonMode {
						fmt.Fprint(cmd.OutOrStdout(), unifiedDiff(path, rt.first, rt.second))
					}
				}
				diags = append(diags, Diagnostic{Severity: severityError, Code: CodeRoundTrip, Message: msg, Path: path})
			}
			return report(cmd, jsonMode, false, diags)
		},
	}

	cmd.Flags().Bool("json", false, "output result as JSON")

	return cmd
}
