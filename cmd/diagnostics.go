package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// Diagnostic codes reported by tmk commands.
const (
	CodeReadFailure      = "TMKE001"
	CodeWriteFailure     = "TMKE002"
	CodeRoundTrip        = "TMKE003"
	CodeIngestFailure    = "TMKE004"
	CodeNotNormalized    = "TMKW001"
	severityError        = "error"
	severityWarning      = "warning"
	resultSchemaVersion  = "1"
)

// Diagnostic is a single finding attached to a command result.
type Diagnostic struct {
	Severity string `json:"severity"` // "error" | "warning"
	Code     string `json:"code"`     // e.g. "TMKE001", "TMKW001"
	Message  string `json:"message"`
	Path     string `json:"path,omitempty"`
}

// OpResult is the JSON output of a command run with --json.
type OpResult struct {
	Version     string       `json:"version"`     // "1"
	Changed     bool         `json:"changed"`     // true if any document bytes were modified
	Diagnostics []Diagnostic `json:"diagnostics"` // never null
}

func newResult(changed bool, diags []Diagnostic) OpResult {
	if diags == nil {
		diags = []Diagnostic{}
	}
	return OpResult{Version: resultSchemaVersion, Changed: changed, Diagnostics: diags}
}

// hasDiagnosticError reports whether any diagnostic in diags has error severity.
func hasDiagnosticError(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == severityError {
			return true
		}
	}
	return false
}

// printDiagnostics writes each diagnostic to stderr in human-readable form.
func printDiagnostics(cmd *cobra.Command, diags []Diagnostic) {
	for _, d := range diags {
		if d.Path != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s (%s)\n", d.Path, d.Severity, d.Message, d.Code)
			continue
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s (%s)\n", d.Severity, d.Message, d.Code)
	}
}

// report writes diags either as an OpResult on stdout (jsonMode) or as
// human-readable lines on stderr, and returns an error when any diagnostic
// is an error so the process exits non-zero.
func report(cmd *cobra.Command, jsonMode, changed bool, diags []Diagnostic) error {
	if jsonMode {
		if err := json.NewEncoder(cmd.OutOrStdout()).Encode(newResult(changed, diags)); err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
	} else {
		printDiagnostics(cmd, diags)
	}
	if hasDiagnosticError(diags) {
		return fmt.Errorf("%s reported errors", cmd.Name())
	}
	return nil
}

// emitErrorAndFail reports a single error diagnostic and returns an error
// wrapping origErr.
func emitErrorAndFail(cmd *cobra.Command, jsonMode bool, code, path string, origErr error) error {
	diags := []Diagnostic{{Severity: severityError, Code: code, Message: origErr.Error(), Path: path}}
	_ = report(cmd, jsonMode, false, diags)
	return fmt.Errorf("operation failed: %w", origErr)
}
