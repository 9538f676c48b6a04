package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestHasDiagnosticError(t *testing.T) {
	tests := []struct {
		name  string
		diags []Diagnostic
		want  bool
	}{
		{"nil slice", nil, false},
		{"empty slice", []Diagnostic{}, false},
		{"single error", []Diagnostic{{Severity: severityError}}, true},
		{"single warning", []Diagnostic{{Severity: severityWarning}}, false},
		{"error among warnings", []Diagnostic{
			{Severity: severityWarning},
			{Severity: severityError},
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasDiagnosticError(tt.diags); got != tt.want {
				t.Errorf("hasDiagnosticError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func newReportCmd() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	c := &cobra.Command{Use: "check"}
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	c.SetOut(out)
	c.SetErr(errOut)
	return c, out, errOut
}

func TestReport_JSONNeverNullDiagnostics(t *testing.T) {
	c, out, _ := newReportCmd()
	if err := report(c, true, true, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), `"diagnostics":[]`) {
		t.Errorf("stdout = %q, want empty diagnostics array", out.String())
	}
	var res OpResult
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.Version != "1" || !res.Changed {
		t.Errorf("result = %+v, want version 1 and changed", res)
	}
}

func TestReport_HumanOutput(t *testing.T) {
	c, out, errOut := newReportCmd()
	diags := []Diagnostic{
		{Severity: severityWarning, Code: CodeNotNormalized, Message: "document is not normalized", Path: "a.md"},
		{Severity: severityError, Code: CodeRoundTrip, Message: "unstable"},
	}
	err := report(c, false, false, diags)
	if err == nil || !strings.Contains(err.Error(), "check reported errors") {
		t.Errorf("err = %v, want check reported errors", err)
	}
	if out.Len() != 0 {
		t.Errorf("stdout = %q, want empty", out.String())
	}
	want := "a.md: warning: document is not normalized (TMKW001)\nerror: unstable (TMKE003)\n"
	if errOut.String() != want {
		t.Errorf("stderr = %q, want %q", errOut.String(), want)
	}
}

func TestReport_WarningsOnlySucceed(t *testing.T) {
	c, _, _ := newReportCmd()
	diags := []Diagnostic{{Severity: severityWarning, Code: CodeNotNormalized, Message: "x"}}
	if err := report(c, false, false, diags); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEmitErrorAndFail_WrapsOriginal(t *testing.T) {
	c, out, _ := newReportCmd()
	orig := errors.New("disk full")
	err := emitErrorAndFail(c, true, CodeWriteFailure, "n.md", orig)
	if !errors.Is(err, orig) {
		t.Errorf("err = %v, want wrapping %v", err, orig)
	}
	var res OpResult
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Code != CodeWriteFailure || res.Diagnostics[0].Path != "n.md" {
		t.Errorf("diagnostics = %+v", res.Diagnostics)
	}
}
