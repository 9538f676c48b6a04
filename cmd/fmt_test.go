package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

const messyDoc = "Title\n=====\n\n* a\n* b\n"
const tidyDoc = "# Title\n\n- a\n- b\n"

func TestFmtCmd_RewritesDocument(t *testing.T) {
	mock := newMockDocumentIO(map[string]string{"n.md": messyDoc})
	c := NewFmtCmd(mock)
	out := new(bytes.Buffer)
	c.SetOut(out)
	c.SetErr(new(bytes.Buffer))
	c.SetArgs([]string{"n.md"})

	if err := c.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := mock.docs["n.md"]; got != tidyDoc {
		t.Errorf("document = %q, want %q", got, tidyDoc)
	}
	if !strings.Contains(out.String(), "n.md") {
		t.Errorf("stdout = %q, want formatted path", out.String())
	}
}

func TestFmtCmd_NormalizedDocumentIsNotWritten(t *testing.T) {
	mock := newMockDocumentIO(map[string]string{"n.md": tidyDoc})
	c := NewFmtCmd(mock)
	out := new(bytes.Buffer)
	c.SetOut(out)
	c.SetErr(new(bytes.Buffer))
	c.SetArgs([]string{"n.md"})

	if err := c.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mock.saved["n.md"]) != 0 {
		t.Errorf("expected no writes, got %d", len(mock.saved["n.md"]))
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestFmtCmd_CheckReportsWithoutWriting(t *testing.T) {
	mock := newMockDocumentIO(map[string]string{"a.md": messyDoc, "b.md": tidyDoc})
	c := NewFmtCmd(mock)
	errOut := new(bytes.Buffer)
	c.SetOut(new(bytes.Buffer))
	c.SetErr(errOut)
	c.SetArgs([]string{"--check", "a.md", "b.md"})

	if err := c.Execute(); err == nil {
		t.Fatal("expected error for a document that is not normalized")
	}
	if len(mock.saved) != 0 {
		t.Errorf("--check must not write, got %v", mock.saved)
	}
	if !strings.Contains(errOut.String(), "a.md") || !strings.Contains(errOut.String(), CodeNotNormalized) {
		t.Errorf("stderr = %q, want a.md reported with %s", errOut.String(), CodeNotNormalized)
	}
	if strings.Contains(errOut.String(), "b.md") {
		t.Errorf("stderr = %q, b.md is normalized", errOut.String())
	}
}

func TestFmtCmd_JSONResult(t *testing.T) {
	mock := newMockDocumentIO(map[string]string{"n.md": messyDoc})
	c := NewFmtCmd(mock)
	out := new(bytes.Buffer)
	c.SetOut(out)
	c.SetErr(new(bytes.Buffer))
	c.SetArgs([]string{"--json", "n.md"})

	if err := c.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res OpResult
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("invalid JSON %q: %v", out.String(), err)
	}
	if res.Version != "1" || !res.Changed || len(res.Diagnostics) != 0 {
		t.Errorf("result = %+v, want version 1, changed, no diagnostics", res)
	}
}

func TestFmtCmd_Failures(t *testing.T) {
	tests := []struct {
		name     string
		readErr  error
		saveErr  error
		wantCode string
	}{
		{"read failure", errors.New("boom"), nil, CodeReadFailure},
		{"write failure", nil, errors.New("disk full"), CodeWriteFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockDocumentIO(map[string]string{"n.md": messyDoc})
			mock.readErr = tt.readErr
			mock.saveErr = tt.saveErr
			c := NewFmtCmd(mock)
			out := new(bytes.Buffer)
			c.SetOut(out)
			c.SetErr(new(bytes.Buffer))
			c.SetArgs([]string{"--json", "n.md"})

			if err := c.Execute(); err == nil {
				t.Fatal("expected error")
			}
			var res OpResult
			if err := json.Unmarshal(out.Bytes(), &res); err != nil {
				t.Fatalf("invalid JSON %q: %v", out.String(), err)
			}
			if len(res.Diagnostics) != 1 || res.Diagnostics[0].Code != tt.wantCode {
				t.Errorf("diagnostics = %+v, want one %s", res.Diagnostics, tt.wantCode)
			}
		})
	}
}

func TestFmtCmd_RequiresArgs(t *testing.T) {
	c := NewFmtCmd(newMockDocumentIO(nil))
	c.SetOut(new(bytes.Buffer))
	c.SetErr(new(bytes.Buffer))
	c.SetArgs([]string{})
	if err := c.Execute(); err == nil {
		t.Error("expected error with no files")
	}
}
