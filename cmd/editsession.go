package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eykd/tanmark-go/internal/autosave"
	"github.com/eykd/tanmark-go/internal/config"
	"github.com/eykd/tanmark-go/internal/doc"
	"github.com/eykd/tanmark-go/internal/editor"
	"github.com/eykd/tanmark-go/internal/transform"
)

// codedError carries the diagnostic code a failure is reported under.
type codedError struct {
	code string
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func withCode(code string, err error) error {
	return &codedError{code: code, err: err}
}

// saveFunc adapts DocumentIO.SaveDocument to autosave.Writer.
type saveFunc func(ctx context.Context, path, markdown string) error

func (f saveFunc) Save(ctx context.Context, path, markdown string) error { return f(ctx, path, markdown) }

// editEnv is what an edit action gets to work with.
type editEnv struct {
	session *editor.Session
	cfg     *config.Config
}

// caretAt returns the caret for --at: a negative position means the end of
// the document.
func caretAt(d *doc.Node, at int) transform.TextSelection {
	if at < 0 {
		return transform.Near(d, d.ContentSize(), transform.BiasBefore)
	}
	return transform.Near(d, min(at, d.ContentSize()), transform.BiasAfter)
}

// addEditFlags registers the flags shared by commands that edit a document.
func addEditFlags(cmd *cobra.Command) {
	cmd.Flags().Int("at", -1, "caret position to edit at (default: end of document)")
	cmd.Flags().Bool("stdout", false, "print the edited document instead of writing it")
	cmd.Flags().Bool("json", false, "output result as JSON")
}

// runEdit opens the document at path in an editor session, runs action and
// persists the result. With autosave enabled every published version goes
// through the debounced saver; otherwise the final document is written once.
// It reports whether the document text changed.
func runEdit(cmd *cobra.Command, io DocumentIO, path string, action func(env editEnv) error) (bool, error) {
	cfg, log, err := loadEnv(cmd, documentDir(path), io)
	if err != nil {
		return false, err
	}
	ctx := cmd.Context()

	src, err := io.ReadDocument(ctx, path)
	if err != nil {
		return false, withCode(CodeReadFailure, err)
	}
	s := editor.Open(src, editor.WithLogger(log))
	at, _ := cmd.Flags().GetInt("at")
	if err := s.SetSelection(caretAt(s.Doc(), at)); err != nil {
		return false, fmt.Errorf("placing caret: %w", err)
	}
	env := editEnv{session: s, cfg: cfg}

	toStdout, _ := cmd.Flags().GetBool("stdout")
	if toStdout {
		if err := action(env); err != nil {
			return false, err
		}
		fmt.Fprint(cmd.OutOrStdout(), s.Markdown())
		return false, nil
	}

	if !cfg.System.AutoSave {
		if err := action(env); err != nil {
			return false, err
		}
		out := s.Markdown()
		if s.Version() == 0 || out == src {
			return false, nil
		}
		if err := io.SaveDocument(ctx, path, out); err != nil {
			return false, withCode(CodeWriteFailure, err)
		}
		return true, nil
	}

	saver := autosave.New(saveFunc(io.SaveDocument), path, cfg.System.AutoSaveInterval, autosave.WithLogger(log))
	unsubscribe := s.Subscribe(func(v editor.Version) { saver.Observe(v.Doc) })
	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- saver.Run(runCtx) }()

	actionErr := action(env)
	unsubscribe()
	stop()
	<-done

	if saver.Pending() {
		if err := saver.Flush(context.WithoutCancel(ctx)); err != nil {
			return false, withCode(CodeWriteFailure, errors.Join(actionErr, err))
		}
	}
	if actionErr != nil {
		return saver.Saves() > 0, actionErr
	}
	return saver.Saves() > 0 && s.Markdown() != src, nil
}

// finishEdit reports the outcome of runEdit.
func finishEdit(cmd *cobra.Command, path string, changed bool, err error) error {
	jsonMode, _ := cmd.Flags().GetBool("json")
	if err != nil {
		var coded *codedError
		if errors.As(err, &coded) {
			return emitErrorAndFail(cmd, jsonMode, coded.code, path, coded.err)
		}
		return err
	}
	if toStdout, _ := cmd.Flags().GetBool("stdout"); toStdout {
		return nil
	}
	if jsonMode {
		return report(cmd, true, changed, nil)
	}
	if changed {
		fmt.Fprintln(cmd.OutOrStdout(), "Updated "+path)
	}
	return nil
}
