package cmd

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/eykd/tanmark-go/internal/vault"
)

// mockDocumentIO is a test double for ImageIO backed by maps.
type mockDocumentIO struct {
	docs      map[string]string
	images    map[string][]byte
	readErr   error
	saveErr   error
	ingestErr error
	saved     map[string][]string // every write, keyed by path
	ingested  []string
}

func newMockDocumentIO(docs map[string]string) *mockDocumentIO {
	return &mockDocumentIO{
		docs:   docs,
		images: make(map[string][]byte),
		saved:  make(map[string][]string),
	}
}

func (m *mockDocumentIO) ReadDocument(_ context.Context, p string) (string, error) {
	if m.readErr != nil {
		return "", m.readErr
	}
	src, ok := m.docs[p]
	if !ok {
		return "", &vault.IoError{Op: "read", Path: p, Err: fs.ErrNotExist}
	}
	return src, nil
}

func (m *mockDocumentIO) SaveDocument(_ context.Context, p, markdown string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.docs[p] = markdown
	m.saved[p] = append(m.saved[p], markdown)
	return nil
}

func (m *mockDocumentIO) ReadImage(p string) ([]byte, error) {
	data, ok := m.images[p]
	if !ok {
		return nil, errors.New("no such image: " + p)
	}
	return data, nil
}

func (m *mockDocumentIO) IngestImage(_ context.Context, _ []byte, filename, _, assetsDir string) (vault.Ingested, error) {
	if m.ingestErr != nil {
		return vault.Ingested{}, m.ingestErr
	}
	rel := path.Join(assetsDir, filepath.Base(filename))
	m.ingested = append(m.ingested, rel)
	return vault.Ingested{RelativePath: rel, AbsolutePath: "/abs/" + rel}, nil
}

// projectWithoutAutosave returns a directory whose config disables autosave.
func projectWithoutAutosave(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := "system:\n  autoSave: false\n"
	if err := os.WriteFile(filepath.Join(dir, ".tanmark.yml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}
