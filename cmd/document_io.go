package cmd

import (
	"context"
	"os"

	"github.com/eykd/tanmark-go/internal/logger"
	"github.com/eykd/tanmark-go/internal/vault"
)

// DocumentReader reads Markdown documents.
type DocumentReader interface {
	ReadDocument(ctx context.Context, path string) (string, error)
}

// DocumentIO reads and writes Markdown documents.
type DocumentIO interface {
	DocumentReader
	SaveDocument(ctx context.Context, path, markdown string) error
}

// ImageIO extends DocumentIO with image ingestion for the image command.
type ImageIO interface {
	DocumentIO
	ReadImage(path string) ([]byte, error)
	IngestImage(ctx context.Context, data []byte, filename, documentPath, assetsDir string) (vault.Ingested, error)
}

// fileDocumentIO implements ImageIO on top of a vault.Store.
type fileDocumentIO struct {
	log *logger.Logger
}

func newDefaultDocumentIO() *fileDocumentIO {
	return &fileDocumentIO{log: logger.Discard()}
}

func (f *fileDocumentIO) store(opts ...vault.Option) *vault.Store {
	return vault.New(append([]vault.Option{vault.WithLogger(f.log)}, opts...)...)
}

// SetLogger routes vault logging to l.
func (f *fileDocumentIO) SetLogger(l *logger.Logger) {
	f.log = l
}

// ReadDocument reads the document at path.
func (f *fileDocumentIO) ReadDocument(ctx context.Context, path string) (string, error) {
	return f.store().Read(ctx, path)
}

// SaveDocument writes markdown to path atomically.
func (f *fileDocumentIO) SaveDocument(ctx context.Context, path, markdown string) error {
	return f.store().Save(ctx, path, markdown)
}

// ReadImage reads the image file to ingest.
func (f *fileDocumentIO) ReadImage(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// IngestImage copies data into assetsDir next to documentPath.
func (f *fileDocumentIO) IngestImage(ctx context.Context, data []byte, filename, documentPath, assetsDir string) (vault.Ingested, error) {
	return f.store(vault.WithAssetsDir(assetsDir)).Ingest(ctx, data, filename, documentPath)
}

// loggerSetter is implemented by IO values that accept the command logger.
type loggerSetter interface {
	SetLogger(l *logger.Logger)
}
