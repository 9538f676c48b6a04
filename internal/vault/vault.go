// Package vault is the document store: Markdown files on disk, the images
// ingested next to them, and the resolution of image sources to URIs the
// renderer can load.
package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/eykd/tanmark-go/internal/logger"
)

// Scheme prefixes local image paths handed to the renderer.
const Scheme = "tanmark://"

// DefaultAssetsDir is where ingested images are stored, relative to the
// document's directory.
const DefaultAssetsDir = "assets"

// ImageExtensions lists the file extensions accepted as images.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".bmp"}

// ErrNotImage is returned when an ingested file does not have an image
// extension.
var ErrNotImage = errors.New("not an image file")

// IoError is a failed store operation.
type IoError struct {
	Op   string
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// Ingested locates a stored image. RelativePath is relative to the document
// and uses forward slashes; it is what goes into the image's src.
type Ingested struct {
	RelativePath string
	AbsolutePath string
}

// Store reads and writes documents and images on the local file system.
type Store struct {
	assetsDir string
	log       *logger.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithAssetsDir sets the image directory, relative to each document.
func WithAssetsDir(dir string) Option {
	return func(s *Store) {
		if dir != "" {
			s.assetsDir = dir
		}
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New returns a store.
func New(opts ...Option) *Store {
	s := &Store{assetsDir: DefaultAssetsDir, log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read returns the document at path.
func (s *Store) Read(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &IoError{Op: "read", Path: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &IoError{Op: "read", Path: path, Err: err}
	}
	return string(data), nil
}

// Save writes markdown to path atomically. An existing file keeps its
// permissions; new files are created 0644.
func (s *Store) Save(ctx context.Context, path, markdown string) error {
	if err := ctx.Err(); err != nil {
		return &IoError{Op: "save", Path: path, Err: err}
	}
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := writeFileAtomic(path, []byte(markdown), mode); err != nil {
		s.log.SaveFailed(path, err)
		return &IoError{Op: "save", Path: path, Err: err}
	}
	s.log.DocumentSaved(path, len(markdown))
	return nil
}

// Ingest stores image data under the assets directory next to the document
// at documentPath. A taken name gets a numeric suffix: logo.png, logo-1.png,
// logo-2.png.
func (s *Store) Ingest(ctx context.Context, data []byte, filename, documentPath string) (Ingested, error) {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) || !IsImage(name) {
		return Ingested{}, &IoError{Op: "ingest", Path: filename, Err: ErrNotImage}
	}
	if err := ctx.Err(); err != nil {
		return Ingested{}, &IoError{Op: "ingest", Path: filename, Err: err}
	}
	dir := filepath.Join(filepath.Dir(documentPath), s.assetsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Ingested{}, &IoError{Op: "ingest", Path: dir, Err: err}
	}
	target, final, err := freeName(dir, name)
	if err != nil {
		return Ingested{}, &IoError{Op: "ingest", Path: dir, Err: err}
	}
	if err := writeFileAtomic(target, data, 0o644); err != nil {
		return Ingested{}, &IoError{Op: "ingest", Path: target, Err: err}
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}
	ing := Ingested{
		RelativePath: path.Join(filepath.ToSlash(s.assetsDir), final),
		AbsolutePath: abs,
	}
	s.log.ImageIngested(filename, ing.RelativePath)
	return ing, nil
}

func freeName(dir, name string) (target, final string, err error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	final = name
	for counter := 1; ; counter++ {
		target = filepath.Join(dir, final)
		_, statErr := os.Stat(target)
		if errors.Is(statErr, fs.ErrNotExist) {
			return target, final, nil
		}
		if statErr != nil {
			return "", "", statErr
		}
		final = fmt.Sprintf("%s-%d%s", base, counter, ext)
	}
}

// IsImage reports whether name has one of the ImageExtensions, ignoring
// case.
func IsImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Resolve maps an image src to a loadable URI. Web URLs and Scheme URIs pass
// through; file paths are resolved against the document's directory and
// prefixed with Scheme. Without a document path src is returned unchanged.
func Resolve(src, documentPath string) string {
	switch {
	case src == "":
		return ""
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"), strings.HasPrefix(src, Scheme):
		return src
	case documentPath == "":
		return src
	}
	p := filepath.FromSlash(src)
	if !filepath.IsAbs(p) {
		p = filepath.Join(filepath.Dir(documentPath), p)
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return Scheme + filepath.ToSlash(p)
}

func writeFileAtomic(path string, data []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tanmark-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Chmod(tmpName, mode); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
