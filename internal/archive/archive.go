// Package archive extracts SpringRTS map container archives (.sd7 7-Zip,
// .sdz zip) into a temporary directory. It is a thin collaborator: callers
// get back a directory path and a cleanup function; archive internals
// (compression codecs, folder layouts) are not part of the map-parsing
// core.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/flate"
)

// ErrNotASpringArchive is returned for any suffix other than .sd7/.sdz.
var ErrNotASpringArchive = errors.New("archive: not a spring map archive")

// ErrExtractionFailed wraps any error from the underlying archive reader.
var ErrExtractionFailed = errors.New("archive: extraction failed")

func init() {
	// Use klauspost/compress's faster flate implementation for .sdz (zip)
	// DEFLATE streams instead of the stdlib one.
	zip.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})
}

// Extractor extracts an archive file to a fresh temp directory.
type Extractor interface {
	Extract(ctx context.Context, archivePath string) (dir string, cleanup func() error, err error)
}

// Extract dispatches on the archive's file extension.
func Extract(ctx context.Context, archivePath string) (string, func() error, error) {
	switch ext := strings.ToLower(filepath.Ext(archivePath)); ext {
	case ".sdz":
		return zipExtractor{}.Extract(ctx, archivePath)
	case ".sd7":
		return sevenZipExtractor{}.Extract(ctx, archivePath)
	default:
		return "", nil, fmt.Errorf("archive: unsupported suffix %q: %w", ext, ErrNotASpringArchive)
	}
}

func newTempDir() (string, func() error, error) {
	dir, err := os.MkdirTemp("", "springmap-*")
	if err != nil {
		return "", nil, fmt.Errorf("archive: failed to create temp dir: %w", err)
	}
	cleanup := func() error {
		return os.RemoveAll(dir)
	}
	return dir, cleanup, nil
}

type zipExtractor struct{}

func (zipExtractor) Extract(ctx context.Context, archivePath string) (string, func() error, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	defer r.Close()

	dir, cleanup, err := newTempDir()
	if err != nil {
		return "", nil, err
	}

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			cleanup()
			return "", nil, err
		}
		if err := extractZipEntry(dir, f); err != nil {
			cleanup()
			return "", nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
		}
	}
	return dir, cleanup, nil
}

func extractZipEntry(dir string, f *zip.File) error {
	target := filepath.Join(dir, filepath.FromSlash(f.Name))
	if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
		return fmt.Errorf("archive: entry %q escapes extraction dir", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

type sevenZipExtractor struct{}

func (sevenZipExtractor) Extract(ctx context.Context, archivePath string) (string, func() error, error) {
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	defer r.Close()

	dir, cleanup, err := newTempDir()
	if err != nil {
		return "", nil, err
	}

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			cleanup()
			return "", nil, err
		}
		if err := extractSevenZipEntry(dir, f); err != nil {
			cleanup()
			return "", nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
		}
	}
	return dir, cleanup, nil
}

func extractSevenZipEntry(dir string, f *sevenzip.File) error {
	target := filepath.Join(dir, filepath.FromSlash(f.Name))
	if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
		return fmt.Errorf("archive: entry %q escapes extraction dir", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}
