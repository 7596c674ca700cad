// Package fetcher caches operator tariff sheets on disk.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/elcomtarif/elcomtarif/internal/home"
	"github.com/elcomtarif/elcomtarif/internal/source"
)

// Artifact describes a cached document.
type Artifact struct {
	// SourceURL is the resolved download URL. It may be empty when the
	// document was already cached and no link record exists.
	SourceURL string `json:"source_url"`
	// Path is the deterministic cache path of the document.
	Path string `json:"path"`
}

// FetchError reports that a document could not be located or downloaded.
// A matching error artifact is persisted before it is returned.
type FetchError struct {
	OperatorID int
	Year       int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch document for operator %d year %d: %v", e.OperatorID, e.Year, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher resolves and downloads documents into the home directory.
type Fetcher struct {
	home   *home.Dir
	source source.DocumentSource
	logger *slog.Logger
}

// New creates a Fetcher.
func New(h *home.Dir, src source.DocumentSource, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{home: h, source: src, logger: logger}
}

// Fetch returns the cached document for (operatorID, year), downloading it
// if needed.
//
// The fast path: when a file already exists at the deterministic cache
// path the document source is not contacted at all. On any failure an
// error artifact is persisted at the deterministic error path and a
// FetchError is returned; the error is recorded but never swallowed.
func (f *Fetcher) Fetch(ctx context.Context, operatorID, year int) (*Artifact, error) {
	target := f.home.DocumentPath(operatorID, year)
	if _, err := os.Stat(target); err == nil {
		f.logger.Debug("document already cached", "operator", operatorID, "year", year, "path", target)
		return &Artifact{Path: target, SourceURL: f.cachedLink(operatorID, year)}, nil
	}

	artifact, err := f.download(ctx, operatorID, year, target)
	if err != nil {
		ferr := &FetchError{OperatorID: operatorID, Year: year, Err: err}
		f.persistError(operatorID, year, ferr)
		return nil, ferr
	}

	f.logger.Info("document fetched", "operator", operatorID, "year", year, "url", artifact.SourceURL)
	return artifact, nil
}

func (f *Fetcher) download(ctx context.Context, operatorID, year int, target string) (*Artifact, error) {
	url, err := f.source.ResolveDocumentURL(ctx, operatorID, year)
	if err != nil {
		return nil, err
	}

	// The link record is written before the binary download so a failed
	// download still leaves the resolved URL auditable.
	if err := f.writeLink(operatorID, year, url); err != nil {
		return nil, err
	}

	body, err := f.source.Download(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create document directory: %w", err)
	}

	// Download to a temp file in the target directory and rename, so a
	// partial write is never mistaken for a cached document.
	tmp, err := os.CreateTemp(filepath.Dir(target), ".download-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := ValidatePDF(tmpPath); err != nil {
		return nil, err
	}

	if err := os.Rename(tmpPath, target); err != nil {
		return nil, fmt.Errorf("failed to move document into cache: %w", err)
	}

	return &Artifact{SourceURL: url, Path: target}, nil
}

// ValidatePDF checks that the file at path parses as a PDF with at least
// one page.
func ValidatePDF(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open downloaded document: %w", err)
	}
	defer file.Close()

	pages, err := api.PageCount(file, nil)
	if err != nil {
		return fmt.Errorf("downloaded document is not a valid PDF: %w", err)
	}
	if pages < 1 {
		return errors.New("downloaded document has no pages")
	}
	return nil
}

func (f *Fetcher) writeLink(operatorID, year int, url string) error {
	path := f.home.DocumentLinkPath(operatorID, year)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create link directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(url+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write link record: %w", err)
	}
	return nil
}

func (f *Fetcher) cachedLink(operatorID, year int) string {
	data, err := os.ReadFile(f.home.DocumentLinkPath(operatorID, year))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// errorArtifact is the persisted record of a failed fetch.
type errorArtifact struct {
	OperatorID int    `json:"operator_id"`
	Year       int    `json:"year"`
	Message    string `json:"message"`
	Cause      string `json:"cause,omitempty"`
}

func (f *Fetcher) persistError(operatorID, year int, ferr *FetchError) {
	artifact := errorArtifact{
		OperatorID: operatorID,
		Year:       year,
		Message:    ferr.Error(),
	}
	if cause := errors.Unwrap(ferr); cause != nil {
		artifact.Cause = cause.Error()
	}

	path := f.home.DocumentErrorPath(operatorID, year)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		f.logger.Warn("failed to create error artifact directory", "operator", operatorID, "error", err)
		return
	}
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		f.logger.Warn("failed to encode error artifact", "operator", operatorID, "error", err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		f.logger.Warn("failed to write error artifact", "operator", operatorID, "error", err)
	}
}
