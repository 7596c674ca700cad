package testutil

import (
	"bytes"
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/elcomtarif/elcomtarif/internal/extract"
	"github.com/elcomtarif/elcomtarif/internal/source"
)

// FakeSource is an in-memory source.DocumentSource.
type FakeSource struct {
	// URL is returned by ResolveDocumentURL when ResolveErr is nil.
	URL string
	// Document is the blob served by Download.
	Document []byte
	// ResolveErr, when set, fails resolution (e.g. source.ErrNotFound).
	ResolveErr error
	// DownloadErr, when set, fails the download.
	DownloadErr error

	ResolveCalls  atomic.Int32
	DownloadCalls atomic.Int32
}

var _ source.DocumentSource = (*FakeSource)(nil)

func (f *FakeSource) ResolveDocumentURL(ctx context.Context, operatorID, year int) (string, error) {
	f.ResolveCalls.Add(1)
	if f.ResolveErr != nil {
		return "", f.ResolveErr
	}
	return f.URL, nil
}

func (f *FakeSource) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	f.DownloadCalls.Add(1)
	if f.DownloadErr != nil {
		return nil, f.DownloadErr
	}
	return io.NopCloser(bytes.NewReader(f.Document)), nil
}

// FakeExtractionService is an in-memory extract.Service whose behavior is
// driven by a handler function.
type FakeExtractionService struct {
	// Handler produces the result for each request. When nil, requests
	// echo their question back as the answer text.
	Handler func(req *extract.Request) (*extract.Result, error)

	mu       sync.Mutex
	requests []*extract.Request
}

var _ extract.Service = (*FakeExtractionService)(nil)

func (f *FakeExtractionService) Run(ctx context.Context, req *extract.Request) (*extract.Result, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.Handler == nil {
		return &extract.Result{Text: req.Question, Citations: []string{}}, nil
	}
	return f.Handler(req)
}

// Requests returns a snapshot of the requests seen so far.
func (f *FakeExtractionService) Requests() []*extract.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*extract.Request, len(f.requests))
	copy(out, f.requests)
	return out
}
