package source

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestElcom_ResolveDocumentURL(t *testing.T) {
	t.Run("resolves published document", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req graphqlRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("bad request body: %v", err)
			}
			if req.Variables["operatorId"] != float64(525) {
				t.Errorf("expected operatorId 525, got %v", req.Variables["operatorId"])
			}
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"data":{"operator":{"documents":[{"url":"https://example/doc.pdf"}]}}}`)
		}))
		defer srv.Close()

		e := NewElcom(ElcomConfig{BaseURL: srv.URL})
		url, err := e.ResolveDocumentURL(context.Background(), 525, 2024)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if url != "https://example/doc.pdf" {
			t.Errorf("expected https://example/doc.pdf, got %s", url)
		}
	})

	t.Run("unknown operator yields ErrNotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"data":{"operator":null}}`)
		}))
		defer srv.Close()

		e := NewElcom(ElcomConfig{BaseURL: srv.URL})
		_, err := e.ResolveDocumentURL(context.Background(), -1, 2024)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("empty document list yields ErrNotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"data":{"operator":{"documents":[]}}}`)
		}))
		defer srv.Close()

		e := NewElcom(ElcomConfig{BaseURL: srv.URL})
		_, err := e.ResolveDocumentURL(context.Background(), 19, 2024)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("graphql error surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"errors":[{"message":"rate limited"}]}`)
		}))
		defer srv.Close()

		e := NewElcom(ElcomConfig{BaseURL: srv.URL})
		_, err := e.ResolveDocumentURL(context.Background(), 525, 2024)
		if err == nil || errors.Is(err, ErrNotFound) {
			t.Errorf("expected a query error, got %v", err)
		}
	})
}

func TestElcom_Download(t *testing.T) {
	t.Run("retries transient failures", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			io.WriteString(w, "pdf-bytes")
		}))
		defer srv.Close()

		e := NewElcom(ElcomConfig{BaseURL: srv.URL, RetryAttempts: 3, RetryDelay: time.Millisecond})
		body, err := e.Download(context.Background(), srv.URL+"/doc.pdf")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer body.Close()

		data, _ := io.ReadAll(body)
		if string(data) != "pdf-bytes" {
			t.Errorf("unexpected body: %q", data)
		}
		if calls.Load() != 3 {
			t.Errorf("expected 3 attempts, got %d", calls.Load())
		}
	})

	t.Run("gives up after attempts", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		e := NewElcom(ElcomConfig{BaseURL: srv.URL, RetryAttempts: 2, RetryDelay: time.Millisecond})
		if _, err := e.Download(context.Background(), srv.URL+"/doc.pdf"); err == nil {
			t.Error("expected error after exhausting retries")
		}
	})
}
