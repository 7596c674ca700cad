// Package source resolves and downloads operator tariff sheets.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

// ErrNotFound is returned when no tariff sheet is published for an
// operator/year pair.
var ErrNotFound = errors.New("document link not found")

// DocumentSource locates and streams operator documents.
type DocumentSource interface {
	// ResolveDocumentURL returns the download URL of the operator's
	// tariff sheet for the given year, or ErrNotFound.
	ResolveDocumentURL(ctx context.Context, operatorID, year int) (string, error)

	// Download opens a stream for the document at url. The caller owns
	// the returned reader.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// ElcomConfig holds settings for the ELCOM document source.
type ElcomConfig struct {
	// BaseURL is the GraphQL endpoint of the ELCOM tariff portal.
	BaseURL string
	// Timeout applies per HTTP request.
	Timeout time.Duration
	// RetryAttempts and RetryDelay control download retries.
	RetryAttempts uint
	RetryDelay    time.Duration
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Elcom queries the ELCOM tariff portal for operator documents.
type Elcom struct {
	baseURL       string
	retryAttempts uint
	retryDelay    time.Duration
	client        *http.Client
}

// NewElcom creates an ELCOM document source.
func NewElcom(cfg ElcomConfig) *Elcom {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Elcom{
		baseURL:       cfg.BaseURL,
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
		client:        client,
	}
}

const documentQuery = `query OperatorDocuments($operatorId: Int!, $year: Int!) {
  operator(id: $operatorId) {
    documents(year: $year, category: TARIFF_SHEET) {
      url
    }
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type documentResponse struct {
	Data struct {
		Operator *struct {
			Documents []struct {
				URL string `json:"url"`
			} `json:"documents"`
		} `json:"operator"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// ResolveDocumentURL queries the portal for the operator's tariff sheet URL.
func (e *Elcom) ResolveDocumentURL(ctx context.Context, operatorID, year int) (string, error) {
	body, err := json.Marshal(graphqlRequest{
		Query: documentQuery,
		Variables: map[string]any{
			"operatorId": operatorID,
			"year":       year,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode document query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create document query: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("document query failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("document query returned status %d", resp.StatusCode)
	}

	var decoded documentResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode document query response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return "", fmt.Errorf("document query error: %s", decoded.Errors[0].Message)
	}
	if decoded.Data.Operator == nil || len(decoded.Data.Operator.Documents) == 0 {
		return "", ErrNotFound
	}
	url := decoded.Data.Operator.Documents[0].URL
	if url == "" {
		return "", ErrNotFound
	}
	return url, nil
}

// Download fetches the document at url, retrying transient failures.
func (e *Elcom) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	var body io.ReadCloser
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := e.client.Do(req)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				_ = resp.Body.Close()
				return fmt.Errorf("download returned status %d", resp.StatusCode)
			}
			body = resp.Body
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(e.retryAttempts),
		retry.Delay(e.retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	return body, nil
}
