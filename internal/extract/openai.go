package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const (
	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "gpt-4o-mini"

	// schemaName labels the structured output schema in requests.
	schemaName = "tariff_response"
)

// OpenAIConfig holds settings for the OpenAI-backed extraction service.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	MaxRetries int           // Transport-level retries inside the SDK
	Timeout    time.Duration // HTTP timeout
	BaseURL    string        // Optional (tests)
	HTTPClient *http.Client  // Optional (tests)
}

// OpenAIService implements Service against the OpenAI API. Attachments
// are uploaded as files and referenced from the user message; the
// service's streamed assistant events collapse into one blocking
// completion call.
type OpenAIService struct {
	client openai.Client
	model  string
}

var _ Service = (*OpenAIService)(nil)

// NewOpenAI creates an OpenAI extraction service.
func NewOpenAI(cfg OpenAIConfig) *OpenAIService {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 300 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIService{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

// Run submits the request and normalizes the answer into text plus
// bracketed citation markers.
func (s *OpenAIService) Run(ctx context.Context, req *Request) (*Result, error) {
	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(req.Question),
	}
	for _, path := range req.Attachments {
		fileID, err := s.uploadFile(ctx, path)
		if err != nil {
			return nil, &Error{Stage: "upload", Err: err}
		}
		parts = append(parts, openai.FileContentPart(openai.ChatCompletionContentPartFileFileParam{
			FileID: openai.String(fileID),
		}))
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.Instructions),
			openai.UserMessage(parts),
		},
	}

	if len(req.OutputSchema) > 0 {
		var schemaDoc any
		if err := json.Unmarshal(req.OutputSchema, &schemaDoc); err != nil {
			return nil, &Error{Stage: "completion", Err: fmt.Errorf("invalid output schema: %w", err)}
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   schemaName,
					Schema: schemaDoc,
					Strict: openai.Bool(true),
				},
			},
		}
	}

	completion, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, &Error{Stage: "completion", Err: err}
	}
	if len(completion.Choices) == 0 {
		return nil, &Error{Stage: "response", Err: fmt.Errorf("empty completion response")}
	}

	message := completion.Choices[0].Message
	annotations := make([]Annotation, 0, len(message.Annotations))
	for _, a := range message.Annotations {
		if a.Type != "url_citation" {
			continue
		}
		src := a.URLCitation.Title
		if src == "" {
			src = a.URLCitation.URL
		}
		annotations = append(annotations, Annotation{
			Start:  int(a.URLCitation.StartIndex),
			End:    int(a.URLCitation.EndIndex),
			Source: src,
		})
	}

	text, citations := SubstituteCitations(message.Content, annotations)
	return &Result{Text: text, Citations: citations}, nil
}

func (s *OpenAIService) uploadFile(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open attachment: %w", err)
	}
	defer file.Close()

	uploaded, err := s.client.Files.New(ctx, openai.FileNewParams{
		File:    file,
		Purpose: openai.FilePurposeUserData,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload attachment %s: %w", path, err)
	}
	return uploaded.ID, nil
}
