package backend

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// #endregion imports

// ErrEmptyChoices is returned when the endpoint answers without a choice.
var ErrEmptyChoices = errors.New("completion returned no choices")

// #region client-struct

// OpenAITransport talks to an OpenAI-compatible chat completions endpoint
// (a LiteLLM proxy in front of the candidate models).
type OpenAITransport struct {
	client  *openai.Client
	baseURL string
}

// #endregion client-struct

// #region constructor

// NormalizeBaseURL ensures the endpoint ends in /v1/.
func NormalizeBaseURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if !strings.HasSuffix(u, "/v1") {
		u += "/v1"
	}
	return u + "/"
}

// NewOpenAITransport builds a transport for baseURL. SDK-level retries are
// disabled: moving between candidates is the orchestrator's job.
func NewOpenAITransport(baseURL, apiKey string, opts ...option.RequestOption) *OpenAITransport {
	norm := NormalizeBaseURL(baseURL)
	all := []option.RequestOption{
		option.WithBaseURL(norm),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	all = append(all, opts...)
	client := openai.NewClient(all...)
	return &OpenAITransport{client: &client, baseURL: norm}
}

// BaseURL returns the normalized endpoint.
func (t *OpenAITransport) BaseURL() string {
	return t.baseURL
}

// #endregion constructor

// #region complete

// Complete issues one chat completion call.
func (t *OpenAITransport) Complete(ctx context.Context, req Completion) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(req.Model),
		Messages:    convertMessages(req.Messages),
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	// top_p must be in (0, 1]; zero leaves the server default.
	if req.TopP > 0 {
		params.TopP = openai.Float(req.TopP)
	}

	resp, err := t.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion %s: %w", req.Model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion %s: %w", req.Model, ErrEmptyChoices)
	}
	return resp.Choices[0].Message.Content, nil
}

func convertMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// #endregion complete

// #region models

// Models lists the model ids the endpoint serves.
func (t *OpenAITransport) Models(ctx context.Context) ([]string, error) {
	page, err := t.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// #endregion models
