package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const defaultOpenAIModel = "gpt-5-mini"

const sentimentInstructions = `You are a sentiment classifier for personal diary entries.
Classify the overall emotional polarity of the entry.
Return JSON with "label" (one of "positive", "neutral", "negative") and
"score", your confidence in that label between 0.0 and 1.0.
Return ONLY the JSON.`

var sentimentSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"label": map[string]any{
			"type": "string",
			"enum": []string{"positive", "neutral", "negative"},
		},
		"score": map[string]any{
			"type": "number",
		},
	},
	"required":             []string{"label", "score"},
	"additionalProperties": false,
}

// OpenAI classifies diary text via the OpenAI Responses API
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI classifier from the environment.
// OPENAI_API_KEY must be set; model falls back to a default when empty.
func NewOpenAI(model string) (*OpenAI, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	if model == "" {
		model = defaultOpenAIModel
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAI{client: &client, model: model}, nil
}

// Classify scores text and returns the model's native label and confidence
func (c *OpenAI) Classify(ctx context.Context, text string) (Result, error) {
	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(256),
		Instructions:    openai.String(sentimentInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(text, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:   "SentimentResult",
					Schema: sentimentSchema,
					Strict: openai.Bool(true),
					Type:   "json_schema",
				},
			},
		},
	}

	resp, err := c.callWithRetry(ctx, params)
	if err != nil {
		return Result{}, fmt.Errorf("openai request: %w", err)
	}

	var out Result
	if err := decodeModelJSON(resp.OutputText(), &out); err != nil {
		return Result{}, fmt.Errorf("parse model output: %w", err)
	}
	out.Score = clampScore(out.Score)
	return out, nil
}

func (c *OpenAI) callWithRetry(ctx context.Context, params responses.ResponseNewParams) (*responses.Response, error) {
	const maxRetries = 3
	waits := []time.Duration{2 * time.Second, 10 * time.Second, 30 * time.Second}

	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := c.client.Responses.New(ctx, params)
		if err != nil {
			if isRetryableError(err) && attempt < maxRetries-1 {
				select {
				case <-time.After(waits[attempt]):
					continue
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			return nil, err
		}
		return resp, nil
	}
	return nil, fmt.Errorf("failed after %d attempts", maxRetries)
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "429") ||
		strings.Contains(s, "rate limit") ||
		strings.Contains(s, "500") ||
		strings.Contains(s, "server_error")
}

// decodeModelJSON unmarshals JSON from a model response, tolerating
// surrounding text or markdown fences around the object.
func decodeModelJSON(outputText string, v any) error {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return fmt.Errorf("empty model output")
	}

	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end <= start {
		return fmt.Errorf("no JSON object found in model output")
	}
	return json.Unmarshal([]byte(s[start:end+1]), v)
}
