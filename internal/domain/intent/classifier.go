package intent

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/yanqian/ai-tripplanner/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/ai-tripplanner/pkg/errors"
	"github.com/yanqian/ai-tripplanner/pkg/metrics"
)

const systemPrompt = `You classify requests for a trip planning assistant.
Reply with one JSON object and nothing else.

Intents and their fields:
- PLAN: city (string), interests (array of history|culture|food|nature), days (integer), pace (relaxed|moderate|packed)
- EDIT_DAY_PACE: day (integer, 1-based), pace (relaxed|moderate|packed)
- EXPLAIN: target (string, a place name or "plan")

Always include "intent". Infer missing values sensibly.
When no city is mentioned use %CITY%.`

const (
	repairPrompt        = "That reply was not a valid JSON object. Reply again with only the JSON object."
	maxClassifyAttempts = 2
)

// ChatClient is the subset of the chat API the classifier needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// Config tunes the classifier.
type Config struct {
	Model       string
	Temperature float32
	DefaultCity string
}

// Classification is a parsed command plus the tokens spent producing it.
type Classification struct {
	Command Command            `json:"-"`
	Raw     string             `json:"raw"`
	Usage   metrics.TokenUsage `json:"usage"`
}

// Classifier turns free text into a Command.
type Classifier interface {
	Classify(ctx context.Context, text, tripID string) (Classification, error)
}

type classifier struct {
	cfg    Config
	client ChatClient
	logger *slog.Logger
}

// NewClassifier builds an LLM-backed classifier. A nil client yields intent_unavailable on every call.
func NewClassifier(cfg Config, client ChatClient, logger *slog.Logger) Classifier {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.DefaultCity == "" {
		cfg.DefaultCity = "Delhi"
	}
	return &classifier{cfg: cfg, client: client, logger: logger.With("component", "intent.classifier")}
}

func (c *classifier) Classify(ctx context.Context, text, tripID string) (Classification, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Classification{}, apperrors.Newf(CodeValidation, "text cannot be empty")
	}
	if c.client == nil {
		return Classification{}, apperrors.Newf(CodeIntentUnavailable, "intent classification is not configured")
	}

	messages := []chatgpt.Message{
		{Role: "system", Content: strings.ReplaceAll(systemPrompt, "%CITY%", c.cfg.DefaultCity)},
		{Role: "user", Content: text},
	}
	var usage metrics.TokenUsage
	for attempt := 1; ; attempt++ {
		content, spent, err := c.complete(ctx, messages)
		usage = usage.Add(spent)
		if err != nil {
			return Classification{}, err
		}

		payload, err := bindTrip([]byte(stripFence(content)), tripID)
		if err != nil {
			if attempt < maxClassifyAttempts {
				c.logger.Warn("classifier returned malformed JSON, asking for a repair", "raw", content)
				messages = append(messages,
					chatgpt.Message{Role: "assistant", Content: content},
					chatgpt.Message{Role: "user", Content: repairPrompt},
				)
				continue
			}
			return Classification{}, apperrors.Wrap(CodeIntentClassifier, "classifier returned malformed JSON", err)
		}
		cmd, err := ParseCommand(payload)
		if err != nil {
			c.logger.Warn("classifier output rejected", "raw", content, "error", err)
			return Classification{}, err
		}
		c.logger.Info("request classified", "intent", cmd.Kind(), "attempts", attempt, "total_tokens", usage.TotalTokens)
		return Classification{Command: cmd, Raw: content, Usage: usage}, nil
	}
}

func (c *classifier) complete(ctx context.Context, messages []chatgpt.Message) (string, metrics.TokenUsage, error) {
	resp, err := c.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:          c.cfg.Model,
		Temperature:    c.cfg.Temperature,
		ResponseFormat: &chatgpt.ResponseFormat{Type: "json_object"},
		Messages:       messages,
	})
	if err != nil {
		return "", metrics.TokenUsage{}, apperrors.Wrap(CodeIntentClassifier, "failed to classify request", err)
	}
	usage := metrics.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	content, err := resp.Content()
	if err != nil {
		return "", usage, apperrors.Wrap(CodeIntentClassifier, "failed to classify request", err)
	}
	return content, usage, nil
}

// bindTrip sets tripId on the classifier output unless the model already supplied one.
func bindTrip(raw []byte, tripID string) ([]byte, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if existing, _ := fields["tripId"].(string); existing == "" && tripID != "" {
		fields["tripId"] = tripID
	}
	return json.Marshal(fields)
}

func stripFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
