package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/revio-dev/revio/internal/findings"
	"github.com/revio-dev/revio/internal/git"
	"github.com/revio-dev/revio/pkg/shared/config"
	sharederrors "github.com/revio-dev/revio/pkg/shared/errors"
	"github.com/revio-dev/revio/pkg/shared/httpclient"
)

const (
	toolName         = "claude"
	apiVersion       = "2023-06-01"
	reviewConfidence = 0.8
)

// Reviewer sends per-file diffs to the Anthropic messages API and parses the
// structured response into findings.
type Reviewer struct {
	client    *resty.Client
	endpoint  string
	model     string
	apiKey    string
	maxTokens int
	logger    hclog.Logger
}

// NewReviewer builds a reviewer from the llm config section. The API key is
// read from the configured environment variable once, at construction.
func NewReviewer(cfg *config.Config, logger hclog.Logger) *Reviewer {
	return &Reviewer{
		client:    httpclient.InitializeRestyClient(logger, cfg),
		endpoint:  cfg.LLM.Endpoint,
		model:     cfg.LLM.Model,
		apiKey:    os.Getenv(cfg.LLM.APIKeyEnv),
		maxTokens: cfg.LLM.MaxTokens,
		logger:    logger,
	}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// reviewItem is the JSON object contract the model is instructed to emit.
type reviewItem struct {
	RuleID     string `json:"rule_id"`
	Severity   string `json:"severity"`
	Line       int    `json:"line"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

// ReviewFile reviews one file diff, optionally with static findings supplied
// as context. All failure modes degrade to zero findings plus a
// RecoverableToolError; a single file never aborts the stage.
func (r *Reviewer) ReviewFile(ctx context.Context, diff git.FileDiff, staticContext []findings.Finding) ([]findings.Finding, error) {
	if r.apiKey == "" {
		return nil, sharederrors.NewRecoverableToolError(toolName, fmt.Errorf("no API key available"))
	}

	body := messagesRequest{
		Model:     r.model,
		MaxTokens: r.maxTokens,
		Messages: []message{
			{Role: "user", Content: buildPrompt(diff, staticContext)},
		},
	}

	var out messagesResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("x-api-key", r.apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetBody(body).
		SetResult(&out).
		Post(r.endpoint)
	if err != nil {
		return nil, sharederrors.NewRecoverableToolError(toolName, fmt.Errorf("request failed: %w", err))
	}
	if !resp.IsSuccess() {
		return nil, sharederrors.NewRecoverableToolError(toolName,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String())))
	}
	if len(out.Content) == 0 {
		return nil, sharederrors.NewRecoverableToolError(toolName, fmt.Errorf("empty response body"))
	}

	result, err := parseResponse(out.Content[0].Text, diff.FilePath)
	if err != nil {
		return nil, sharederrors.NewRecoverableToolError(toolName, err)
	}

	r.logger.Debug("file reviewed", "file", diff.FilePath, "findings", len(result))
	return result, nil
}

// parseResponse extracts the JSON finding array from the model output,
// tolerating markdown code fences around it.
func parseResponse(content, filePath string) ([]findings.Finding, error) {
	content = stripFences(content)

	var items []reviewItem
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return nil, fmt.Errorf("response is not a valid finding array: %w", err)
	}

	result := make([]findings.Finding, 0, len(items))
	for _, item := range items {
		ruleID := item.RuleID
		if ruleID == "" {
			ruleID = "ai-review"
		}
		line := item.Line
		if line < 1 {
			line = 1
		}
		msg := item.Message
		if msg == "" {
			msg = "Issue found"
		}

		result = append(result, findings.Finding{
			ToolName:   toolName,
			RuleID:     ruleID,
			Severity:   findings.ParseSeverity(strings.ToLower(item.Severity)),
			FilePath:   filePath,
			Line:       line,
			Message:    msg,
			Suggestion: item.Suggestion,
			Confidence: reviewConfidence,
		})
	}
	return result, nil
}

func stripFences(content string) string {
	if idx := strings.Index(content, "```json"); idx >= 0 {
		content = content[idx+len("```json"):]
		if end := strings.Index(content, "```"); end >= 0 {
			content = content[:end]
		}
	} else if idx := strings.Index(content, "```"); idx >= 0 {
		content = content[idx+len("```"):]
		if end := strings.Index(content, "```"); end >= 0 {
			content = content[:end]
		}
	}
	return strings.TrimSpace(content)
}
