package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"

	"github.com/revio-dev/revio/internal/findings"
	"github.com/revio-dev/revio/internal/git"
	sharederrors "github.com/revio-dev/revio/pkg/shared/errors"
)

func newTestReviewer(endpoint string) *Reviewer {
	return &Reviewer{
		client:    resty.New(),
		endpoint:  endpoint,
		model:     "test-model",
		apiKey:    "test-key",
		maxTokens: 512,
		logger:    hclog.NewNullLogger(),
	}
}

func modelResponse(text string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"content": []map[string]string{{"type": "text", "text": text}},
	})
	return string(body)
}

func testDiff() git.FileDiff {
	return git.FileDiff{
		FilePath:   "app/run.py",
		ChangeType: git.ChangeModified,
		AddedLines: []git.DiffLine{{Number: 3, Text: "exec(user_input)"}},
	}
}

func TestReviewFile(t *testing.T) {
	var gotReq messagesRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(modelResponse(`[{"rule_id":"exec-input","severity":"error","line":3,"message":"untrusted exec","suggestion":"validate input"}]`)))
	}))
	defer server.Close()

	r := newTestReviewer(server.URL)
	result, err := r.ReviewFile(context.Background(), testDiff(), nil)
	if err != nil {
		t.Fatalf("ReviewFile returned error: %v", err)
	}

	assert.Equal(t, "test-model", gotReq.Model)
	assert.Len(t, gotReq.Messages, 1)
	assert.Contains(t, gotReq.Messages[0].Content, "app/run.py")

	assert.Len(t, result, 1)
	assert.Equal(t, findings.Finding{
		ToolName:   "claude",
		RuleID:     "exec-input",
		Severity:   findings.SeverityError,
		FilePath:   "app/run.py",
		Line:       3,
		Message:    "untrusted exec",
		Suggestion: "validate input",
		Confidence: reviewConfidence,
	}, result[0])
}

func TestReviewFileNoAPIKey(t *testing.T) {
	r := newTestReviewer("http://unused")
	r.apiKey = ""

	_, err := r.ReviewFile(context.Background(), testDiff(), nil)
	var rte *sharederrors.RecoverableToolError
	if !errors.As(err, &rte) {
		t.Fatalf("expected RecoverableToolError, got %T: %v", err, err)
	}
}

func TestReviewFileServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	r := newTestReviewer(server.URL)
	_, err := r.ReviewFile(context.Background(), testDiff(), nil)
	var rte *sharederrors.RecoverableToolError
	if !errors.As(err, &rte) {
		t.Fatalf("expected RecoverableToolError, got %T: %v", err, err)
	}
}

func TestReviewFileEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	r := newTestReviewer(server.URL)
	_, err := r.ReviewFile(context.Background(), testDiff(), nil)
	var rte *sharederrors.RecoverableToolError
	if !errors.As(err, &rte) {
		t.Fatalf("expected RecoverableToolError, got %T: %v", err, err)
	}
}

func TestReviewFileUnparseableModelOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(modelResponse("Sure! Here are my thoughts on the change...")))
	}))
	defer server.Close()

	r := newTestReviewer(server.URL)
	_, err := r.ReviewFile(context.Background(), testDiff(), nil)
	var rte *sharederrors.RecoverableToolError
	if !errors.As(err, &rte) {
		t.Fatalf("expected RecoverableToolError, got %T: %v", err, err)
	}
}

func TestParseResponseDefaults(t *testing.T) {
	result, err := parseResponse(`[{"severity":"ERROR","line":0}]`, "a.py")
	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, "ai-review", result[0].RuleID)
	assert.Equal(t, 1, result[0].Line)
	assert.Equal(t, "Issue found", result[0].Message)
	assert.Equal(t, findings.SeverityError, result[0].Severity)
}

func TestParseResponseEmptyList(t *testing.T) {
	result, err := parseResponse("[]", "a.py")
	assert.NoError(t, err)
	assert.Empty(t, result)
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n[{\"line\":1}]\n```", `[{"line":1}]`},
		{"bare fence", "```\n[]\n```", "[]"},
		{"fence with preamble", "Here you go:\n```json\n[]\n```\nanything after", "[]"},
		{"no fence", "  []  ", "[]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, stripFences(tc.in))
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	diff := testDiff()
	staticContext := []findings.Finding{
		{RuleID: "B102", Line: 3, Message: "exec detected"},
	}

	prompt := buildPrompt(diff, staticContext)

	assert.Contains(t, prompt, "File: app/run.py")
	assert.Contains(t, prompt, "Static Analysis Findings")
	assert.Contains(t, prompt, "- Line 3: exec detected (B102)")
	assert.Contains(t, prompt, "+ 3: exec(user_input)")
	assert.Contains(t, prompt, "STRICTLY in JSON format")

	// with full content available, the prompt carries the file body instead
	content := "import os\n\nexec(user_input)\n"
	diff.NewContent = &content
	prompt = buildPrompt(diff, nil)
	assert.Contains(t, prompt, "File Content:")
	assert.Contains(t, prompt, content)
	assert.False(t, strings.Contains(prompt, "Static Analysis Findings"))
}
