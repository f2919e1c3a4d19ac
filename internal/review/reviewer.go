// Package review asks an OpenAI-compatible chat model to assess a finished
// build: compatibility, improvement tips and a 1-10 rating.
package review

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nextlevelbuilder/rigbot/internal/session"
)

// fallbackText is shown to the user whenever the model cannot be reached or
// returns something unusable.
const fallbackText = "Failed to analyze the assembly. Please try again later."

// Reviewer calls the chat/completions endpoint of an OpenAI-compatible API.
type Reviewer struct {
	apiKey    string
	apiBase   string
	model     string // default "gpt-4o-mini"
	timeoutMs int    // default 60000
}

// Config configures the reviewer.
type Config struct {
	APIKey    string
	APIBase   string
	Model     string
	TimeoutMs int
}

// New creates a reviewer with defaults filled in.
func New(cfg Config) *Reviewer {
	r := &Reviewer{
		apiKey:    cfg.APIKey,
		apiBase:   cfg.APIBase,
		model:     cfg.Model,
		timeoutMs: cfg.TimeoutMs,
	}
	if r.apiBase == "" {
		r.apiBase = "https://api.openai.com/v1"
	}
	if r.model == "" {
		r.model = "gpt-4o-mini"
	}
	if r.timeoutMs <= 0 {
		r.timeoutMs = 60000
	}
	return r
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Review returns the model's assessment of the build. It never fails the
// conversation: on any error the fallback text is returned instead.
func (r *Reviewer) Review(ctx context.Context, b *session.Build) string {
	text, err := r.complete(ctx, buildPrompt(b))
	if err != nil {
		slog.Error("build review failed", "build", b.Name, "error", err)
		return fallbackText
	}
	return text
}

func (r *Reviewer) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    r.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	url := r.apiBase + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	client := &http.Client{Timeout: time.Duration(r.timeoutMs) * time.Millisecond}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat error %d: %s", resp.StatusCode, string(errBody))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("empty chat response")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// buildPrompt lists the build's parts and asks for plain-text advice. Chat
// surfaces render no markup, so the model is told not to emit any.
func buildPrompt(b *session.Build) string {
	var sb strings.Builder
	sb.WriteString("Analyze this PC build:\n\n")
	for _, k := range session.Kinds() {
		if p, ok := b.Part(k); ok {
			fmt.Fprintf(&sb, "%s: %s ($%d)\n", k.Label(), p.Name, p.Price)
		}
	}
	fmt.Fprintf(&sb, "Total price: $%d\n\n", b.TotalPrice)
	sb.WriteString("Check the components for compatibility, give 5 short tips to improve the build, and rate it from 1 to 10. Answer in plain text without any markdown or markup.")
	return sb.String()
}
