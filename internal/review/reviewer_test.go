package review

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nextlevelbuilder/rigbot/internal/session"
)

func testBuild() *session.Build {
	b := &session.Build{ID: 1, Name: "rig"}
	b.SetPart(session.KindCPU, "AMD Ryzen 5 5600X", 160)
	b.SetPart(session.KindGPU, "MSI RTX 4060", 300)
	return b
}

func TestReviewSuccess(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("auth = %q", auth)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) == 1 {
			gotPrompt = req.Messages[0].Content
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Good pairing. 8/10."}},
			},
		})
	}))
	defer srv.Close()

	r := New(Config{APIKey: "test-key", APIBase: srv.URL, Model: "gpt-4o-mini"})
	got := r.Review(context.Background(), testBuild())
	if got != "Good pairing. 8/10." {
		t.Fatalf("review = %q", got)
	}
	if !strings.Contains(gotPrompt, "AMD Ryzen 5 5600X ($160)") {
		t.Errorf("prompt missing cpu line: %q", gotPrompt)
	}
	if !strings.Contains(gotPrompt, "Total price: $460") {
		t.Errorf("prompt missing total: %q", gotPrompt)
	}
}

func TestReviewServerErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := New(Config{APIKey: "test-key", APIBase: srv.URL})
	if got := r.Review(context.Background(), testBuild()); got != fallbackText {
		t.Fatalf("review = %q, want fallback", got)
	}
}

func TestReviewEmptyChoicesFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	r := New(Config{APIKey: "test-key", APIBase: srv.URL})
	if got := r.Review(context.Background(), testBuild()); got != fallbackText {
		t.Fatalf("review = %q, want fallback", got)
	}
}

func TestReviewUnreachableFallsBack(t *testing.T) {
	r := New(Config{APIKey: "test-key", APIBase: "http://127.0.0.1:1", TimeoutMs: 200})
	if got := r.Review(context.Background(), testBuild()); got != fallbackText {
		t.Fatalf("review = %q, want fallback", got)
	}
}
