package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pitwall/internal/models"
)

const groundedResponse = `{
  "candidates": [
    {
      "content": {
        "parts": [
          { "text": "Verstappen won " },
          { "text": "the Saudi Arabian Grand Prix." }
        ]
      },
      "groundingMetadata": {
        "groundingChunks": [
          { "web": { "uri": "https://example.com/report", "title": "Race report" } },
          { "web": { "uri": "", "title": "no uri, skipped" } },
          {}
        ]
      }
    }
  ]
}`

func TestGenerateContent(t *testing.T) {
	var captured map[string]interface{}
	var gotPath, gotKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(groundedResponse))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "gemini-2.0-flash")
	reply, err := client.GenerateContent(context.Background(), "You are PitWall.", []models.ChatMessage{
		{Role: "user", Text: "Who won?"},
		{Role: "assistant", Text: "Let me check."},
		{Role: "user", Text: "Go on."},
	})
	if err != nil {
		t.Fatalf("GenerateContent failed: %v", err)
	}

	if gotPath != "/v1beta/models/gemini-2.0-flash:generateContent" {
		t.Errorf("Unexpected path %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("Expected api key header, got %q", gotKey)
	}

	// Candidate parts are concatenated.
	if reply.Text != "Verstappen won the Saudi Arabian Grand Prix." {
		t.Errorf("Unexpected reply text: %q", reply.Text)
	}

	// Only chunks with a web URI become sources.
	if len(reply.Sources) != 1 {
		t.Fatalf("Expected 1 source, got %+v", reply.Sources)
	}
	if reply.Sources[0].URL != "https://example.com/report" || reply.Sources[0].Title != "Race report" {
		t.Errorf("Unexpected source: %+v", reply.Sources[0])
	}

	// Request shape: system instruction, role mapping, search tool.
	if captured["system_instruction"] == nil {
		t.Error("Expected system_instruction in request")
	}
	contents := captured["contents"].([]interface{})
	if len(contents) != 3 {
		t.Fatalf("Expected 3 contents, got %d", len(contents))
	}
	second := contents[1].(map[string]interface{})
	if second["role"] != "model" {
		t.Errorf("Assistant role should map to model, got %v", second["role"])
	}
	tools := captured["tools"].([]interface{})
	if len(tools) != 1 {
		t.Fatalf("Expected 1 tool, got %d", len(tools))
	}
	if _, ok := tools[0].(map[string]interface{})["google_search"]; !ok {
		t.Error("Expected google_search tool in request")
	}
}

func TestGenerateContentNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "gemini-2.0-flash")
	_, err := client.GenerateContent(context.Background(), "", []models.ChatMessage{{Role: "user", Text: "hi"}})
	if !errors.Is(err, ErrNoReply) {
		t.Fatalf("Expected ErrNoReply, got %v", err)
	}
}

func TestGenerateContentUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "gemini-2.0-flash")
	_, err := client.GenerateContent(context.Background(), "", []models.ChatMessage{{Role: "user", Text: "hi"}})
	if err == nil {
		t.Fatal("Expected error for non-200 response")
	}
}
