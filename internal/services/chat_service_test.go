package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pitwall/internal/genai"
	"pitwall/internal/models"
)

// fakeUpstream records how the chat service calls the generative API.
type fakeUpstream struct {
	reply  *genai.Reply
	err    error
	calls  int
	system string
}

func (u *fakeUpstream) GenerateContent(ctx context.Context, system string, messages []models.ChatMessage) (*genai.Reply, error) {
	u.calls++
	u.system = system
	if u.err != nil {
		return nil, u.err
	}
	return u.reply, nil
}

func TestChatAsk(t *testing.T) {
	upstream := &fakeUpstream{
		reply: &genai.Reply{
			Text: `Verstappen won in Jeddah.

[FACTS] ["interested in race strategy"]`,
			Sources: []models.Source{
				{URL: "https://example.com/report", Title: "Race report"},
				{URL: "https://example.com/report", Title: "Duplicate"},
			},
		},
	}

	svc := NewChatService(upstream, nil, nil, 2026)
	resp, err := svc.Ask(context.Background(), "user-1", &models.ChatRequest{
		Messages: []models.ChatMessage{{Role: "user", Text: "Who won the last race?"}},
	})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if resp.Reply != "Verstappen won in Jeddah." {
		t.Errorf("Marker should be stripped from reply, got %q", resp.Reply)
	}
	if len(resp.NewFacts) != 1 || resp.NewFacts[0] != "interested in race strategy" {
		t.Errorf("Unexpected facts: %v", resp.NewFacts)
	}
	if len(resp.Sources) != 1 {
		t.Errorf("Duplicate sources should be removed, got %+v", resp.Sources)
	}
	if upstream.calls != 1 {
		t.Errorf("Expected 1 upstream call, got %d", upstream.calls)
	}
}

func TestChatAskEmptyConversation(t *testing.T) {
	upstream := &fakeUpstream{reply: &genai.Reply{Text: "unused"}}
	svc := NewChatService(upstream, nil, nil, 2026)

	_, err := svc.Ask(context.Background(), "user-1", &models.ChatRequest{})
	if !errors.Is(err, ErrEmptyConversation) {
		t.Fatalf("Expected ErrEmptyConversation, got %v", err)
	}

	_, err = svc.Ask(context.Background(), "user-1", nil)
	if !errors.Is(err, ErrEmptyConversation) {
		t.Fatalf("Expected ErrEmptyConversation for nil request, got %v", err)
	}

	if upstream.calls != 0 {
		t.Errorf("Upstream must not be called for an empty conversation, got %d calls", upstream.calls)
	}
}

func TestChatAskUpstreamError(t *testing.T) {
	upstream := &fakeUpstream{err: errors.New("503 from provider")}
	svc := NewChatService(upstream, nil, nil, 2026)

	_, err := svc.Ask(context.Background(), "user-1", &models.ChatRequest{
		Messages: []models.ChatMessage{{Role: "user", Text: "hi"}},
	})
	if err == nil {
		t.Fatal("Expected upstream error to surface")
	}
}

func TestChatAskMalformedMarkerKeepsFullText(t *testing.T) {
	raw := `Some answer. [FACTS] not-a-json-array`
	upstream := &fakeUpstream{reply: &genai.Reply{Text: raw}}
	svc := NewChatService(upstream, nil, nil, 2026)

	resp, err := svc.Ask(context.Background(), "user-1", &models.ChatRequest{
		Messages: []models.ChatMessage{{Role: "user", Text: "hi"}},
	})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if resp.Reply != raw {
		t.Errorf("Malformed marker should leave the reply untouched, got %q", resp.Reply)
	}
	if len(resp.NewFacts) != 0 {
		t.Errorf("Expected no facts, got %v", resp.NewFacts)
	}
}

func TestChatSystemInstructionUsesRequestContext(t *testing.T) {
	upstream := &fakeUpstream{reply: &genai.Reply{Text: "ok"}}
	svc := NewChatService(upstream, nil, nil, 2026)

	_, err := svc.Ask(context.Background(), "user-1", &models.ChatRequest{
		Messages: []models.ChatMessage{{Role: "user", Text: "hi"}},
		UserContext: &models.ChatUserContext{
			FavouriteDriver: "Lando Norris",
			Facts:           []string{"prefers metric units"},
		},
	})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if !strings.Contains(upstream.system, "2026 Formula 1 season") {
		t.Errorf("System instruction missing season framing: %q", upstream.system)
	}
	if !strings.Contains(upstream.system, "Lando Norris") {
		t.Errorf("System instruction missing favourite driver: %q", upstream.system)
	}
	if !strings.Contains(upstream.system, "prefers metric units") {
		t.Errorf("System instruction missing user facts: %q", upstream.system)
	}
	if !strings.Contains(upstream.system, FactMarker) {
		t.Errorf("System instruction missing fact marker protocol: %q", upstream.system)
	}
}

func TestChatRateLimit(t *testing.T) {
	upstream := &fakeUpstream{reply: &genai.Reply{Text: "ok"}}
	svc := NewChatService(upstream, nil, nil, 2026)

	req := &models.ChatRequest{Messages: []models.ChatMessage{{Role: "user", Text: "hi"}}}

	// Burst of 5 is allowed, the 6th call within the window is rejected.
	for i := 0; i < 5; i++ {
		if _, err := svc.Ask(context.Background(), "user-1", req); err != nil {
			t.Fatalf("Call %d should pass, got %v", i+1, err)
		}
	}
	if _, err := svc.Ask(context.Background(), "user-1", req); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("Expected ErrRateLimited, got %v", err)
	}

	// Another user has an independent bucket.
	if _, err := svc.Ask(context.Background(), "user-2", req); err != nil {
		t.Errorf("Other users should not be limited, got %v", err)
	}
}
