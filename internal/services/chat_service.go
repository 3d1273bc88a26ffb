package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"pitwall/internal/genai"
	"pitwall/internal/models"

	"golang.org/x/time/rate"
)

// MaxSources caps the citations returned with a chat reply.
const MaxSources = 5

// Chat proxy errors mapped to distinct HTTP statuses by the handler.
var (
	ErrEmptyConversation = errors.New("conversation must contain at least one message")
	ErrRateLimited       = errors.New("too many chat requests")
)

// ChatUpstream is the generative API surface the chat service depends on.
type ChatUpstream interface {
	GenerateContent(ctx context.Context, system string, messages []models.ChatMessage) (*genai.Reply, error)
}

// ChatService forwards a bounded conversation to the grounded generative model
// with a season-aware system instruction, extracts any trailing fact marker
// and persists learned facts and the transcript onto the caller's profile.
type ChatService struct {
	upstream    ChatUpstream
	userService *UserService
	metrics     *Metrics
	season      int

	limiters sync.Map // userID -> *rate.Limiter
}

// NewChatService creates the chat proxy service. userService and metrics may
// be nil (persistence and instrumentation are then skipped).
func NewChatService(upstream ChatUpstream, userService *UserService, metrics *Metrics, season int) *ChatService {
	return &ChatService{
		upstream:    upstream,
		userService: userService,
		metrics:     metrics,
		season:      season,
	}
}

// Ask handles one chat round trip for an authenticated user.
func (s *ChatService) Ask(ctx context.Context, userID string, req *models.ChatRequest) (*models.ChatResponse, error) {
	started := time.Now()

	if req == nil || len(req.Messages) == 0 {
		s.countRequest("bad_request")
		return nil, ErrEmptyConversation
	}

	if !s.limiter(userID).Allow() {
		s.countRequest("rate_limited")
		return nil, ErrRateLimited
	}

	userCtx := s.resolveUserContext(ctx, userID, req.UserContext)
	system := s.buildSystemInstruction(userCtx)

	reply, err := s.upstream.GenerateContent(ctx, system, req.Messages)
	if err != nil {
		s.countRequest("upstream_error")
		return nil, fmt.Errorf("chat upstream failed: %w", err)
	}

	text, facts := ExtractFacts(reply.Text)
	if strings.Contains(reply.Text, FactMarker) && len(facts) == 0 {
		log.Printf("⚠️  [CHAT] Dropped malformed fact marker for user %s", userID)
	}

	response := &models.ChatResponse{
		Reply:    text,
		Sources:  dedupeSources(reply.Sources, MaxSources),
		NewFacts: facts,
	}

	s.persist(ctx, userID, req, response)

	s.countRequest("success")
	if s.metrics != nil {
		s.metrics.ChatRequestLatency.Observe(time.Since(started).Seconds())
	}

	return response, nil
}

// resolveUserContext prefers the stored profile context and falls back to the
// hints the client sent with the request.
func (s *ChatService) resolveUserContext(ctx context.Context, userID string, fromRequest *models.ChatUserContext) *models.ChatUserContext {
	if s.userService != nil {
		stored, err := s.userService.Context(ctx, userID)
		if err == nil && stored != nil && (len(stored.Facts) > 0 || stored.FavouriteDriver != "") {
			return stored
		}
		if err != nil {
			log.Printf("⚠️  [CHAT] Failed to load context for %s: %v", userID, err)
		}
	}

	if fromRequest != nil {
		return fromRequest
	}
	return &models.ChatUserContext{}
}

// buildSystemInstruction embeds the season framing and the caller's known
// preferences so replies are personalized from the first turn.
func (s *ChatService) buildSystemInstruction(userCtx *models.ChatUserContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are PitWall, an expert assistant for the %d Formula 1 season.
Answer questions about drivers, teams, races, results and championship standings.
Use web search for anything after your knowledge cutoff and keep answers concise.
`, s.season)

	if userCtx.FavouriteDriver != "" {
		fmt.Fprintf(&b, "\nThe user's favourite driver is %s.\n", userCtx.FavouriteDriver)
	}

	if len(userCtx.Facts) > 0 {
		b.WriteString("\nKnown user preferences:\n")
		for _, fact := range userCtx.Facts {
			fmt.Fprintf(&b, "- %s\n", fact)
		}
	}

	fmt.Fprintf(&b, `
When the conversation reveals a new durable user preference, append a final line:
%s ["<short fact>", ...]
Only include genuinely new facts. Omit the line entirely when there are none.`, FactMarker)

	return b.String()
}

// persist stores learned facts and the latest exchange on the profile. Best
// effort only; a storage error never blocks the reply.
func (s *ChatService) persist(ctx context.Context, userID string, req *models.ChatRequest, resp *models.ChatResponse) {
	if s.userService == nil {
		return
	}

	if err := s.userService.AddFacts(ctx, userID, resp.NewFacts); err != nil {
		log.Printf("⚠️  [CHAT] Failed to persist facts for %s: %v", userID, err)
	}

	now := time.Now().UTC()
	last := req.Messages[len(req.Messages)-1]
	turns := []models.TranscriptTurn{
		{Role: "user", Text: last.Text, Timestamp: now},
		{Role: "assistant", Text: resp.Reply, Timestamp: now},
	}
	if err := s.userService.AppendTranscript(ctx, userID, turns); err != nil {
		log.Printf("⚠️  [CHAT] Failed to persist transcript for %s: %v", userID, err)
	}
}

// limiter returns the per-user token bucket (1 request per 3s, burst 5).
func (s *ChatService) limiter(userID string) *rate.Limiter {
	if limiter, ok := s.limiters.Load(userID); ok {
		return limiter.(*rate.Limiter)
	}

	newLimiter := rate.NewLimiter(rate.Every(3*time.Second), 5)
	actual, _ := s.limiters.LoadOrStore(userID, newLimiter)
	return actual.(*rate.Limiter)
}

func (s *ChatService) countRequest(status string) {
	if s.metrics != nil {
		s.metrics.ChatRequests.WithLabelValues(status).Inc()
	}
}

// dedupeSources removes duplicate citations by URL, preserving order, capped
// at limit.
func dedupeSources(sources []models.Source, limit int) []models.Source {
	seen := make(map[string]struct{}, len(sources))
	out := make([]models.Source, 0, len(sources))
	for _, src := range sources {
		if _, dup := seen[src.URL]; dup {
			continue
		}
		seen[src.URL] = struct{}{}
		out = append(out, src)
		if len(out) == limit {
			break
		}
	}
	return out
}
