// Package genai is a thin client for a Gemini-style generateContent API with
// Google-search grounding enabled. The chat proxy forwards one conversation
// per request; there is no streaming and no retrying here.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"pitwall/internal/models"
)

// ErrNoReply is returned when the model responds without any candidate text.
var ErrNoReply = errors.New("model returned no candidates")

// Reply is the model's answer plus any grounding citations it attached.
type Reply struct {
	Text    string
	Sources []models.Source
}

// Client calls the generative API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewClient creates a generative API client.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
	}
}

type generateRequest struct {
	SystemInstruction *content  `json:"system_instruction,omitempty"`
	Contents          []content `json:"contents"`
	Tools             []tool    `json:"tools,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type tool struct {
	GoogleSearch struct{} `json:"google_search"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

// GenerateContent sends the system instruction and conversation turns to the
// model and returns its reply with any web citations. Client roles map
// "assistant" -> "model"; everything else is sent as "user".
func (c *Client) GenerateContent(ctx context.Context, system string, messages []models.ChatMessage) (*Reply, error) {
	contents := make([]content, 0, len(messages))
	for _, msg := range messages {
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, content{
			Role:  role,
			Parts: []part{{Text: msg.Text}},
		})
	}

	reqBody := generateRequest{
		Contents: contents,
		Tools:    []tool{{}},
	}
	if system != "" {
		reqBody.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("model request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model API error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResponse generateResponse
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}

	if len(apiResponse.Candidates) == 0 {
		return nil, ErrNoReply
	}

	candidate := apiResponse.Candidates[0]
	var text string
	for _, p := range candidate.Content.Parts {
		text += p.Text
	}
	if text == "" {
		return nil, ErrNoReply
	}

	reply := &Reply{Text: text}
	if candidate.GroundingMetadata != nil {
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk.Web != nil && chunk.Web.URI != "" {
				reply.Sources = append(reply.Sources, models.Source{
					URL:   chunk.Web.URI,
					Title: chunk.Web.Title,
				})
			}
		}
	}

	return reply, nil
}
