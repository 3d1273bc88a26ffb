package models

// ChatMessage is one turn of a chat conversation as sent by the client.
type ChatMessage struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

// ChatUserContext carries lightweight personalization hints with a chat request.
type ChatUserContext struct {
	Facts           []string `json:"facts,omitempty"`
	FavouriteDriver string   `json:"favourite_driver,omitempty"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Messages    []ChatMessage    `json:"messages"`
	UserContext *ChatUserContext `json:"user_context,omitempty"`
}

// Source is one deduplicated web citation attached to a grounded reply.
type Source struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// ChatResponse is the success body of POST /api/chat.
type ChatResponse struct {
	Reply    string   `json:"reply"`
	Sources  []Source `json:"sources,omitempty"`
	NewFacts []string `json:"new_facts,omitempty"`
}
