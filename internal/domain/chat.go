package domain

// ChatRequest is the request to ask a question against a session's document
type ChatRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Query     string `json:"query"`
}

// ChatResponse is the answer plus the chunks supplied as context
type ChatResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// RetrievedChunk is a chunk returned by similarity search
type RetrievedChunk struct {
	Chunk
	Score float32 `json:"score"`
}
