package domain

import "time"

// Session binds one uploaded document to its vector collection and quizzes
type Session struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	Filename   string    `json:"filename"`
	NumChunks  int       `json:"num_chunks"`
	CreatedAt  time.Time `json:"created_at"`
}

// Chunk is a contiguous span of extracted document text
type Chunk struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Page  int    `json:"page,omitempty"`
}

// UploadResponse is the response to a successful PDF upload
type UploadResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	NumChunks int    `json:"num_chunks"`
}

// DeleteSessionResponse confirms session deletion
type DeleteSessionResponse struct {
	Message string `json:"message"`
}
