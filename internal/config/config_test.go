package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Fatalf("server.port=%d, want 8000", cfg.Server.Port)
	}
	if cfg.Ingest.ChunkSize != 1000 || cfg.Ingest.ChunkOverlap != 200 {
		t.Fatalf("chunking defaults: size=%d overlap=%d", cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	}
	if cfg.Chat.TopK != 4 {
		t.Fatalf("chat.top_k=%d, want 4", cfg.Chat.TopK)
	}
	if cfg.Quiz.ChunksPerQuestion != 2 {
		t.Fatalf("quiz.chunks_per_question=%d, want 2", cfg.Quiz.ChunksPerQuestion)
	}
	if cfg.Qdrant.CollectionPrefix != "pdf_collection_" {
		t.Fatalf("qdrant.collection_prefix=%q", cfg.Qdrant.CollectionPrefix)
	}
}

func TestAddress(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Host: "127.0.0.1", Port: 9000}}
	if got := cfg.Address(); got != "127.0.0.1:9000" {
		t.Fatalf("Address()=%q", got)
	}
}
