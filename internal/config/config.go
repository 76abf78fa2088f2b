package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for docquiz
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Qdrant   QdrantConfig   `mapstructure:"qdrant"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Quiz     QuizConfig     `mapstructure:"quiz"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds session/quiz store configuration. An empty path
// selects the in-memory repositories.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LLMConfig holds the OpenAI-compatible provider configuration
type LLMConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	LLMModel       string        `mapstructure:"llm_model"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	EmbeddingDim   int           `mapstructure:"embedding_dim"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// QdrantConfig holds vector database configuration
type QdrantConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	APIKey           string        `mapstructure:"api_key"`
	UseTLS           bool          `mapstructure:"use_tls"`
	CollectionPrefix string        `mapstructure:"collection_prefix"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// IngestConfig holds chunking and embedding configuration
type IngestConfig struct {
	ChunkSize        int `mapstructure:"chunk_size"`
	ChunkOverlap     int `mapstructure:"chunk_overlap"`
	EmbedBatchSize   int `mapstructure:"embed_batch_size"`
	EmbedConcurrency int `mapstructure:"embed_concurrency"`
}

// ChatConfig holds chat retrieval and generation configuration
type ChatConfig struct {
	TopK        int     `mapstructure:"top_k"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// QuizConfig holds quiz generation configuration
type QuizConfig struct {
	ChunksPerQuestion int     `mapstructure:"chunks_per_question"`
	MaxContextChars   int     `mapstructure:"max_context_chars"`
	MaxTokens         int     `mapstructure:"max_tokens"`
	Temperature       float64 `mapstructure:"temperature"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("DOCQUIZ")
	v.AutomaticEnv()

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)

	v.SetDefault("database.path", "./data/docquiz.db")

	v.SetDefault("llm.base_url", "http://localhost:11434/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.llm_model", "qwen2.5:7b")
	v.SetDefault("llm.embedding_model", "nomic-embed-text")
	v.SetDefault("llm.embedding_dim", 768)
	v.SetDefault("llm.timeout", 60*time.Second)

	v.SetDefault("qdrant.host", "localhost")
	v.SetDefault("qdrant.port", 6334)
	v.SetDefault("qdrant.api_key", "")
	v.SetDefault("qdrant.use_tls", false)
	v.SetDefault("qdrant.collection_prefix", "pdf_collection_")
	v.SetDefault("qdrant.timeout", 15*time.Second)

	v.SetDefault("ingest.chunk_size", 1000)
	v.SetDefault("ingest.chunk_overlap", 200)
	v.SetDefault("ingest.embed_batch_size", 16)
	v.SetDefault("ingest.embed_concurrency", 4)

	v.SetDefault("chat.top_k", 4)
	v.SetDefault("chat.max_tokens", 500)
	v.SetDefault("chat.temperature", 0.7)

	v.SetDefault("quiz.chunks_per_question", 2)
	v.SetDefault("quiz.max_context_chars", 3000)
	v.SetDefault("quiz.max_tokens", 2000)
	v.SetDefault("quiz.temperature", 0.8)

	v.SetDefault("cors.allow_origins", []string{"http://localhost:3000"})
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
