package config

import (
	"path/filepath"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	DataDir          string `env:"DATA_DIR" envDefault:"./data"`
	// ChromaPersistDir and RulesFile default to locations under DataDir.
	ChromaPersistDir string `env:"CHROMA_PERSIST_DIR"`
	Collection       string `env:"COLLECTION_NAME" envDefault:"sow_documents"`

	// VectorStore selects the backend: "chromem" or "pgvector".
	VectorStore string `env:"VECTOR_STORE" envDefault:"chromem"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	// EmbedProvider selects the embedding backend: "ollama", "openai" or "hash".
	EmbedProvider    string `env:"EMBED_PROVIDER" envDefault:"ollama"`
	OllamaURL        string `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	OllamaEmbedModel string `env:"OLLAMA_EMBED_MODEL" envDefault:"nomic-embed-text"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL"`
	OpenAIEmbedModel string `env:"OPENAI_EMBED_MODEL" envDefault:"text-embedding-3-small"`
	EmbedDimension   int    `env:"EMBED_DIMENSION" envDefault:"0"`

	ChunkSize int `env:"CHUNK_SIZE" envDefault:"1000"`

	RulesFile string `env:"COMPLIANCE_RULES_FILE"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Init fills cfg from the environment.
func Init(cfg interface{}) error {
	return env.Parse(cfg)
}

// HistoricalSOWDir is where past statements of work are read from at index time.
func (c *Config) HistoricalSOWDir() string {
	return filepath.Join(c.DataDir, "historical_sows")
}

// ProductKBDir holds the product knowledge base documents.
func (c *Config) ProductKBDir() string {
	return filepath.Join(c.DataDir, "product_kb")
}

func (c *Config) ManifestFile() string {
	return filepath.Join(c.DataDir, "index_manifest.json")
}

// ChromaDir is the chromem persistence directory.
func (c *Config) ChromaDir() string {
	if c.ChromaPersistDir != "" {
		return c.ChromaPersistDir
	}
	return filepath.Join(c.DataDir, "chromadb")
}

// ComplianceRulesFile is the rules document the reviewer loads.
func (c *Config) ComplianceRulesFile() string {
	if c.RulesFile != "" {
		return c.RulesFile
	}
	return filepath.Join(c.DataDir, "compliance_rules", "compliance_rules.json")
}

func (c *Config) CRMFile() string {
	return filepath.Join(c.DataDir, "mock_crm.json")
}

func (c *Config) OpportunitiesFile() string {
	return filepath.Join(c.DataDir, "mock_opportunities.json")
}

// ProductCatalogFile lists products by name and alias. It is consulted
// before the product knowledge base.
func (c *Config) ProductCatalogFile() string {
	return filepath.Join(c.DataDir, "mock_products.json")
}
