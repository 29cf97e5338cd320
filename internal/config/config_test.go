package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDefaults(t *testing.T) {
	cfg := Config{}
	require.NoError(t, Init(&cfg))

	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "sow_documents", cfg.Collection)
	assert.Equal(t, "chromem", cfg.VectorStore)
	assert.Equal(t, "ollama", cfg.EmbedProvider)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, filepath.Join("data", "chromadb"), cfg.ChromaDir())
	assert.Equal(t, filepath.Join("data", "compliance_rules", "compliance_rules.json"), cfg.ComplianceRulesFile())
}

func TestInitFromEnv(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/sow")
	t.Setenv("COLLECTION_NAME", "product_knowledge")
	t.Setenv("EMBED_PROVIDER", "openai")
	t.Setenv("CHUNK_SIZE", "750")

	cfg := Config{}
	require.NoError(t, Init(&cfg))

	assert.Equal(t, "/srv/sow", cfg.DataDir)
	assert.Equal(t, "product_knowledge", cfg.Collection)
	assert.Equal(t, "openai", cfg.EmbedProvider)
	assert.Equal(t, 750, cfg.ChunkSize)
	assert.Equal(t, filepath.Join("/srv/sow", "historical_sows"), cfg.HistoricalSOWDir())
	assert.Equal(t, filepath.Join("/srv/sow", "product_kb"), cfg.ProductKBDir())
	assert.Equal(t, filepath.Join("/srv/sow", "index_manifest.json"), cfg.ManifestFile())
	assert.Equal(t, filepath.Join("/srv/sow", "chromadb"), cfg.ChromaDir())
	assert.Equal(t, filepath.Join("/srv/sow", "compliance_rules", "compliance_rules.json"), cfg.ComplianceRulesFile())
	assert.Equal(t, filepath.Join("/srv/sow", "mock_crm.json"), cfg.CRMFile())
	assert.Equal(t, filepath.Join("/srv/sow", "mock_products.json"), cfg.ProductCatalogFile())
}

func TestPathsFollowDataDirOverride(t *testing.T) {
	cfg := Config{}
	require.NoError(t, Init(&cfg))

	cfg.DataDir = "/tmp/alt"
	assert.Equal(t, filepath.Join("/tmp/alt", "chromadb"), cfg.ChromaDir())
	assert.Equal(t, filepath.Join("/tmp/alt", "compliance_rules", "compliance_rules.json"), cfg.ComplianceRulesFile())
	assert.Equal(t, filepath.Join("/tmp/alt", "mock_opportunities.json"), cfg.OpportunitiesFile())
}

func TestExplicitPathsWin(t *testing.T) {
	t.Setenv("CHROMA_PERSIST_DIR", "/var/chroma")
	t.Setenv("COMPLIANCE_RULES_FILE", "/etc/sow/rules.yaml")

	cfg := Config{}
	require.NoError(t, Init(&cfg))
	cfg.DataDir = "/tmp/alt"

	assert.Equal(t, "/var/chroma", cfg.ChromaDir())
	assert.Equal(t, "/etc/sow/rules.yaml", cfg.ComplianceRulesFile())
}

func TestInitRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "lots")

	cfg := Config{}
	assert.Error(t, Init(&cfg))
}
