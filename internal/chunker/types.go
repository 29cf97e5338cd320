package chunker

// DefaultMaxChunkSize is used when Config.MaxChunkSize is not positive.
const DefaultMaxChunkSize = 1000

// DefaultSection labels text that precedes the first heading.
const DefaultSection = "Introduction"

// Chunk is one section-scoped piece of a document, ready for embedding.
type Chunk struct {
	Section string // nearest enclosing heading
	Text    string
}

// Chunker splits document content into ordered chunks.
type Chunker interface {
	Chunk(content string) []Chunk

	// Name is used in log lines.
	Name() string
}

// Config holds chunker settings.
type Config struct {
	MaxChunkSize int // in characters (code points)
}
