package chunker

import (
	"regexp"
	"strings"
)

// headingLine matches level 1-3 ATX headings. Deeper headings stay in the body.
var headingLine = regexp.MustCompile(`(?m)^#{1,3}[ \t]+.*\S.*$`)

// MarkdownChunker splits markdown on level 1-3 headings and packs oversized
// sections paragraph by paragraph.
type MarkdownChunker struct {
	config Config
}

// NewMarkdownChunker falls back to DefaultMaxChunkSize when the configured
// size is not positive.
func NewMarkdownChunker(config Config) *MarkdownChunker {
	if config.MaxChunkSize <= 0 {
		config.MaxChunkSize = DefaultMaxChunkSize
	}
	return &MarkdownChunker{config: config}
}

func (m *MarkdownChunker) Name() string {
	return "markdown"
}

func (m *MarkdownChunker) MaxChunkSize() int {
	return m.config.MaxChunkSize
}

// Chunk returns the document's chunks in emission order. Heading lines act as
// delimiters: their text becomes the section label and is not part of any body.
func (m *MarkdownChunker) Chunk(content string) []Chunk {
	var chunks []Chunk
	section := DefaultSection

	last := 0
	for _, loc := range headingLine.FindAllStringIndex(content, -1) {
		chunks = append(chunks, m.finalizeChunk(content[last:loc[0]], section)...)
		section = sectionName(content[loc[0]:loc[1]])
		last = loc[1]
	}
	chunks = append(chunks, m.finalizeChunk(content[last:], section)...)

	return chunks
}

// finalizeChunk emits the accumulated body of one section.
func (m *MarkdownChunker) finalizeChunk(body, section string) []Chunk {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}

	if Len(body) <= m.config.MaxChunkSize {
		return []Chunk{{Section: section, Text: body}}
	}

	return m.splitLargeChunk(body, section)
}

// splitLargeChunk greedily packs paragraphs into chunks. A paragraph that is
// larger than the limit on its own is emitted unsplit.
func (m *MarkdownChunker) splitLargeChunk(body, section string) []Chunk {
	var chunks []Chunk
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, Chunk{Section: section, Text: current.String()})
			current.Reset()
			currentLen = 0
		}
	}

	for _, para := range SplitByParagraphs(body) {
		paraLen := Len(para)

		// the "\n\n" joiner counts towards the limit
		if currentLen > 0 && currentLen+2+paraLen > m.config.MaxChunkSize {
			flush()
		}

		if currentLen > 0 {
			current.WriteString("\n\n")
			currentLen += 2
		}
		current.WriteString(para)
		currentLen += paraLen
	}
	flush()

	return chunks
}
