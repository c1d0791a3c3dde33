package postprocessors

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
)

// DefaultSeparators is the priority order used when none is configured:
// paragraphs, lines, sentences, clauses, words.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "? ", "! ", "; ", ", ", " "}

// ChunkConfig configures the recursive splitter.
// Sizes are measured in runes.
type ChunkConfig struct {
	// ChunkSize is the maximum characters per chunk
	ChunkSize int `yaml:"chunk_size"`

	// ChunkOverlap is the approximate character overlap between neighbours
	ChunkOverlap int `yaml:"chunk_overlap"`

	// Separators are tried in priority order
	Separators []string `yaml:"separators"`
}

// DefaultChunkConfig returns sensible defaults.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		ChunkSize:    1000,
		ChunkOverlap: 200,
		Separators:   DefaultSeparators,
	}
}

// Validate rejects configurations the splitter cannot honour
func (c ChunkConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidChunkConfig, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d", domain.ErrInvalidChunkConfig, c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d",
			domain.ErrInvalidChunkConfig, c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

// Chunker splits documents into ordered, bounded, overlapping chunks using
// a prioritized separator list. It holds no state besides its config.
type Chunker struct {
	config ChunkConfig
}

// NewChunker creates a chunker with the given config.
func NewChunker(config ChunkConfig) (*Chunker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Chunker{config: config}, nil
}

// Name returns the processor name.
func (c *Chunker) Name() string {
	return "recursive_splitter"
}

// Config returns the chunker configuration.
func (c *Chunker) Config() ChunkConfig {
	return c.config
}

// Split breaks text into chunk strings. Empty text yields no chunks.
func (c *Chunker) Split(text string) []string {
	chunks, _ := c.SplitWithLocations(text)
	return chunks
}

// SplitWithLocations breaks text into chunks and reports the byte offsets of
// each chunk in text. Every chunk is text[StartOffset:EndOffset], and
// consecutive chunks overlap or abut so every byte of text is covered.
func (c *Chunker) SplitWithLocations(text string) ([]string, []domain.SourceLocation) {
	if text == "" {
		return nil, nil
	}
	spans := c.split(text, 0, c.config.Separators)
	chunks := make([]string, len(spans))
	locations := make([]domain.SourceLocation, len(spans))
	for i, sp := range spans {
		chunks[i] = text[sp.start:sp.end]
		locations[i] = domain.SourceLocation{Index: i, StartOffset: sp.start, EndOffset: sp.end}
	}
	return chunks, locations
}

// Split is the functional form of Chunker.Split.
func Split(text string, chunkSize, chunkOverlap int, separators []string) ([]string, error) {
	c, err := NewChunker(ChunkConfig{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap, Separators: separators})
	if err != nil {
		return nil, err
	}
	return c.Split(text), nil
}

// span is a half-open byte range.
type span struct {
	start, end int
}

// split recursively splits text, descending to finer separators for any
// merged chunk that is still too long. base is the offset of text within
// the whole document.
func (c *Chunker) split(text string, base int, separators []string) []span {
	sep, remaining, found := chooseSeparator(text, separators)
	if !found {
		return hardChop(text, base, c.config.ChunkSize)
	}

	var result []span
	for _, ch := range c.merge(text, segmentSeparated(text, sep)) {
		piece := text[ch.start:ch.end]
		if runeLen(piece) <= c.config.ChunkSize {
			result = append(result, span{base + ch.start, base + ch.end})
			continue
		}
		result = append(result, c.split(piece, base+ch.start, remaining)...)
	}
	return result
}

// segmentSeparated cuts text after each occurrence of sep. Runs of repeated
// separators stay on the segment before them, so segments are never bare
// separators unless text is nothing else.
func segmentSeparated(text, sep string) []span {
	var segs []span
	start, segStart := 0, 0
	for start < len(text) {
		end := len(text)
		if idx := strings.Index(text[start:], sep); idx >= 0 {
			end = start + idx + len(sep)
		}
		if text[start:end] == sep {
			if len(segs) > 0 {
				segs[len(segs)-1].end = end
				segStart = end
			}
			start = end
			continue
		}
		segs = append(segs, span{segStart, end})
		start, segStart = end, end
	}
	if segStart < len(text) {
		segs = append(segs, span{segStart, len(text)})
	}
	return segs
}

// merge greedily joins adjacent segments into chunks no longer than
// ChunkSize. When a chunk closes, the next one is seeded with a suffix of it
// no longer than ChunkOverlap.
func (c *Chunker) merge(text string, segs []span) []span {
	size := c.config.ChunkSize
	overlap := c.config.ChunkOverlap

	lens := make([]int, len(segs))
	for i, sg := range segs {
		lens[i] = runeLen(text[sg.start:sg.end])
	}

	var chunks []span
	first, total := 0, 0
	for i := range segs {
		if i > first && total+lens[i] > size {
			chunks = append(chunks, span{segs[first].start, segs[i-1].end})

			// Drop from the front until the retained suffix fits the overlap
			// and leaves room for the incoming segment.
			for first < i && (total > overlap || total+lens[i] > size) {
				total -= lens[first]
				first++
			}
		}
		total += lens[i]
	}
	if first < len(segs) {
		chunks = append(chunks, span{segs[first].start, segs[len(segs)-1].end})
	}
	return chunks
}

// chooseSeparator returns the first separator that occurs in text and the
// lower-priority separators after it.
func chooseSeparator(text string, separators []string) (string, []string, bool) {
	for i, sep := range separators {
		if sep != "" && strings.Contains(text, sep) {
			return sep, separators[i+1:], true
		}
	}
	return "", nil, false
}

// hardChop cuts text into exactly size-rune pieces; the last holds the remainder.
func hardChop(text string, base, size int) []span {
	var pieces []span
	start, n := 0, 0
	for i := range text {
		if n == size {
			pieces = append(pieces, span{base + start, base + i})
			start, n = i, 0
		}
		n++
	}
	return append(pieces, span{base + start, base + len(text)})
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
