// Package corpus defines the retrievable units of the regulation corpus
// and the immutable in-memory aggregate handed to the search engine.
package corpus

// Chunk is a sub-section-level slice of a regulation, the smallest
// retrievable content unit.
type Chunk struct {
	ID           string `json:"id"`
	SectionID    string `json:"section_id"`
	SectionTitle string `json:"section_title"`
	Subsection   string `json:"subsection"` // hierarchical path, e.g. "(3)(l)"
	Text         string `json:"text"`       // short chunk body used for scoring
	FullText     string `json:"full_text"`  // full section text for display
	SourceURL    string `json:"source_url"`
	Category     string `json:"category"`
	EnrichedText string `json:"enriched_text,omitempty"` // embedding-generation input only
}

// QAPair is a curated question/answer derived from a regulation section.
type QAPair struct {
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	SectionID    string `json:"section_id"`
	SectionTitle string `json:"section_title"`
	SourceURL    string `json:"source_url"`
}

// EmbeddingMeta describes how an embedding set was produced. Stored
// alongside the vectors so a mismatched model, prefix convention, or
// truncation dimension fails loudly at load time instead of silently
// degrading similarity scores.
type EmbeddingMeta struct {
	SchemaVersion int
	Model         string
	Dimensions    int
	DocPrefix     string // task type used when the corpus was embedded
	QueryPrefix   string // task type expected for live queries
}

// SchemaVersion is the current embedding set schema version.
const SchemaVersion = 1

// Corpus is the process-wide, read-only retrieval corpus. It is built once
// at startup and shared by all concurrent queries without locking; nothing
// mutates it after load.
type Corpus struct {
	Chunks  []Chunk
	QAPairs []QAPair

	// ChunkEmbeddings maps chunk ID to its vector. Chunks without an
	// entry are skipped during vector scoring (partial-corpus tolerance).
	ChunkEmbeddings map[string][]float32

	// QuestionEmbeddings maps the verbatim question text to its vector.
	QuestionEmbeddings map[string][]float32

	Meta EmbeddingMeta
}

// ChunkByID returns the chunk with the given ID, or nil.
func (c *Corpus) ChunkByID(id string) *Chunk {
	for i := range c.Chunks {
		if c.Chunks[i].ID == id {
			return &c.Chunks[i]
		}
	}
	return nil
}

// Size returns the number of content chunks.
func (c *Corpus) Size() int {
	return len(c.Chunks)
}
