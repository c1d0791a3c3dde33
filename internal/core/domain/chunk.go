package domain

// SourceLocation pins a chunk to its position in the source document.
// Offsets are byte offsets into the original text; EndOffset is exclusive.
type SourceLocation struct {
	Index       int `json:"index"`
	StartOffset int `json:"start_offset"`
	EndOffset   int `json:"end_offset"`
}

// Candidate is an existing record retrieved as a plausible match for a chunk
type Candidate struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Similarity  float64 `json:"similarity"`
}

// Chunk is a bounded, ordered slice of a source document together with the
// result of retrieval and classification for it
type Chunk struct {
	ID               string         `json:"id"`
	OriginalText     string         `json:"original_text"`
	SourceLocation   SourceLocation `json:"source_location"`
	CandidateRecords []Candidate    `json:"candidate_records"`
	Mapping          *MappingResult `json:"mapping,omitempty"`
}

// HasCandidate reports whether id is among the chunk's candidates
func (c *Chunk) HasCandidate(id string) bool {
	return containsCandidate(c.CandidateRecords, id)
}

func containsCandidate(candidates []Candidate, id string) bool {
	if id == "" {
		return false
	}
	for _, cand := range candidates {
		if cand.ID == id {
			return true
		}
	}
	return false
}
