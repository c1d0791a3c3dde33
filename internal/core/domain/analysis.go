package domain

import "time"

// SummaryCounts aggregates the per-chunk outcomes of an analysis
type SummaryCounts struct {
	Total       int `json:"total"`
	CreateNew   int `json:"create_new"`
	MapExisting int `json:"map_existing"`
	AppendSpec  int `json:"append_spec"`
	Ignore      int `json:"ignore"`
	Degraded    int `json:"degraded"`
	HighRisk    int `json:"high_risk"`
}

// Add counts a single mapping
func (s *SummaryCounts) Add(m *MappingResult) {
	s.Total++
	if m == nil {
		return
	}
	switch m.Action {
	case ActionCreateNew:
		s.CreateNew++
	case ActionMapExisting:
		s.MapExisting++
	case ActionAppendSpec:
		s.AppendSpec++
	case ActionIgnore:
		s.Ignore++
	}
	if m.Degraded {
		s.Degraded++
	}
	if m.RiskLevel == RiskHigh {
		s.HighRisk++
	}
}

// AnalysisResult is the immutable outcome of processing one document.
// Re-running analysis produces a new result.
type AnalysisResult struct {
	ID           string        `json:"id"`
	ProjectID    string        `json:"project_id"`
	DocumentType DocumentType  `json:"document_type"`
	ArtifactID   string        `json:"artifact_id,omitempty"`
	Chunks       []Chunk       `json:"chunks"`
	Summary      SummaryCounts `json:"summary"`
	ProcessedAt  time.Time     `json:"processed_at"`
}

// NewAnalysisResult builds a result and computes its summary counts
func NewAnalysisResult(id, projectID string, docType DocumentType, artifactID string, chunks []Chunk, processedAt time.Time) *AnalysisResult {
	result := &AnalysisResult{
		ID:           id,
		ProjectID:    projectID,
		DocumentType: docType,
		ArtifactID:   artifactID,
		Chunks:       chunks,
		ProcessedAt:  processedAt,
	}
	for i := range chunks {
		result.Summary.Add(chunks[i].Mapping)
	}
	return result
}

// ItemFailure reports a single item that could not be committed
type ItemFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BatchResult is the outcome of a batch confirmation.
// Counts are always reported, even under partial failure.
type BatchResult struct {
	CreatedCount int           `json:"created_count"`
	FailedCount  int           `json:"failed_count"`
	ConfirmedIDs []string      `json:"confirmed_ids"`
	Failures     []ItemFailure `json:"failures,omitempty"`
}
