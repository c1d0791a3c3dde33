package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driven"
	"github.com/custodia-labs/ingest-core/internal/runtime"
)

// DefaultConfidenceFloor is the confidence below which mappings become create_new
const DefaultConfidenceFloor = 0.5

const titleLimit = 120

// errMalformedResponse marks a classifier answer that cannot be trusted
var errMalformedResponse = errors.New("malformed classifier response")

// MappingEngine turns a chunk and its candidates into a MappingResult.
// The classifier is advisory: every answer is checked against the candidate
// list and the confidence floor before it is accepted.
type MappingEngine struct {
	services        *runtime.Services
	confidenceFloor float64
	timeout         time.Duration
	logger          *slog.Logger
}

// MappingEngineConfig holds dependencies for MappingEngine.
type MappingEngineConfig struct {
	Services        *runtime.Services
	ConfidenceFloor float64
	Timeout         time.Duration
	Logger          *slog.Logger
}

// NewMappingEngine creates a new mapping engine.
func NewMappingEngine(cfg MappingEngineConfig) *MappingEngine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	floor := cfg.ConfidenceFloor
	if floor <= 0 || floor > 1 {
		floor = DefaultConfidenceFloor
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &MappingEngine{
		services:        cfg.Services,
		confidenceFloor: floor,
		timeout:         timeout,
		logger:          logger,
	}
}

// Available reports whether a classifier is configured
func (e *MappingEngine) Available() bool {
	return e.classifier() != nil
}

func (e *MappingEngine) classifier() driven.Classifier {
	if e.services == nil {
		return nil
	}
	return e.services.Classifier()
}

// Classify always returns a usable mapping. When the classifier fails, times
// out or answers malformed, the returned mapping is degraded and the error
// wraps ErrClassificationDegraded.
func (e *MappingEngine) Classify(ctx context.Context, chunk *domain.Chunk, docType domain.DocumentType) (*domain.MappingResult, error) {
	classifier := e.classifier()
	if classifier == nil {
		return domain.DegradedMapping(chunk.OriginalText), fmt.Errorf("%w: %w", domain.ErrClassificationDegraded, domain.ErrServiceUnavailable)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := classifier.Classify(callCtx, driven.ClassificationRequest{
		ChunkText:    chunk.OriginalText,
		DocumentType: docType,
		Candidates:   chunk.CandidateRecords,
	})
	if err == nil {
		var mapping *domain.MappingResult
		mapping, err = e.resolve(chunk, resp)
		if err == nil {
			return mapping, nil
		}
	}

	e.logger.Warn("classification degraded",
		"chunk_id", chunk.ID,
		"model", classifier.Model(),
		"error", err,
	)
	return domain.DegradedMapping(chunk.OriginalText), fmt.Errorf("%w: %w", domain.ErrClassificationDegraded, err)
}

// resolve validates a classifier answer and applies the decision rules in
// order: target verification, risk default, confidence floor.
func (e *MappingEngine) resolve(chunk *domain.Chunk, resp *driven.ClassificationResponse) (*domain.MappingResult, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: empty response", errMalformedResponse)
	}

	action := domain.MappingAction(strings.ToLower(strings.TrimSpace(resp.Action)))
	if !action.IsValid() {
		return nil, fmt.Errorf("%w: unknown action %q", errMalformedResponse, resp.Action)
	}
	if resp.Confidence == nil {
		return nil, fmt.Errorf("%w: missing confidence", errMalformedResponse)
	}
	confidence := *resp.Confidence
	if confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("%w: confidence %v out of range", errMalformedResponse, confidence)
	}

	risk := domain.RiskLevel(strings.ToLower(strings.TrimSpace(resp.RiskLevel)))
	if risk != "" && !risk.IsValid() {
		return nil, fmt.Errorf("%w: unknown risk level %q", errMalformedResponse, resp.RiskLevel)
	}

	m := &domain.MappingResult{
		Action:               action,
		Confidence:           confidence,
		RiskLevel:            risk,
		Category:             strings.TrimSpace(resp.Category),
		ExtractedTitle:       strings.TrimSpace(resp.ExtractedTitle),
		ExtractedDescription: strings.TrimSpace(resp.ExtractedDescription),
		TargetRecordID:       strings.TrimSpace(resp.TargetRecordID),
		Reasoning:            strings.TrimSpace(resp.Reasoning),
	}

	// Only candidates the retriever supplied may be targeted
	if m.Action.TargetsExisting() {
		if !chunk.HasCandidate(m.TargetRecordID) {
			e.logger.Info("unverified target coerced to create_new",
				"chunk_id", chunk.ID,
				"target_record_id", m.TargetRecordID,
			)
			m.Action = domain.ActionCreateNew
			m.TargetRecordID = ""
			m.Reasoning = appendReason(m.Reasoning, "target not among candidates")
		}
	} else {
		m.TargetRecordID = ""
	}

	if m.RiskLevel == "" {
		m.RiskLevel = domain.DefaultRisk(m.Action)
	}

	if m.Confidence < e.confidenceFloor && m.Action != domain.ActionCreateNew {
		m.Action = domain.ActionCreateNew
		m.TargetRecordID = ""
		m.Reasoning = appendReason(m.Reasoning, fmt.Sprintf("confidence %.2f below floor %.2f", m.Confidence, e.confidenceFloor))
	}

	if m.Category == "" {
		m.Category = string(domain.ItemTypeAction)
	}
	if m.ExtractedDescription == "" {
		m.ExtractedDescription = strings.TrimSpace(chunk.OriginalText)
	}
	if m.ExtractedTitle == "" {
		m.ExtractedTitle = m.ExtractedDescription
	}
	m.ExtractedTitle = truncateRunes(firstLineOf(m.ExtractedTitle), titleLimit)

	return m, nil
}

func appendReason(reasoning, note string) string {
	if reasoning == "" {
		return note
	}
	return reasoning + "; " + note
}

func firstLineOf(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
