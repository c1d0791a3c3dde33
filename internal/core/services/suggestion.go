package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driven"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driving"
)

// Ensure suggestionService implements SuggestionService
var _ driving.SuggestionService = (*suggestionService)(nil)

// suggestionService implements the SuggestionService interface
type suggestionService struct {
	store driven.SuggestionStore
	index *EmbeddingIndex
}

// NewSuggestionService creates a new SuggestionService.
// index may be nil; it is used to drop vectors of deleted records.
func NewSuggestionService(store driven.SuggestionStore, index *EmbeddingIndex) driving.SuggestionService {
	return &suggestionService{
		store: store,
		index: index,
	}
}

// Create stores a hand-written draft suggestion
func (s *suggestionService) Create(ctx context.Context, projectID string, req driving.CreateSuggestionRequest) (*domain.SuggestionItem, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: project is required", domain.ErrInvalidInput)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	itemType := req.Type
	if itemType == "" {
		itemType = domain.ItemTypeAction
	}
	if !itemType.IsValid() {
		return nil, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidInput, req.Type)
	}
	if req.Meta.Action != "" && !req.Meta.Action.IsValid() {
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, req.Meta.Action)
	}
	if req.ParentID != "" {
		if _, err := s.store.Get(ctx, projectID, req.ParentID); err != nil {
			return nil, fmt.Errorf("%w: parent %s: %w", domain.ErrInvalidInput, req.ParentID, err)
		}
	}

	item := &domain.SuggestionItem{
		ID:              uuid.NewString(),
		ProjectID:       projectID,
		Type:            itemType,
		Status:          domain.StatusSuggestion,
		Title:           title,
		Description:     strings.TrimSpace(req.Description),
		ParentID:        req.ParentID,
		Meta:            req.Meta,
		PendingArtifact: req.PendingArtifact,
	}
	if item.Meta.Action == "" {
		item.Meta.Action = domain.ActionCreateNew
	}
	if item.Meta.RiskLevel == "" {
		item.Meta.RiskLevel = domain.DefaultRisk(item.Meta.Action)
	}

	if err := s.store.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Get retrieves a work item
func (s *suggestionService) Get(ctx context.Context, projectID, id string) (*domain.SuggestionItem, error) {
	return s.store.Get(ctx, projectID, id)
}

// Update edits a draft. Confirmed records are read-only here.
func (s *suggestionService) Update(ctx context.Context, projectID, id string, req driving.UpdateSuggestionRequest) (*domain.SuggestionItem, error) {
	item, err := s.store.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if !item.IsSuggestion() {
		return nil, domain.ErrNotSuggestion
	}

	if req.Type != nil {
		if !req.Type.IsValid() {
			return nil, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidInput, *req.Type)
		}
		item.Type = *req.Type
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
		}
		item.Title = title
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, fmt.Errorf("%w: item cannot be its own parent", domain.ErrInvalidInput)
		}
		item.ParentID = *req.ParentID
	}

	if err := s.store.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete hard-deletes a work item and its record vector
func (s *suggestionService) Delete(ctx context.Context, projectID, id string) error {
	item, err := s.store.Get(ctx, projectID, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, projectID, id); err != nil {
		return err
	}
	if !item.IsSuggestion() && s.index != nil {
		// Orphaned vectors only cost retrieval precision, so this is best effort
		_ = s.index.Remove(ctx, projectID, id, domain.SourceTypeRecord)
	}
	return nil
}

// List returns a project's items matching filter, newest first
func (s *suggestionService) List(ctx context.Context, projectID string, filter domain.StatusFilter) ([]*domain.SuggestionItem, error) {
	switch filter {
	case "":
		filter = domain.FilterSuggestions
	case domain.FilterSuggestions, domain.FilterConfirmed, domain.FilterAll:
	default:
		return nil, fmt.Errorf("%w: unknown status filter %q", domain.ErrInvalidInput, filter)
	}
	return s.store.List(ctx, projectID, filter)
}
