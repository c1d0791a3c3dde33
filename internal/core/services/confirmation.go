package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driven"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driving"
)

// Ensure ConfirmationOrchestrator implements ConfirmationService
var _ driving.ConfirmationService = (*ConfirmationOrchestrator)(nil)

// DefaultLockTTL bounds how long a single confirmation may hold its item lock
const DefaultLockTTL = 30 * time.Second

// ConfirmationOrchestrator commits suggestions into confirmed records.
// Per item it:
//  1. Locks the item and re-reads it
//  2. Materializes the pending artifact, if any
//  3. Resolves parent ids through the batch remap table
//  4. Applies the type's confirmation rule and persists, discarding a
//     freshly materialized artifact if that fails
//  5. Enrolls the artifact once, then the confirmed record (best effort)
type ConfirmationOrchestrator struct {
	suggestionStore driven.SuggestionStore
	artifactStore   driven.ArtifactStore
	index           *EmbeddingIndex
	lock            driven.DistributedLock // optional
	lockTTL         time.Duration
	logger          *slog.Logger
}

// ConfirmationOrchestratorConfig holds dependencies for ConfirmationOrchestrator.
type ConfirmationOrchestratorConfig struct {
	SuggestionStore driven.SuggestionStore
	ArtifactStore   driven.ArtifactStore
	Index           *EmbeddingIndex
	Lock            driven.DistributedLock
	LockTTL         time.Duration
	Logger          *slog.Logger
}

// NewConfirmationOrchestrator creates a new confirmation orchestrator.
func NewConfirmationOrchestrator(cfg ConfirmationOrchestratorConfig) *ConfirmationOrchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}

	return &ConfirmationOrchestrator{
		suggestionStore: cfg.SuggestionStore,
		artifactStore:   cfg.ArtifactStore,
		index:           cfg.Index,
		lock:            cfg.Lock,
		lockTTL:         ttl,
		logger:          logger,
	}
}

// ConfirmItem confirms a single suggestion
func (o *ConfirmationOrchestrator) ConfirmItem(ctx context.Context, projectID, id string) (*domain.SuggestionItem, error) {
	return o.confirm(ctx, projectID, id, nil)
}

// ConfirmSelected confirms ids in hierarchy order. Failures are counted and
// skipped; children of a failed in-batch parent fail too, so no confirmed
// record ever points at an unresolved draft.
func (o *ConfirmationOrchestrator) ConfirmSelected(ctx context.Context, projectID string, ids []string) (*domain.BatchResult, error) {
	result := &domain.BatchResult{ConfirmedIDs: []string{}}
	fail := func(id string, err error) {
		result.FailedCount++
		result.Failures = append(result.Failures, domain.ItemFailure{ID: id, Error: err.Error()})
		o.logger.Warn("confirmation failed", "project_id", projectID, "item_id", id, "error", err)
	}

	// Load the selection, deduplicated
	seen := make(map[string]bool, len(ids))
	var items []*domain.SuggestionItem
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		item, err := o.suggestionStore.Get(ctx, projectID, id)
		if err != nil {
			fail(id, err)
			continue
		}
		items = append(items, item)
	}

	// Parents before children
	levels := domain.HierarchyLevels(items)
	sort.SliceStable(items, func(i, j int) bool {
		return levels[items[i].ID] < levels[items[j].ID]
	})

	batch := make(map[string]bool, len(items))
	for _, it := range items {
		batch[it.ID] = true
	}

	remap := make(map[string]string, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			fail(item.ID, err)
			continue
		}
		if item.ParentID != "" && batch[item.ParentID] {
			if _, resolved := remap[item.ParentID]; !resolved {
				fail(item.ID, fmt.Errorf("%w: parent %s was not confirmed", domain.ErrMaterialization, item.ParentID))
				continue
			}
		}

		confirmed, err := o.confirm(ctx, projectID, item.ID, remap)
		if err != nil {
			fail(item.ID, err)
			continue
		}
		remap[item.ID] = confirmed.ID
		result.CreatedCount++
		result.ConfirmedIDs = append(result.ConfirmedIDs, confirmed.ID)
	}

	o.logger.Info("batch confirmation completed",
		"project_id", projectID,
		"created", result.CreatedCount,
		"failed", result.FailedCount,
	)
	return result, nil
}

// RejectSelected hard-deletes every selected suggestion. Items already gone
// are ignored; confirmed records are not touched.
func (o *ConfirmationOrchestrator) RejectSelected(ctx context.Context, projectID string, ids []string) error {
	var errs []error
	for _, id := range ids {
		item, err := o.suggestionStore.Get(ctx, projectID, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("get %s: %w", id, err))
			continue
		}
		if !item.IsSuggestion() {
			errs = append(errs, fmt.Errorf("reject %s: %w", id, domain.ErrNotSuggestion))
			continue
		}
		if err := o.suggestionStore.Delete(ctx, projectID, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			errs = append(errs, fmt.Errorf("delete %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (o *ConfirmationOrchestrator) confirm(ctx context.Context, projectID, id string, remap map[string]string) (*domain.SuggestionItem, error) {
	release, err := o.acquire(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	defer release()

	// Step 1: Re-read under the lock so a concurrent confirm is observed
	item, err := o.suggestionStore.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if !item.IsSuggestion() {
		return nil, fmt.Errorf("%s: %w", id, domain.ErrNotSuggestion)
	}
	if _, ok := domain.ConfirmationRuleFor(item.Type); !ok {
		return nil, fmt.Errorf("%w: unknown item type %q", domain.ErrInvalidInput, item.Type)
	}

	var target *domain.SuggestionItem
	if item.Meta.Action == domain.ActionAppendSpec {
		if target, err = o.loadTarget(ctx, item); err != nil {
			return nil, err
		}
	}

	// Step 2: Resolve the source artifact
	var artifact *domain.Artifact
	created := false
	if item.PendingArtifact != nil && item.SourceArtifactID == "" {
		if artifact, err = o.materialize(ctx, item); err != nil {
			return nil, err
		}
		item.SourceArtifactID = artifact.ID
		created = true
	} else if item.SourceArtifactID != "" {
		if artifact, err = o.loadArtifact(ctx, projectID, item.SourceArtifactID); err != nil {
			return nil, err
		}
	}

	// Step 3: Resolve parent
	if mapped, ok := remap[item.ParentID]; ok {
		item.ParentID = mapped
	}

	// Step 4: Apply rule and persist
	if target != nil {
		if err := o.appendSpec(ctx, target, item.Description); err != nil {
			o.discardArtifact(projectID, artifact, created)
			return nil, err
		}
	}
	if err := item.ApplyConfirmation(time.Now()); err != nil {
		o.discardArtifact(projectID, artifact, created)
		return nil, err
	}
	if err := o.suggestionStore.Update(ctx, item); err != nil {
		o.discardArtifact(projectID, artifact, created)
		return nil, fmt.Errorf("%w: persist record: %w", domain.ErrMaterialization, err)
	}

	// Step 5: Enroll the artifact exactly once, then the record
	if artifact != nil {
		o.enrollArtifact(ctx, artifact)
	}
	o.enrollRecord(ctx, item)

	o.logger.Info("suggestion confirmed",
		"project_id", projectID,
		"item_id", item.ID,
		"type", item.Type,
		"status", item.Status,
	)
	return item, nil
}

// acquire takes the per-item lock. Without a lock backend it is a no-op.
func (o *ConfirmationOrchestrator) acquire(ctx context.Context, projectID, id string) (func(), error) {
	if o.lock == nil {
		return func() {}, nil
	}
	name := "confirm:" + projectID + ":" + id
	acquired, err := o.lock.Acquire(ctx, name, o.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire lock for %s: %w", id, err)
	}
	if !acquired {
		return nil, fmt.Errorf("%s: %w", id, domain.ErrItemLocked)
	}
	return func() {
		// Use a fresh context so release survives caller cancellation
		if err := o.lock.Release(context.Background(), name); err != nil {
			o.logger.Warn("failed to release lock", "lock", name, "error", err)
		}
	}, nil
}

func (o *ConfirmationOrchestrator) loadTarget(ctx context.Context, item *domain.SuggestionItem) (*domain.SuggestionItem, error) {
	targetID := item.Meta.TargetRecordID
	if targetID == "" {
		return nil, fmt.Errorf("%w: append_spec without target", domain.ErrMaterialization)
	}
	target, err := o.suggestionStore.Get(ctx, item.ProjectID, targetID)
	if err != nil {
		return nil, fmt.Errorf("%w: load target %s: %w", domain.ErrMaterialization, targetID, err)
	}
	if target.IsSuggestion() {
		return nil, fmt.Errorf("%w: target %s is not confirmed", domain.ErrMaterialization, targetID)
	}
	return target, nil
}

func (o *ConfirmationOrchestrator) appendSpec(ctx context.Context, target *domain.SuggestionItem, spec string) error {
	// Skip if a retried confirmation already appended this text
	for _, existing := range target.Meta.Specifications {
		if existing == spec {
			return nil
		}
	}
	target.Meta.Specifications = append(target.Meta.Specifications, spec)
	if err := o.suggestionStore.Update(ctx, target); err != nil {
		return fmt.Errorf("%w: append specification to %s: %w", domain.ErrMaterialization, target.ID, err)
	}
	return nil
}

func (o *ConfirmationOrchestrator) materialize(ctx context.Context, item *domain.SuggestionItem) (*domain.Artifact, error) {
	if o.artifactStore == nil {
		return nil, fmt.Errorf("%w: no artifact store", domain.ErrMaterialization)
	}
	p := item.PendingArtifact
	now := time.Now()
	artifact := &domain.Artifact{
		ID:              uuid.NewString(),
		ProjectID:       item.ProjectID,
		ContentType:     p.ContentType,
		OriginalContent: p.Content,
		Title:           item.Title,
		Meta: map[string]string{
			"document_type":  string(p.DocumentType),
			"chunk_id":       p.ChunkID,
			"source_item_id": item.ID,
		},
		EnrollmentState: domain.EnrollmentPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if artifact.ContentType == "" {
		artifact.ContentType = "text/plain"
	}
	if err := o.artifactStore.Create(ctx, artifact); err != nil {
		return nil, fmt.Errorf("%w: create artifact: %w", domain.ErrMaterialization, err)
	}
	return artifact, nil
}

func (o *ConfirmationOrchestrator) loadArtifact(ctx context.Context, projectID, artifactID string) (*domain.Artifact, error) {
	if o.artifactStore == nil {
		return nil, fmt.Errorf("%w: no artifact store", domain.ErrMaterialization)
	}
	artifact, err := o.artifactStore.Get(ctx, projectID, artifactID)
	if err != nil {
		return nil, fmt.Errorf("%w: load artifact %s: %w", domain.ErrMaterialization, artifactID, err)
	}
	return artifact, nil
}

// discardArtifact removes an artifact created by a confirmation that did not
// commit, so a retry materializes it afresh.
func (o *ConfirmationOrchestrator) discardArtifact(projectID string, artifact *domain.Artifact, created bool) {
	if !created || artifact == nil {
		return
	}
	if err := o.artifactStore.Delete(context.Background(), projectID, artifact.ID); err != nil {
		o.logger.Error("failed to discard uncommitted artifact", "artifact_id", artifact.ID, "error", err)
	}
}

// enrollArtifact embeds a pending artifact and marks it enrolled. Failures
// are logged; the confirmed record stands either way.
func (o *ConfirmationOrchestrator) enrollArtifact(ctx context.Context, artifact *domain.Artifact) {
	if !artifact.IsTemporary() || o.index == nil {
		return
	}

	meta := artifactMetadata(artifact)
	if err := o.index.Embed(ctx, artifact.OriginalContent, artifact.ID, domain.SourceTypeArtifact, artifact.ProjectID, meta); err != nil {
		o.logger.Warn("artifact enrollment failed", "artifact_id", artifact.ID, "error", err)
		return
	}

	artifact.MarkEnrolled(time.Now())
	if err := o.artifactStore.Update(ctx, artifact); err != nil {
		// The artifact stays pending and a later confirmation embeds it
		// again; the upsert keeps a single index entry.
		o.logger.Error("failed to mark artifact enrolled", "artifact_id", artifact.ID, "error", err)
	}
}

func (o *ConfirmationOrchestrator) enrollRecord(ctx context.Context, item *domain.SuggestionItem) {
	if o.index == nil {
		return
	}
	if err := o.index.Embed(ctx, item.EmbeddingText(), item.ID, domain.SourceTypeRecord, item.ProjectID, recordMetadata(item)); err != nil {
		o.logger.Warn("record enrollment failed", "item_id", item.ID, "error", err)
	}
}
