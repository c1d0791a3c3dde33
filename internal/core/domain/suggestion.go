package domain

import (
	"strings"
	"time"
)

// ItemType is the closed set of work-item kinds a suggestion can become
type ItemType string

const (
	ItemTypeDecision ItemType = "decision"
	ItemTypeRule     ItemType = "rule"
	ItemTypeCR       ItemType = "cr"
	ItemTypeAction   ItemType = "action"
	ItemTypePending  ItemType = "pending"
)

// AllItemTypes lists every item type. The confirmation rule table must cover each.
var AllItemTypes = []ItemType{
	ItemTypeDecision,
	ItemTypeRule,
	ItemTypeCR,
	ItemTypeAction,
	ItemTypePending,
}

// IsValid reports whether the type is a known variant
func (t ItemType) IsValid() bool {
	_, ok := confirmationRules[t]
	return ok
}

// ItemTypeFromCategory maps a classifier category onto an item type.
// Unknown categories become actions.
func ItemTypeFromCategory(category string) ItemType {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "decision", "decisions":
		return ItemTypeDecision
	case "rule", "rules", "policy", "constraint":
		return ItemTypeRule
	case "cr", "change_request", "change request", "change":
		return ItemTypeCR
	case "pending", "question", "open_question", "open question":
		return ItemTypePending
	default:
		return ItemTypeAction
	}
}

// ItemStatus is the lifecycle status of a work item
type ItemStatus string

const (
	StatusSuggestion ItemStatus = "suggestion"
	StatusNotStarted ItemStatus = "not_started"
	StatusInProgress ItemStatus = "in_progress"
	StatusConfirmed  ItemStatus = "confirmed"
)

// MetaStatusActive is the meta status a confirmed decision carries
const MetaStatusActive = "active"

// ConfirmationRule is the terminal state an item type moves to on confirmation
type ConfirmationRule struct {
	Status     ItemStatus
	MetaStatus string
}

var confirmationRules = map[ItemType]ConfirmationRule{
	ItemTypeDecision: {Status: StatusConfirmed, MetaStatus: MetaStatusActive},
	ItemTypeRule:     {Status: StatusNotStarted},
	ItemTypeCR:       {Status: StatusInProgress},
	ItemTypeAction:   {Status: StatusNotStarted},
	ItemTypePending:  {Status: StatusNotStarted},
}

// ConfirmationRuleFor returns the rule for an item type
func ConfirmationRuleFor(t ItemType) (ConfirmationRule, bool) {
	rule, ok := confirmationRules[t]
	return rule, ok
}

// StatusFilter selects suggestions, confirmed records, or both
type StatusFilter string

const (
	FilterSuggestions StatusFilter = "suggestion"
	FilterConfirmed   StatusFilter = "confirmed"
	FilterAll         StatusFilter = "all"
)

// Matches reports whether status passes the filter
func (f StatusFilter) Matches(status ItemStatus) bool {
	switch f {
	case FilterSuggestions:
		return status == StatusSuggestion
	case FilterConfirmed:
		return status != StatusSuggestion
	default:
		return true
	}
}

// PendingArtifact holds raw content and provenance until a suggestion is confirmed
type PendingArtifact struct {
	Content        string         `json:"content"`
	ContentType    string         `json:"content_type"`
	DocumentType   DocumentType   `json:"document_type"`
	ChunkID        string         `json:"chunk_id"`
	SourceLocation SourceLocation `json:"source_location"`
	CapturedAt     time.Time      `json:"captured_at"`
}

// ItemMeta is the structured metadata carried by a work item
type ItemMeta struct {
	Status         string            `json:"status,omitempty"`
	Action         MappingAction     `json:"action,omitempty"`
	Confidence     float64           `json:"confidence"`
	RiskLevel      RiskLevel         `json:"risk_level,omitempty"`
	Category       string            `json:"category,omitempty"`
	TargetRecordID string            `json:"target_record_id,omitempty"`
	Reasoning      string            `json:"reasoning,omitempty"`
	Specifications []string          `json:"specifications,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// SuggestionItem is a work item; while Status is suggestion it is a draft
type SuggestionItem struct {
	ID               string           `json:"id"`
	ProjectID        string           `json:"project_id"`
	Type             ItemType         `json:"type"`
	Status           ItemStatus       `json:"status"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	ParentID         string           `json:"parent_id,omitempty"`
	SourceArtifactID string           `json:"source_artifact_id,omitempty"`
	Meta             ItemMeta         `json:"meta"`
	PendingArtifact  *PendingArtifact `json:"pending_artifact,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	ConfirmedAt      *time.Time       `json:"confirmed_at,omitempty"`
}

// IsSuggestion reports whether the item is still a draft
func (s *SuggestionItem) IsSuggestion() bool {
	return s.Status == StatusSuggestion
}

// ApplyConfirmation moves the item to its terminal status and clears the
// pending payload
func (s *SuggestionItem) ApplyConfirmation(at time.Time) error {
	rule, ok := ConfirmationRuleFor(s.Type)
	if !ok {
		return ErrInvalidInput
	}
	s.Status = rule.Status
	if rule.MetaStatus != "" {
		s.Meta.Status = rule.MetaStatus
	}
	s.PendingArtifact = nil
	s.UpdatedAt = at
	s.ConfirmedAt = &at
	return nil
}

// Clone returns a deep copy so stores never share mutable state with callers
func (s *SuggestionItem) Clone() *SuggestionItem {
	if s == nil {
		return nil
	}
	c := *s
	if s.Meta.Specifications != nil {
		c.Meta.Specifications = append([]string(nil), s.Meta.Specifications...)
	}
	if s.Meta.Extra != nil {
		c.Meta.Extra = make(map[string]string, len(s.Meta.Extra))
		for k, v := range s.Meta.Extra {
			c.Meta.Extra[k] = v
		}
	}
	if s.PendingArtifact != nil {
		p := *s.PendingArtifact
		c.PendingArtifact = &p
	}
	if s.ConfirmedAt != nil {
		t := *s.ConfirmedAt
		c.ConfirmedAt = &t
	}
	return &c
}

// EmbeddingText is the text enrolled for a confirmed record
func (s *SuggestionItem) EmbeddingText() string {
	if s.Description == "" {
		return s.Title
	}
	return s.Title + "\n" + s.Description
}

// HierarchyLevels computes each item's depth within the batch by following
// ParentID links that stay inside the batch. Parents outside the batch count
// as roots. Cycles are broken at the first revisited item.
func HierarchyLevels(items []*SuggestionItem) map[string]int {
	byID := make(map[string]*SuggestionItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	levels := make(map[string]int, len(items))
	var depth func(id string, seen map[string]bool) int
	depth = func(id string, seen map[string]bool) int {
		if lvl, ok := levels[id]; ok {
			return lvl
		}
		it := byID[id]
		parent, inBatch := byID[it.ParentID]
		if it.ParentID == "" || !inBatch || seen[parent.ID] {
			return 0
		}
		seen[id] = true
		return depth(parent.ID, seen) + 1
	}

	for _, it := range items {
		levels[it.ID] = depth(it.ID, map[string]bool{})
	}
	return levels
}
