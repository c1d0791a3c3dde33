package domain

import (
	"errors"
	"testing"
	"time"
)

func TestConfirmationRulesCoverAllTypes(t *testing.T) {
	for _, typ := range AllItemTypes {
		if _, ok := ConfirmationRuleFor(typ); !ok {
			t.Errorf("no confirmation rule for %s", typ)
		}
	}
	if ItemType("epic").IsValid() {
		t.Error("unknown type should be invalid")
	}
}

func TestSuggestionItem_ApplyConfirmation(t *testing.T) {
	tests := []struct {
		typ        ItemType
		status     ItemStatus
		metaStatus string
	}{
		{ItemTypeDecision, StatusConfirmed, MetaStatusActive},
		{ItemTypeRule, StatusNotStarted, ""},
		{ItemTypeCR, StatusInProgress, ""},
		{ItemTypeAction, StatusNotStarted, ""},
		{ItemTypePending, StatusNotStarted, ""},
	}

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			item := &SuggestionItem{
				Type:            tt.typ,
				Status:          StatusSuggestion,
				PendingArtifact: &PendingArtifact{Content: "raw"},
			}
			if err := item.ApplyConfirmation(at); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if item.Status != tt.status {
				t.Errorf("expected status %s, got %s", tt.status, item.Status)
			}
			if item.Meta.Status != tt.metaStatus {
				t.Errorf("expected meta status %q, got %q", tt.metaStatus, item.Meta.Status)
			}
			if item.PendingArtifact != nil {
				t.Error("expected pending artifact to be cleared")
			}
			if item.ConfirmedAt == nil || !item.ConfirmedAt.Equal(at) {
				t.Errorf("expected ConfirmedAt %v, got %v", at, item.ConfirmedAt)
			}
			if item.IsSuggestion() {
				t.Error("confirmed item should not be a suggestion")
			}
		})
	}

	t.Run("unknown type", func(t *testing.T) {
		item := &SuggestionItem{Type: "epic", Status: StatusSuggestion}
		if err := item.ApplyConfirmation(at); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if !item.IsSuggestion() {
			t.Error("failed confirmation must not change status")
		}
	})
}

func TestItemTypeFromCategory(t *testing.T) {
	tests := map[string]ItemType{
		"decision":       ItemTypeDecision,
		"Rules":          ItemTypeRule,
		"change request": ItemTypeCR,
		"question":       ItemTypePending,
		"action":         ItemTypeAction,
		"something else": ItemTypeAction,
		"":               ItemTypeAction,
	}
	for category, expected := range tests {
		if got := ItemTypeFromCategory(category); got != expected {
			t.Errorf("ItemTypeFromCategory(%q) = %s, want %s", category, got, expected)
		}
	}
}

func TestStatusFilter_Matches(t *testing.T) {
	tests := []struct {
		filter StatusFilter
		status ItemStatus
		want   bool
	}{
		{FilterSuggestions, StatusSuggestion, true},
		{FilterSuggestions, StatusConfirmed, false},
		{FilterConfirmed, StatusSuggestion, false},
		{FilterConfirmed, StatusInProgress, true},
		{FilterAll, StatusSuggestion, true},
		{"", StatusNotStarted, true},
	}
	for _, tt := range tests {
		if got := tt.filter.Matches(tt.status); got != tt.want {
			t.Errorf("%q.Matches(%s) = %v, want %v", tt.filter, tt.status, got, tt.want)
		}
	}
}

func TestSuggestionItem_Clone(t *testing.T) {
	confirmed := time.Now()
	orig := &SuggestionItem{
		ID:              "s1",
		Meta:            ItemMeta{Specifications: []string{"a"}, Extra: map[string]string{"k": "v"}},
		PendingArtifact: &PendingArtifact{Content: "raw"},
		ConfirmedAt:     &confirmed,
	}

	c := orig.Clone()
	c.Meta.Specifications[0] = "changed"
	c.Meta.Extra["k"] = "changed"
	c.PendingArtifact.Content = "changed"

	if orig.Meta.Specifications[0] != "a" || orig.Meta.Extra["k"] != "v" || orig.PendingArtifact.Content != "raw" {
		t.Error("clone shares mutable state with the original")
	}
	if c.ConfirmedAt == orig.ConfirmedAt {
		t.Error("clone should copy ConfirmedAt")
	}

	var nilItem *SuggestionItem
	if nilItem.Clone() != nil {
		t.Error("clone of nil should be nil")
	}
}

func TestSuggestionItem_EmbeddingText(t *testing.T) {
	item := &SuggestionItem{Title: "Ship beta"}
	if got := item.EmbeddingText(); got != "Ship beta" {
		t.Errorf("unexpected text %q", got)
	}
	item.Description = "by Friday"
	if got := item.EmbeddingText(); got != "Ship beta\nby Friday" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestHierarchyLevels(t *testing.T) {
	items := []*SuggestionItem{
		{ID: "grandchild", ParentID: "child"},
		{ID: "child", ParentID: "root"},
		{ID: "root"},
		{ID: "orphan", ParentID: "outside-batch"},
		{ID: "cycle-a", ParentID: "cycle-b"},
		{ID: "cycle-b", ParentID: "cycle-a"},
	}

	levels := HierarchyLevels(items)

	expected := map[string]int{"root": 0, "child": 1, "grandchild": 2, "orphan": 0}
	for id, lvl := range expected {
		if levels[id] != lvl {
			t.Errorf("level of %s = %d, want %d", id, levels[id], lvl)
		}
	}
	if len(levels) != len(items) {
		t.Errorf("expected a level for every item, got %d", len(levels))
	}
}
