package domain

import "strings"

// MappingAction is the classification outcome for a chunk
type MappingAction string

const (
	ActionCreateNew   MappingAction = "create_new"
	ActionMapExisting MappingAction = "map_existing"
	ActionAppendSpec  MappingAction = "append_spec"
	ActionIgnore      MappingAction = "ignore"
)

// IsValid reports whether the action is one of the four known outcomes
func (a MappingAction) IsValid() bool {
	switch a {
	case ActionCreateNew, ActionMapExisting, ActionAppendSpec, ActionIgnore:
		return true
	}
	return false
}

// TargetsExisting reports whether the action points at an existing record
func (a MappingAction) TargetsExisting() bool {
	return a == ActionMapExisting || a == ActionAppendSpec
}

// RiskLevel grades the downstream impact of accepting a mapping
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// IsValid reports whether the risk level is known
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// DefaultRisk is the risk assumed when the classifier did not supply one.
// Content touching existing commitments starts at medium.
func DefaultRisk(action MappingAction) RiskLevel {
	if action.TargetsExisting() {
		return RiskMedium
	}
	return RiskLow
}

// ReasonClassificationUnavailable is recorded on chunks whose classifier call failed
const ReasonClassificationUnavailable = "classification unavailable"

// MappingResult is the classification decision attached 1:1 to a chunk
type MappingResult struct {
	Action               MappingAction `json:"action"`
	Confidence           float64       `json:"confidence"`
	RiskLevel            RiskLevel     `json:"risk_level"`
	Category             string        `json:"category"`
	ExtractedTitle       string        `json:"extracted_title"`
	ExtractedDescription string        `json:"extracted_description"`
	TargetRecordID       string        `json:"target_record_id,omitempty"`
	Reasoning            string        `json:"reasoning"`
	Degraded             bool          `json:"degraded,omitempty"`
}

// DegradedMapping is the fallback used when classification could not run
func DegradedMapping(chunkText string) *MappingResult {
	return &MappingResult{
		Action:               ActionCreateNew,
		Confidence:           0,
		RiskLevel:            RiskLow,
		Category:             string(ItemTypeAction),
		ExtractedTitle:       firstLine(chunkText, 80),
		ExtractedDescription: chunkText,
		Reasoning:            ReasonClassificationUnavailable,
		Degraded:             true,
	}
}

// firstLine returns the first non-empty line of text, truncated to limit runes
func firstLine(text string, limit int) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		runes := []rune(line)
		if len(runes) > limit {
			return string(runes[:limit])
		}
		return line
	}
	return ""
}
