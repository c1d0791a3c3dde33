package domain

import "strings"

// DocumentType tags the kind of free-form text handed to the analyzer
type DocumentType string

const (
	DocumentTypeMeetingNotes DocumentType = "meeting_notes"
	DocumentTypeRequirements DocumentType = "requirements"
	DocumentTypeGeneral      DocumentType = "general"
)

// IsValid reports whether the document type is one of the known tags
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeMeetingNotes, DocumentTypeRequirements, DocumentTypeGeneral:
		return true
	}
	return false
}

// ParseDocumentType normalises a user-supplied tag. Empty input yields an
// empty type so callers can fall back to detection.
func ParseDocumentType(s string) (DocumentType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	t := DocumentType(s)
	if !t.IsValid() {
		return "", ErrInvalidInput
	}
	return t, nil
}

var (
	meetingMarkers     = []string{"attendees", "agenda", "action items", "minutes", "meeting"}
	requirementMarkers = []string{"shall", "must", "requirement", "user story", "acceptance criteria"}
)

// DetectDocumentType infers a tag from marker words. The type with the most
// marker hits wins; ties resolve to general.
func DetectDocumentType(text string) DocumentType {
	lower := strings.ToLower(text)
	meeting := countMarkers(lower, meetingMarkers)
	requirements := countMarkers(lower, requirementMarkers)

	switch {
	case meeting > requirements:
		return DocumentTypeMeetingNotes
	case requirements > meeting:
		return DocumentTypeRequirements
	default:
		return DocumentTypeGeneral
	}
}

func countMarkers(text string, markers []string) int {
	n := 0
	for _, m := range markers {
		n += strings.Count(text, m)
	}
	return n
}
