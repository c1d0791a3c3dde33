package domain

import (
	"errors"
	"testing"
)

func TestParseDocumentType(t *testing.T) {
	tests := []struct {
		input    string
		expected DocumentType
		wantErr  bool
	}{
		{"meeting_notes", DocumentTypeMeetingNotes, false},
		{"  Requirements ", DocumentTypeRequirements, false},
		{"GENERAL", DocumentTypeGeneral, false},
		{"", "", false},
		{"memo", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDocumentType(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestDetectDocumentType(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected DocumentType
	}{
		{
			name:     "meeting notes",
			text:     "Attendees: Ana, Bo\nAgenda: roadmap\nAction items: ship the beta",
			expected: DocumentTypeMeetingNotes,
		},
		{
			name:     "requirements",
			text:     "The system shall export reports. Users must be able to filter. Acceptance criteria: CSV.",
			expected: DocumentTypeRequirements,
		},
		{
			name:     "no markers",
			text:     "We had lunch and talked about the weather.",
			expected: DocumentTypeGeneral,
		},
		{
			name:     "tie",
			text:     "meeting requirement",
			expected: DocumentTypeGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectDocumentType(tt.text); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}
