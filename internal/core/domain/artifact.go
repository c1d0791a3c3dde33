package domain

import "time"

// EnrollmentState tracks whether an artifact's content is in the knowledge base
type EnrollmentState string

const (
	// EnrollmentPending means the content has not been embedded yet
	EnrollmentPending EnrollmentState = "pending"
	// EnrollmentEnrolled means the content was embedded exactly once
	EnrollmentEnrolled EnrollmentState = "enrolled"
)

// Artifact is the durable record of a source document or snippet
type Artifact struct {
	ID              string            `json:"id"`
	ProjectID       string            `json:"project_id"`
	ContentType     string            `json:"content_type"`
	OriginalContent string            `json:"original_content"`
	Title           string            `json:"title"`
	Meta            map[string]string `json:"meta"`
	EnrollmentState EnrollmentState   `json:"enrollment_state"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// IsTemporary reports whether the artifact still awaits enrollment
func (a *Artifact) IsTemporary() bool {
	return a.EnrollmentState != EnrollmentEnrolled
}

// MarkEnrolled transitions the artifact out of the temporary state
func (a *Artifact) MarkEnrolled(at time.Time) {
	a.EnrollmentState = EnrollmentEnrolled
	a.UpdatedAt = at
}
