package models

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus tracks where an onboarding submission is in review
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionVerified SubmissionStatus = "verified"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Valid reports whether s is a known status
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionPending, SubmissionVerified, SubmissionRejected:
		return true
	default:
		return false
	}
}

// IsFinal returns true once a manager has reviewed the submission
func (s SubmissionStatus) IsFinal() bool {
	return s == SubmissionVerified || s == SubmissionRejected
}

// EducationEntry is one degree listed on the onboarding form. Dates are YYYY-MM-DD.
type EducationEntry struct {
	Degree       string `json:"degree" validate:"required,oneof=bachelor master phd diploma"`
	Institution  string `json:"institution" validate:"required,max=200"`
	FieldOfStudy string `json:"fieldOfStudy" validate:"required,max=200"`
	StartDate    string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate      string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Grade        string `json:"grade" validate:"required,max=50"`
}

// ExperienceEntry is one previous position listed on the onboarding form
type ExperienceEntry struct {
	Company          string `json:"company" validate:"required,max=200"`
	Position         string `json:"position" validate:"required,max=200"`
	StartDate        string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate          string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Description      string `json:"description" validate:"required,max=2000"`
	Responsibilities string `json:"responsibilities" validate:"required,max=2000"`
}

// Submission is what an employee files during onboarding: personal information,
// education and work history. Managers review it as one unit.
type Submission struct {
	ID               uuid.UUID         `json:"id" db:"id"`
	EmployeeID       uuid.UUID         `json:"employeeId" db:"employee_id"`
	FirstName        string            `json:"firstName" db:"first_name"`
	LastName         string            `json:"lastName" db:"last_name"`
	DateOfBirth      string            `json:"dateOfBirth" db:"date_of_birth"`
	Address          string            `json:"address" db:"address"`
	Phone            string            `json:"phone" db:"phone"`
	EmergencyContact string            `json:"emergencyContact" db:"emergency_contact"`
	Education        []EducationEntry  `json:"education" db:"education"`
	Experience       []ExperienceEntry `json:"experience" db:"experience"`
	Status           SubmissionStatus  `json:"status" db:"status"`
	SubmittedAt      time.Time         `json:"submittedAt" db:"submitted_at"`
	ReviewedBy       *uuid.UUID        `json:"reviewedBy,omitempty" db:"reviewed_by"`
	ReviewedAt       *time.Time        `json:"reviewedAt,omitempty" db:"reviewed_at"`
	ReviewNote       string            `json:"reviewNote,omitempty" db:"review_note"`
}

// TableName returns the table name for the Submission model
func (Submission) TableName() string {
	return "submissions"
}

// NewSubmission creates a pending submission owned by employeeID
func NewSubmission(employeeID uuid.UUID) *Submission {
	return &Submission{
		ID:          uuid.New(),
		EmployeeID:  employeeID,
		Education:   []EducationEntry{},
		Experience:  []ExperienceEntry{},
		Status:      SubmissionPending,
		SubmittedAt: time.Now().UTC(),
	}
}

// FullName joins first and last name for display
func (s *Submission) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// Review records a manager's decision on the submission
func (s *Submission) Review(reviewer uuid.UUID, decision SubmissionStatus, note string, at time.Time) {
	s.Status = decision
	s.ReviewedBy = &reviewer
	s.ReviewedAt = &at
	s.ReviewNote = note
}
