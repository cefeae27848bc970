package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sumit07M/bg-verification-project/internal/audit"
	"github.com/Sumit07M/bg-verification-project/models"
	"github.com/Sumit07M/bg-verification-project/repositories"
	"github.com/Sumit07M/bg-verification-project/utils"
)

const (
	// DefaultListLimit is used when a listing does not ask for a page size
	DefaultListLimit = 50
	// MaxListLimit caps the page size of a listing
	MaxListLimit = 200
	// MaxHistoryEntries caps the education and experience lists of one submission
	MaxHistoryEntries = 20
)

// SubmissionInput is what an employee files: personal information plus
// education and work history. Either list may be empty.
type SubmissionInput struct {
	FirstName        string                   `json:"firstName" validate:"required,max=100"`
	LastName         string                   `json:"lastName" validate:"required,max=100"`
	DateOfBirth      string                   `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	Address          string                   `json:"address" validate:"required,max=500"`
	Phone            string                   `json:"phone" validate:"required,max=40"`
	EmergencyContact string                   `json:"emergencyContact" validate:"required,max=500"`
	Education        []models.EducationEntry  `json:"education" validate:"max=20,dive"`
	Experience       []models.ExperienceEntry `json:"experience" validate:"max=20,dive"`
}

// ReviewInput is a manager's decision on a pending submission
type ReviewInput struct {
	Decision models.SubmissionStatus `json:"decision" validate:"required,oneof=verified rejected"`
	Note     string                  `json:"note" validate:"max=1000"`
}

// ListOptions filters and pages a manager's listing
type ListOptions struct {
	Status models.SubmissionStatus
	Limit  int
	Offset int
}

// SubmissionService files and reviews onboarding submissions
type SubmissionService struct {
	submissions repositories.SubmissionRepository
	txMgr       repositories.TransactionManager
	now         func() time.Time
	audit       audit.Recorder
	logger      *zap.Logger
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(submissions repositories.SubmissionRepository, txMgr repositories.TransactionManager, logger *zap.Logger) *SubmissionService {
	return &SubmissionService{
		submissions: submissions,
		txMgr:       txMgr,
		now:         func() time.Time { return time.Now().UTC() },
		audit:       audit.NewLogRecorder(logger),
		logger:      logger,
	}
}

// Submit files a new pending submission owned by the caller
func (s *SubmissionService) Submit(ctx context.Context, caller models.Principal, in SubmissionInput) (*models.Submission, error) {
	employeeID, err := principalID(caller)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(&in); err != nil {
		return nil, validationFailure(err)
	}
	if err := checkDateRanges(in); err != nil {
		return nil, err
	}

	submission := models.NewSubmission(employeeID)
	submission.FirstName = in.FirstName
	submission.LastName = in.LastName
	submission.DateOfBirth = in.DateOfBirth
	submission.Address = in.Address
	submission.Phone = in.Phone
	submission.EmergencyContact = in.EmergencyContact
	if in.Education != nil {
		submission.Education = in.Education
	}
	if in.Experience != nil {
		submission.Experience = in.Experience
	}
	submission.SubmittedAt = s.now()

	if err := s.submissions.Create(ctx, submission); err != nil {
		return nil, WrapInternal("failed to store submission", err)
	}

	s.logger.Info("submission filed",
		zap.String("submission_id", submission.ID.String()),
		zap.String("employee_id", employeeID.String()),
		zap.Int("education_entries", len(submission.Education)),
		zap.Int("experience_entries", len(submission.Experience)))
	return submission, nil
}

// checkDateRanges rejects history entries that end before they start.
// Dates are already validated as YYYY-MM-DD, so they order lexically.
func checkDateRanges(in SubmissionInput) error {
	details := make(map[string]interface{})
	for i, e := range in.Education {
		if e.EndDate < e.StartDate {
			key := fmt.Sprintf("education[%d].endDate", i)
			details[key] = key + " must not be before startDate"
		}
	}
	for i, e := range in.Experience {
		if e.EndDate < e.StartDate {
			key := fmt.Sprintf("experience[%d].endDate", i)
			details[key] = key + " must not be before startDate"
		}
	}
	if len(details) == 0 {
		return nil
	}
	out := ErrInvalidInput.Wrap(errors.New("history entry ends before it starts"))
	out.Details = details
	return out
}

// Mine returns the caller's own submissions
func (s *SubmissionService) Mine(ctx context.Context, caller models.Principal) ([]*models.Submission, error) {
	employeeID, err := principalID(caller)
	if err != nil {
		return nil, err
	}
	list, err := s.submissions.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, WrapInternal("failed to list submissions", err)
	}
	return list, nil
}

// List returns submissions across all employees
func (s *SubmissionService) List(ctx context.Context, opts ListOptions) ([]*models.Submission, error) {
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, ErrInvalidInput.WithDetail("status", "status must be one of: pending verified rejected")
	}
	if opts.Offset < 0 {
		return nil, ErrInvalidInput.WithDetail("offset", "offset must not be negative")
	}

	limit := opts.Limit
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	list, err := s.submissions.List(ctx, repositories.SubmissionFilter{
		Status: opts.Status,
		Limit:  limit,
		Offset: opts.Offset,
	})
	if err != nil {
		return nil, WrapInternal("failed to list submissions", err)
	}
	return list, nil
}

// Get returns one submission. Managers may read any; employees only their own.
func (s *SubmissionService) Get(ctx context.Context, caller models.Principal, id uuid.UUID) (*models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, lookupFailure(err)
	}

	if caller.Role != models.RoleManager && submission.EmployeeID.String() != caller.UserID {
		s.audit.Record(ctx, audit.Event{
			Actor:   caller.UserID,
			Role:    caller.Role.String(),
			Action:  audit.ActionSubmissionRead,
			Target:  id.String(),
			Outcome: audit.OutcomeDenied,
			Reason:  "not_owner",
		})
		return nil, ErrForbidden
	}
	return submission, nil
}

// Review records a manager's decision. Only pending submissions can be reviewed,
// and the check and update share one transaction holding the row lock.
func (s *SubmissionService) Review(ctx context.Context, reviewer models.Principal, id uuid.UUID, in ReviewInput) (*models.Submission, error) {
	reviewerID, err := principalID(reviewer)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(&in); err != nil {
		return nil, validationFailure(err)
	}

	reviewed, err := WithTransactionResult(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) (*models.Submission, error) {
		submission, err := s.submissions.GetByIDForUpdate(ctx, id)
		if err != nil {
			return nil, lookupFailure(err)
		}
		if submission.Status != models.SubmissionPending {
			return nil, ErrAlreadyReviewed.WithDetail("status", string(submission.Status))
		}

		submission.Review(reviewerID, in.Decision, in.Note, s.now())
		if err := s.submissions.UpdateReview(ctx, submission); err != nil {
			return nil, WrapInternal("failed to record review", err)
		}
		return submission, nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		Actor:    reviewerID.String(),
		Role:     reviewer.Role.String(),
		Action:   audit.ActionSubmissionReview,
		Target:   id.String(),
		Outcome:  audit.OutcomeSuccess,
		Metadata: map[string]string{"decision": string(in.Decision)},
	})
	return reviewed, nil
}

// principalID extracts the caller's user ID. Tokens are only issued for stored
// users, so a subject that is not a UUID cannot own anything.
func principalID(p models.Principal) (uuid.UUID, error) {
	id, err := uuid.Parse(p.UserID)
	if err != nil {
		return uuid.Nil, ErrForbidden.Wrap(err)
	}
	return id, nil
}

func lookupFailure(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrSubmissionNotFound.Wrap(err)
	}
	return WrapInternal("failed to load submission", err)
}
