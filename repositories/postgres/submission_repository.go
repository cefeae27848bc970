package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sumit07M/bg-verification-project/models"
	"github.com/Sumit07M/bg-verification-project/repositories"
)

// date_of_birth is read back as text so the API keeps the YYYY-MM-DD form it was given
const submissionColumns = `id, employee_id, first_name, last_name, date_of_birth::text, address, phone,
		emergency_contact, education, experience, status, submitted_at, reviewed_by, reviewed_at, review_note`

// SubmissionRepository implements the repositories.SubmissionRepository interface
type SubmissionRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *DB, logger *zap.Logger) repositories.SubmissionRepository {
	return &SubmissionRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new submission
func (r *SubmissionRepository) Create(ctx context.Context, s *models.Submission) error {
	query := `
		INSERT INTO submissions (id, employee_id, first_name, last_name, date_of_birth, address, phone,
			emergency_contact, education, experience, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	education, err := encodeHistory(s.Education)
	if err != nil {
		return fmt.Errorf("failed to encode education: %w", err)
	}
	experience, err := encodeHistory(s.Experience)
	if err != nil {
		return fmt.Errorf("failed to encode experience: %w", err)
	}

	executor := GetExecutor(ctx, r.db)
	_, err = executor.ExecContext(ctx, query,
		s.ID,
		s.EmployeeID,
		s.FirstName,
		s.LastName,
		s.DateOfBirth,
		s.Address,
		s.Phone,
		s.EmergencyContact,
		education,
		experience,
		s.Status,
		s.SubmittedAt,
	)
	if err != nil {
		return translateError(err, "create submission")
	}

	r.logger.Debug("submission created",
		zap.String("id", s.ID.String()),
		zap.String("employee_id", s.EmployeeID.String()))
	return nil
}

// GetByID retrieves a submission by ID
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByIDForUpdate retrieves a submission with a row lock.
// Outside a transaction the lock is released as soon as the statement completes.
func (r *SubmissionRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	if _, ok := GetTransactionFromContext(ctx); !ok {
		r.logger.Warn("row lock requested outside a transaction", zap.String("id", id.String()))
	}
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

// ListByEmployee retrieves an employee's submissions, newest first
func (r *SubmissionRepository) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE employee_id = $1 ORDER BY submitted_at DESC`
	return r.list(ctx, query, employeeID)
}

// List retrieves submissions across all employees, newest first
func (r *SubmissionRepository) List(ctx context.Context, filter repositories.SubmissionFilter) ([]*models.Submission, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + submissionColumns + ` FROM submissions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY submitted_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	return r.list(ctx, query, args...)
}

// UpdateReview persists the review fields of a submission
func (r *SubmissionRepository) UpdateReview(ctx context.Context, s *models.Submission) error {
	query := `
		UPDATE submissions
		SET status = $2,
		    reviewed_by = $3,
		    reviewed_at = $4,
		    review_note = $5
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		s.ID,
		s.Status,
		s.ReviewedBy,
		s.ReviewedAt,
		s.ReviewNote,
	)
	if err != nil {
		return translateError(err, "update submission")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("update submission %s: %w", s.ID, repositories.ErrNotFound)
	}

	r.logger.Debug("submission reviewed",
		zap.String("id", s.ID.String()),
		zap.String("status", string(s.Status)))
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var (
		s                     = &models.Submission{}
		education, experience []byte
	)
	err := row.Scan(
		&s.ID,
		&s.EmployeeID,
		&s.FirstName,
		&s.LastName,
		&s.DateOfBirth,
		&s.Address,
		&s.Phone,
		&s.EmergencyContact,
		&education,
		&experience,
		&s.Status,
		&s.SubmittedAt,
		&s.ReviewedBy,
		&s.ReviewedAt,
		&s.ReviewNote,
	)
	if err != nil {
		return nil, err
	}

	s.Education = []models.EducationEntry{}
	if err := decodeHistory(education, &s.Education); err != nil {
		return nil, fmt.Errorf("failed to decode education: %w", err)
	}
	s.Experience = []models.ExperienceEntry{}
	if err := decodeHistory(experience, &s.Experience); err != nil {
		return nil, fmt.Errorf("failed to decode experience: %w", err)
	}
	return s, nil
}

// encodeHistory renders a history list for a JSONB column; nil becomes []
func encodeHistory[T any](entries []T) ([]byte, error) {
	if entries == nil {
		entries = []T{}
	}
	return json.Marshal(entries)
}

// decodeHistory reads a JSONB history column. NULL leaves dst untouched.
func decodeHistory[T any](raw []byte, dst *[]T) error {
	if len(raw) == 0 {
		return nil
	}
	var entries []T
	if err := json.Unmarshal(raw, &entries); err != nil {
		return err
	}
	if entries != nil {
		*dst = entries
	}
	return nil
}

func (r *SubmissionRepository) getOne(ctx context.Context, query string, id uuid.UUID) (*models.Submission, error) {
	executor := GetExecutor(ctx, r.db)
	s, err := scanSubmission(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, "get submission")
	}
	return s, nil
}

func (r *SubmissionRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Submission, error) {
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer func(rows *sql.Rows) { _ = rows.Close() }(rows)

	submissions := make([]*models.Submission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		submissions = append(submissions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submission rows: %w", err)
	}

	return submissions, nil
}
