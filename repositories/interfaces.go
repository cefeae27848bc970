package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Sumit07M/bg-verification-project/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert violates a unique constraint
	ErrDuplicate = errors.New("record already exists")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction.
	// Repositories called with the ctx handed to fn run inside the transaction.
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// UserRepository handles user account data operations
type UserRepository interface {
	// Create creates a new user; ErrDuplicate when the email is taken
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by normalized email
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// SubmissionFilter narrows a manager's submission listing
type SubmissionFilter struct {
	Status models.SubmissionStatus // empty matches every status
	Limit  int
	Offset int
}

// SubmissionRepository handles onboarding submission data operations
type SubmissionRepository interface {
	// Create stores a new submission
	Create(ctx context.Context, submission *models.Submission) error

	// GetByID retrieves a submission by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error)

	// GetByIDForUpdate retrieves a submission and locks its row until the surrounding transaction ends
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Submission, error)

	// ListByEmployee retrieves an employee's submissions, newest first
	ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]*models.Submission, error)

	// List retrieves submissions across all employees, newest first
	List(ctx context.Context, filter SubmissionFilter) ([]*models.Submission, error)

	// UpdateReview persists the review fields of a submission
	UpdateReview(ctx context.Context, submission *models.Submission) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users       UserRepository
	Submissions SubmissionRepository
}
