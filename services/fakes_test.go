package services

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Sumit07M/bg-verification-project/models"
	"github.com/Sumit07M/bg-verification-project/repositories"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// memorySubmissions is an in-memory SubmissionRepository
type memorySubmissions struct {
	mu       sync.Mutex
	rows     map[uuid.UUID]models.Submission
	locked   []uuid.UUID
	lastList repositories.SubmissionFilter
}

func newMemorySubmissions() *memorySubmissions {
	return &memorySubmissions{rows: make(map[uuid.UUID]models.Submission)}
}

func (r *memorySubmissions) Create(_ context.Context, s *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[s.ID] = *s
	return nil
}

func (r *memorySubmissions) GetByID(_ context.Context, id uuid.UUID) (*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &s, nil
}

func (r *memorySubmissions) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	r.mu.Lock()
	r.locked = append(r.locked, id)
	r.mu.Unlock()
	return r.GetByID(ctx, id)
}

func (r *memorySubmissions) ListByEmployee(_ context.Context, employeeID uuid.UUID) ([]*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Submission, 0)
	for _, s := range r.rows {
		if s.EmployeeID == employeeID {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (r *memorySubmissions) List(_ context.Context, filter repositories.SubmissionFilter) ([]*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastList = filter
	out := make([]*models.Submission, 0)
	for _, s := range r.rows {
		if filter.Status == "" || s.Status == filter.Status {
			s := s
			out = append(out, &s)
		}
	}
	return out, nil
}

func (r *memorySubmissions) UpdateReview(_ context.Context, s *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[s.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.rows[s.ID] = *s
	return nil
}

// fakeTxManager records how transactions ended
type fakeTxManager struct {
	commits   int
	rollbacks int
}

type fakeTx struct {
	ctx context.Context
	mgr *fakeTxManager
}

func (m *fakeTxManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	return &fakeTx{ctx: ctx, mgr: m}, nil
}

func (m *fakeTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	tx, _ := m.Begin(ctx)
	if err := fn(ctx, tx); err != nil {
		return tx.Rollback()
	}
	return tx.Commit()
}

func (t *fakeTx) Commit() error {
	t.mgr.commits++
	return nil
}

func (t *fakeTx) Rollback() error {
	t.mgr.rollbacks++
	return nil
}

func (t *fakeTx) Context() context.Context {
	return t.ctx
}
