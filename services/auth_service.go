package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sumit07M/bg-verification-project/internal/audit"
	"github.com/Sumit07M/bg-verification-project/models"
	"github.com/Sumit07M/bg-verification-project/repositories"
	"github.com/Sumit07M/bg-verification-project/utils"
)

// TokenIssuer signs a token for a principal and reports the expiry it embedded
type TokenIssuer interface {
	Issue(principal models.Principal, ttl time.Duration) (string, time.Time, error)
}

// RegisterInput is the payload accepted when creating an account
type RegisterInput struct {
	Email    string      `json:"email" validate:"required,email,max=255"`
	Password string      `json:"password" validate:"required,min=8,max=72"`
	Role     models.Role `json:"role" validate:"required,role"`
}

// LoginInput is the payload accepted when exchanging credentials for a token.
// Role is optional; when given it must match the account's role.
type LoginInput struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required"`
	Role     models.Role `json:"role,omitempty" validate:"omitempty,role"`
}

// Session is what a successful login hands back to the client
type Session struct {
	Token     string           `json:"token"`
	User      models.Principal `json:"user"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

// AuthService registers accounts and issues tokens for valid credentials
type AuthService struct {
	users      repositories.UserRepository
	issuer     TokenIssuer
	tokenTTL   time.Duration
	bcryptCost int
	dummyHash  []byte
	audit      audit.Recorder
	logger     *zap.Logger
}

// AuthServiceOption customises an AuthService
type AuthServiceOption func(*AuthService)

// WithBcryptCost overrides the password hashing cost
func WithBcryptCost(cost int) AuthServiceOption {
	return func(s *AuthService) { s.bcryptCost = cost }
}

// WithAuditRecorder sends register and login events to r instead of the log
func WithAuditRecorder(r audit.Recorder) AuthServiceOption {
	return func(s *AuthService) { s.audit = r }
}

// NewAuthService creates a new AuthService
func NewAuthService(users repositories.UserRepository, issuer TokenIssuer, tokenTTL time.Duration, logger *zap.Logger, opts ...AuthServiceOption) *AuthService {
	s := &AuthService{
		users:      users,
		issuer:     issuer,
		tokenTTL:   tokenTTL,
		bcryptCost: bcrypt.DefaultCost,
		audit:      audit.NewLogRecorder(logger),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	// Compared against when the email is unknown so both paths cost one bcrypt round
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("onboarding-dummy-password"), s.bcryptCost)
	return s
}

// Register creates an account with a hashed password
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := utils.ValidateStruct(&in); err != nil {
		return nil, validationFailure(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrInvalidInput.Wrap(err).WithDetail("password", "password must be at most 72 bytes")
	}
	if err != nil {
		return nil, WrapInternal("failed to hash password", err)
	}

	user := models.NewUser(in.Email, string(hash), in.Role)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateEmail.Wrap(err)
		}
		return nil, WrapInternal("failed to create user", err)
	}

	s.audit.Record(ctx, audit.Event{
		Actor:   user.ID.String(),
		Role:    user.Role.String(),
		Action:  audit.ActionRegister,
		Outcome: audit.OutcomeSuccess,
	})
	return user, nil
}

// Login verifies credentials and issues a signed token
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := utils.ValidateStruct(&in); err != nil {
		return nil, validationFailure(err)
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, WrapInternal("failed to load user", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(in.Password))
		s.loginDenied(ctx, "", "unknown_email")
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		s.loginDenied(ctx, user.ID.String(), "password_mismatch")
		return nil, ErrInvalidCredentials
	}

	if in.Role != "" && in.Role != user.Role {
		s.loginDenied(ctx, user.ID.String(), "role_mismatch")
		return nil, ErrInvalidCredentials
	}

	principal := user.Principal()
	token, expiresAt, err := s.issuer.Issue(principal, s.tokenTTL)
	if err != nil {
		return nil, WrapInternal("failed to issue token", err)
	}

	s.audit.Record(ctx, audit.Event{
		Actor:   principal.UserID,
		Role:    principal.Role.String(),
		Action:  audit.ActionLogin,
		Outcome: audit.OutcomeSuccess,
	})

	return &Session{
		Token:     token,
		User:      principal,
		ExpiresAt: expiresAt.UTC(),
	}, nil
}

// loginDenied records a rejected login. The reason stays server-side; callers only see ErrInvalidCredentials.
func (s *AuthService) loginDenied(ctx context.Context, userID, reason string) {
	s.audit.Record(ctx, audit.Event{
		Actor:   userID,
		Action:  audit.ActionLogin,
		Outcome: audit.OutcomeDenied,
		Reason:  reason,
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validationFailure converts a utils.ValidationError into ErrInvalidInput carrying the field messages
func validationFailure(err error) error {
	fields := utils.GetValidationFields(err)
	if fields == nil {
		return ErrInvalidInput.Wrap(err)
	}
	details := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		details[k] = v
	}
	out := ErrInvalidInput.Wrap(err)
	out.Details = details
	return out
}
