package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/wanderbook/apiserver/config"
	"github.com/wanderbook/apiserver/internal/store"
	"github.com/wanderbook/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// UserService handles registration, credential verification and profile
// lookups. Token issuance lives in the handlers; this service owns the
// account state.
type UserService struct {
	repo UserRepository
	cfg  config.AuthConfig
}

func NewUserService(repo UserRepository, cfg config.AuthConfig) *UserService {
	if strings.TrimSpace(cfg.DefaultRole) == "" {
		cfg.DefaultRole = types.RoleUser
	}
	return &UserService{repo: repo, cfg: cfg}
}

// Register creates a new account with the configured default role.
// It fails with ErrEmailTaken for an already registered email and with
// ErrWeakPassword when the password misses a configured requirement.
func (s *UserService) Register(ctx context.Context, email, password, firstName, lastName string) (types.User, error) {
	email = strings.TrimSpace(email)
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if email == "" || firstName == "" || lastName == "" {
		return types.User{}, fmt.Errorf("%w: email, first name and last name are required", ErrValidation)
	}

	if err := s.checkPasswordPolicy(password); err != nil {
		return types.User{}, err
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return types.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		ID:           uuid.New().String(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		Roles:        []string{s.cfg.DefaultRole},
		PasswordHash: string(hashed),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, ErrEmailTaken
		}
		return types.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies the credentials. Unknown email and wrong password both
// return ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID loads a profile by user id.
func (s *UserService) GetByID(ctx context.Context, id string) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) checkPasswordPolicy(password string) error {
	if len(password) < s.cfg.PasswordMinLength {
		return fmt.Errorf("%w: at least %d characters required", ErrWeakPassword, s.cfg.PasswordMinLength)
	}

	var hasDigit, hasLower, hasUpper, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		default:
			hasSymbol = true
		}
	}

	switch {
	case s.cfg.PasswordRequireDigit && !hasDigit:
		return fmt.Errorf("%w: a digit is required", ErrWeakPassword)
	case s.cfg.PasswordRequireLower && !hasLower:
		return fmt.Errorf("%w: a lowercase letter is required", ErrWeakPassword)
	case s.cfg.PasswordRequireUpper && !hasUpper:
		return fmt.Errorf("%w: an uppercase letter is required", ErrWeakPassword)
	case s.cfg.PasswordRequireSymbol && !hasSymbol:
		return fmt.Errorf("%w: a non-alphanumeric character is required", ErrWeakPassword)
	}
	return nil
}
