package reader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxNameLength     = 50
	maxUsernameLength = 50
	maxEmailLength    = 254
)

// Notifier records account events. Implemented by the notification service.
type Notifier interface {
	Registered(ctx context.Context, readerID string) error
}

type Service struct {
	repo       Repository
	notifier   Notifier
	bcryptCost int
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	GivenName string
	Surname   string
}

func NewService(repo Repository, notifier Notifier, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, notifier: notifier, bcryptCost: bcryptCost}
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*Reader, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.GivenName = strings.TrimSpace(input.GivenName)
	input.Surname = strings.TrimSpace(input.Surname)

	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	result := &Reader{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		GivenName:    input.GivenName,
		Surname:      input.Surname,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, result); err != nil {
		return nil, err
	}

	// Welcome notification, addressed to the new reader themselves.
	if err := s.notifier.Registered(ctx, result.ID); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Service) Authenticate(ctx context.Context, login, password string) (*Reader, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	result, err := s.repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, ErrReaderNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !result.IsActive || result.LeftAt != nil {
		return nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(result.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return result, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Reader, error) {
	return s.repo.GetByID(ctx, id)
}

// Deactivate soft-deletes the account. Calling it on an already deactivated
// reader is a no-op.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if result.LeftAt != nil {
		return nil
	}
	return s.repo.Deactivate(ctx, id, time.Now().UTC())
}

func validateRegisterInput(input RegisterInput) error {
	switch {
	case input.Username == "" || len(input.Username) > maxUsernameLength:
		return fmt.Errorf("username is required and at most %d characters", maxUsernameLength)
	case input.Email == "" || len(input.Email) > maxEmailLength || !strings.Contains(input.Email, "@"):
		return fmt.Errorf("a valid email is required")
	case input.Password == "":
		return fmt.Errorf("password is required")
	case input.GivenName == "" || len(input.GivenName) > maxNameLength:
		return fmt.Errorf("given name is required and at most %d characters", maxNameLength)
	case input.Surname == "" || len(input.Surname) > maxNameLength:
		return fmt.Errorf("surname is required and at most %d characters", maxNameLength)
	}
	return nil
}
