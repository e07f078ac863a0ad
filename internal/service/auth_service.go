package service

import (
	"context"
	"strings"
	"time"

	"boostly/internal/models"
	"boostly/internal/repository"
	"boostly/internal/security"
	"boostly/internal/token"
	"boostly/internal/validation"
)

// AuthService registers accounts and exchanges credentials for session tokens.
type AuthService struct {
	accounts repository.AccountRepository
	hasher   security.PasswordHasher
	tokens   *token.Service
	now      func() time.Time
}

// RegisterInput is the payload for Register. AsCompany also creates a
// company named after the account.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	AsCompany bool
}

// Session is a freshly issued session token.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Account   *models.Account
}

func NewAuthService(
	accounts repository.AccountRepository,
	hasher security.PasswordHasher,
	tokens *token.Service,
	now func() time.Time,
) *AuthService {
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		now:      now,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, models.NewValidationError("username, email and password are required")
	}
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	stored, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	account := &models.Account{Name: in.Name, Email: in.Email, Password: stored}
	if in.AsCompany {
		if _, err := s.accounts.CreateWithCompany(ctx, account); err != nil {
			return nil, err
		}
		return account, nil
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Login checks credentials. An unknown email is NotFound and a wrong password
// is Unauthorized; neither issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, models.NewValidationError("email and password are required")
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, models.NewNotFoundError("Account", email)
	}
	if !s.hasher.Matches(account.Password, password) {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	raw, expiresAt, err := s.tokens.Issue(token.Principal{
		AccountID: account.ID,
		Name:      account.Name,
		Email:     account.Email,
	}, s.now())
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &Session{Token: raw, ExpiresAt: expiresAt, Account: account}, nil
}
