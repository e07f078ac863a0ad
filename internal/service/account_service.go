package service

import (
	"context"
	"strings"

	"boostly/internal/models"
	"boostly/internal/repository"
	"boostly/internal/security"
	"boostly/internal/token"
	"boostly/internal/validation"
)

// AccountService serves the profile and account management endpoints.
type AccountService struct {
	accounts  repository.AccountRepository
	hasher    security.PasswordHasher
	directory *CompanyDirectory
}

// UpdateAccountInput replaces every mutable field of an account.
type UpdateAccountInput struct {
	ID       uint
	Name     string
	Email    string
	Password string
}

func NewAccountService(
	accounts repository.AccountRepository,
	hasher security.PasswordHasher,
	directory *CompanyDirectory,
) *AccountService {
	return &AccountService{accounts: accounts, hasher: hasher, directory: directory}
}

// Profile loads the account behind p. Email is unique, so it is the lookup key.
func (s *AccountService) Profile(ctx context.Context, p token.Principal) (*models.Account, error) {
	account, err := s.accounts.GetByEmail(ctx, p.Email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, models.NewNotFoundError("Account", p.Email)
	}
	return account, nil
}

func (s *AccountService) Update(ctx context.Context, in UpdateAccountInput) (*models.Account, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, models.NewValidationError("name, email and password are required")
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

	account := &models.Account{ID: in.ID, Name: in.Name, Email: in.Email, Password: stored}
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	return s.accounts.GetByID(ctx, in.ID)
}

func (s *AccountService) Delete(ctx context.Context, id uint) error {
	if err := s.accounts.Delete(ctx, id); err != nil {
		return err
	}
	if s.directory != nil {
		s.directory.ForgetAccount(ctx, id)
	}
	return nil
}

// Search finds accounts whose name contains fragment, ignoring case.
func (s *AccountService) Search(ctx context.Context, fragment string) ([]models.Account, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, models.NewValidationError("name is required")
	}
	return s.accounts.SearchByName(ctx, fragment)
}

func (s *AccountService) List(ctx context.Context) ([]models.Account, error) {
	return s.accounts.List(ctx)
}
