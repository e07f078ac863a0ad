// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"boostly/internal/models"
	"boostly/internal/observability"

	"gorm.io/gorm"
)

// AccountRepository defines persistence operations for accounts. Passwords are
// stored exactly as given.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	CreateWithCompany(ctx context.Context, account *models.Account) (*models.Company, error)
	GetByID(ctx context.Context, id uint) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByName(ctx context.Context, name string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id uint) error
	SearchByName(ctx context.Context, fragment string) ([]models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository returns a new AccountRepository implementation.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	defer observability.TrackQuery("insert", "accounts")()

	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Email already registered")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// CreateWithCompany creates the account and a company of the same name in one transaction.
func (r *accountRepository) CreateWithCompany(ctx context.Context, account *models.Account) (*models.Company, error) {
	defer observability.TrackQuery("insert", "accounts")()

	var company models.Company
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(account).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.NewConflictError("Email already registered")
			}
			return err
		}

		accountID := account.ID
		company = models.Company{Name: account.Name, AccountID: &accountID}
		if err := tx.Create(&company).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.NewConflictError("Company name already taken")
			}
			return err
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, models.NewInternalError(err)
	}
	return &company, nil
}

func (r *accountRepository) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Account", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &account, nil
}

func (r *accountRepository) GetByName(ctx context.Context, name string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &account, nil
}

// Update replaces name, email and password of the account with account.ID.
func (r *accountRepository) Update(ctx context.Context, account *models.Account) error {
	defer observability.TrackQuery("update", "accounts")()

	result := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", account.ID).
		Updates(map[string]interface{}{
			"name":     account.Name,
			"email":    account.Email,
			"password": account.Password,
		})
	if result.Error != nil {
		if isUniqueConstraintError(result.Error) {
			return models.NewConflictError("Email already registered")
		}
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Account", account.ID)
	}
	return nil
}

func (r *accountRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "accounts")()

	result := r.db.WithContext(ctx).Delete(&models.Account{}, id)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Account", id)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchByName matches fragment as a case-insensitive substring of the name.
// An empty result is NotFound.
func (r *accountRepository) SearchByName(ctx context.Context, fragment string) ([]models.Account, error) {
	defer observability.TrackQuery("search", "accounts")()

	pattern := "%" + likeEscaper.Replace(fragment) + "%"

	var accounts []models.Account
	err := r.db.WithContext(ctx).
		Where(`LOWER(name) LIKE LOWER(?) ESCAPE '\'`, pattern).
		Order("id ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(accounts) == 0 {
		return nil, models.NewNotFoundError("Account", fragment)
	}
	return accounts, nil
}

func (r *accountRepository) List(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return accounts, nil
}
