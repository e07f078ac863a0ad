package repository

import (
	"context"
	"errors"

	"boostly/internal/models"

	"gorm.io/gorm"
)

// CompanyRepository resolves companies by name, owning account or id.
type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id uint) (*models.Company, error)
	GetByName(ctx context.Context, name string) (*models.Company, error)
	GetByAccountID(ctx context.Context, accountID uint) (*models.Company, error)
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository returns a new CompanyRepository implementation.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, company *models.Company) error {
	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Company already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *companyRepository) GetByID(ctx context.Context, id uint) (*models.Company, error) {
	return r.first(ctx, id, "id = ?", id)
}

func (r *companyRepository) GetByName(ctx context.Context, name string) (*models.Company, error) {
	return r.first(ctx, name, "name = ?", name)
}

func (r *companyRepository) GetByAccountID(ctx context.Context, accountID uint) (*models.Company, error) {
	return r.first(ctx, accountID, "account_id = ?", accountID)
}

func (r *companyRepository) first(ctx context.Context, key interface{}, query string, args ...interface{}) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).Where(query, args...).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Company", key)
		}
		return nil, models.NewInternalError(err)
	}
	return &company, nil
}
