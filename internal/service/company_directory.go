package service

import (
	"context"

	"boostly/internal/cache"
	"boostly/internal/models"
	"boostly/internal/observability"
	"boostly/internal/repository"
	"boostly/internal/token"

	"github.com/redis/go-redis/v9"
)

// CompanyDirectory resolves companies through a Redis cache-aside in front of
// the company store. A nil Redis client reads straight from the store.
type CompanyDirectory struct {
	companies repository.CompanyRepository
	rdb       *redis.Client
}

// NewCompanyDirectory creates a CompanyDirectory.
func NewCompanyDirectory(companies repository.CompanyRepository, rdb *redis.Client) *CompanyDirectory {
	return &CompanyDirectory{companies: companies, rdb: rdb}
}

// CompanyIDFor returns the id of the company operated by p's account.
func (d *CompanyDirectory) CompanyIDFor(ctx context.Context, p token.Principal) (uint, error) {
	company, err := d.resolve(ctx, cache.CompanyByAccountKey(p.AccountID), func() (*models.Company, error) {
		return d.companies.GetByAccountID(ctx, p.AccountID)
	})
	if err != nil {
		return 0, err
	}
	return company.ID, nil
}

// ByName returns the company with exactly this name.
func (d *CompanyDirectory) ByName(ctx context.Context, name string) (*models.Company, error) {
	return d.resolve(ctx, cache.CompanyByNameKey(name), func() (*models.Company, error) {
		return d.companies.GetByName(ctx, name)
	})
}

// ForgetAccount drops the cached company for accountID. Deleting an account
// detaches its company, so a stale entry would keep the company reachable.
func (d *CompanyDirectory) ForgetAccount(ctx context.Context, accountID uint) {
	cache.Invalidate(ctx, d.rdb, cache.CompanyByAccountKey(accountID))
}

func (d *CompanyDirectory) resolve(ctx context.Context, key string, load func() (*models.Company, error)) (*models.Company, error) {
	var company models.Company
	hit, err := cache.Aside(ctx, d.rdb, key, &company, cache.CompanyTTL, func() error {
		found, err := load()
		if err != nil {
			return err
		}
		company = *found
		return nil
	})
	if err != nil {
		return nil, err
	}

	if hit {
		observability.CompanyCacheLookups.WithLabelValues("hit").Inc()
	} else {
		observability.CompanyCacheLookups.WithLabelValues("miss").Inc()
	}
	return &company, nil
}
