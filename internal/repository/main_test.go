package repository

import (
	"context"
	"testing"
	"time"

	"boostly/internal/models"
	"boostly/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var baseTime = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func seedCompany(t *testing.T, db *gorm.DB, name string) *models.Company {
	t.Helper()
	company := &models.Company{Name: name}
	require.NoError(t, NewCompanyRepository(db).Create(context.Background(), company))
	return company
}

func seedPost(t *testing.T, db *gorm.DB, companyID uint, postedAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		CompanyID:   companyID,
		MediaURL:    "https://cdn.example.com/p.jpg",
		Description: []byte("post"),
		PostedAt:    postedAt,
	}
	require.NoError(t, NewPostRepository(db).Create(context.Background(), post))
	return post
}

func newStore(t *testing.T) *gorm.DB {
	return testutil.NewSQLiteDB(t)
}
