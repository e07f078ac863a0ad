package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"boostly/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_CreateDuplicateEmail(t *testing.T) {
	repo := NewAccountRepository(newStore(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Account{Name: "alice", Email: "a@example.com", Password: "x"}))

	err := repo.Create(ctx, &models.Account{Name: "alice2", Email: "a@example.com", Password: "y"})
	assert.True(t, models.IsCode(err, models.CodeConflict))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAccountRepository_CreateStoresPasswordVerbatim(t *testing.T) {
	repo := NewAccountRepository(newStore(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Account{Name: "bob", Email: "b@example.com", Password: "hunter2"}))

	got, err := repo.GetByEmail(ctx, "b@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hunter2", got.Password)
}

func TestAccountRepository_CreateUniqueViolationFromPostgres(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "accounts"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Account{Name: "a", Email: "a@example.com", Password: "x"})
	assert.True(t, models.IsCode(err, models.CodeConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_CreateDatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "accounts"`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Account{Name: "a", Email: "a@example.com", Password: "x"})
	assert.True(t, models.IsCode(err, models.CodeInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_CreateWithCompany(t *testing.T) {
	db := newStore(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account := &models.Account{Name: "Acme", Email: "acme@example.com", Password: "x"}
	company, err := repo.CreateWithCompany(ctx, account)
	require.NoError(t, err)
	require.NotNil(t, company.AccountID)
	assert.Equal(t, account.ID, *company.AccountID)
	assert.Equal(t, "Acme", company.Name)

	t.Run("taken company name rolls back the account", func(t *testing.T) {
		_, err := repo.CreateWithCompany(ctx, &models.Account{Name: "Acme", Email: "other@example.com", Password: "x"})
		assert.True(t, models.IsCode(err, models.CodeConflict))

		got, err := repo.GetByEmail(ctx, "other@example.com")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestAccountRepository_Lookups(t *testing.T) {
	repo := NewAccountRepository(newStore(t))
	ctx := context.Background()

	account := &models.Account{Name: "carol", Email: "c@example.com", Password: "x"}
	require.NoError(t, repo.Create(ctx, account))

	byID, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol", byID.Name)

	_, err = repo.GetByID(ctx, 999)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	byName, err := repo.GetByName(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byName.ID)

	missing, err := repo.GetByName(ctx, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAccountRepository_Update(t *testing.T) {
	repo := NewAccountRepository(newStore(t))
	ctx := context.Background()

	first := &models.Account{Name: "dave", Email: "d@example.com", Password: "x"}
	second := &models.Account{Name: "erin", Email: "e@example.com", Password: "y"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	require.NoError(t, repo.Update(ctx, &models.Account{ID: first.ID, Name: "david", Email: "david@example.com", Password: "z"}))
	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "david", got.Name)
	assert.Equal(t, "david@example.com", got.Email)
	assert.Equal(t, "z", got.Password)

	err = repo.Update(ctx, &models.Account{ID: 999, Name: "x", Email: "x@example.com", Password: "x"})
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	err = repo.Update(ctx, &models.Account{ID: second.ID, Name: "erin", Email: "david@example.com", Password: "y"})
	assert.True(t, models.IsCode(err, models.CodeConflict))
}

func TestAccountRepository_Delete(t *testing.T) {
	repo := NewAccountRepository(newStore(t))
	ctx := context.Background()

	account := &models.Account{Name: "frank", Email: "f@example.com", Password: "x"}
	require.NoError(t, repo.Create(ctx, account))

	require.NoError(t, repo.Delete(ctx, account.ID))
	_, err := repo.GetByID(ctx, account.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	err = repo.Delete(ctx, account.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestAccountRepository_SearchByName(t *testing.T) {
	repo := NewAccountRepository(newStore(t))
	ctx := context.Background()

	for _, a := range []models.Account{
		{Name: "Acme Corp", Email: "1@example.com", Password: "x"},
		{Name: "acme_labs", Email: "2@example.com", Password: "x"},
		{Name: "Globex", Email: "3@example.com", Password: "x"},
	} {
		a := a
		require.NoError(t, repo.Create(ctx, &a))
	}

	tests := []struct {
		name     string
		fragment string
		want     []string
		notFound bool
	}{
		{"case insensitive", "ACME", []string{"Acme Corp", "acme_labs"}, false},
		{"middle of name", "lob", []string{"Globex"}, false},
		{"underscore is literal", "_", []string{"acme_labs"}, false},
		{"percent is literal", "%", nil, true},
		{"no match", "initech", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.SearchByName(ctx, tt.fragment)
			if tt.notFound {
				assert.True(t, models.IsCode(err, models.CodeNotFound))
				return
			}
			require.NoError(t, err)
			var names []string
			for _, a := range got {
				names = append(names, a.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestAccountRepository_SearchByNameQuery(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "accounts" WHERE LOWER(name) LIKE LOWER($1) ESCAPE '\' ORDER BY id ASC`)).
		WithArgs(`%50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(1, "50% off", "s@example.com"))

	got, err := repo.SearchByName(context.Background(), "50%")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
