package service

import (
	"context"
	"testing"
	"time"

	"boostly/internal/models"
	"boostly/internal/repository"
	"boostly/internal/security"
	"boostly/internal/testutil"
	"boostly/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTokenService() *token.Service {
	return token.NewService("service-test-secret-0123456789abcdef", 3*time.Hour, "boostly-api", "boostly-client")
}

func newAuth(db *gorm.DB, hasher security.PasswordHasher) *AuthService {
	return NewAuthService(repository.NewAccountRepository(db), hasher, newTokenService(), fixedClock(t0))
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := newAuth(db, security.BcryptHasher{Cost: bcrypt.MinCost})
	ctx := context.Background()

	account, err := svc.Register(ctx, RegisterInput{Name: "alice", Email: "alice@example.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotZero(t, account.ID)
	assert.NotEqual(t, "s3cret", account.Password)

	session, err := svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, t0.Add(3*time.Hour), session.ExpiresAt)

	p, err := newTokenService().Verify(session.Token, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, account.ID, p.AccountID)
	assert.Equal(t, "alice@example.com", p.Email)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := newAuth(testutil.NewSQLiteDB(t), security.PlaintextHasher{})

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"missing name", RegisterInput{Email: "a@example.com", Password: "x"}},
		{"missing email", RegisterInput{Name: "a", Password: "x"}},
		{"missing password", RegisterInput{Name: "a", Email: "a@example.com"}},
		{"bad email", RegisterInput{Name: "a", Email: "not-an-email", Password: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			assert.True(t, models.IsCode(err, models.CodeValidation), "got %v", err)
		})
	}
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := newAuth(db, security.PlaintextHasher{})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "a", Email: "dup@example.com", Password: "x"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "b", Email: "dup@example.com", Password: "y"})
	assert.True(t, models.IsCode(err, models.CodeConflict))

	var count int64
	require.NoError(t, db.Model(&models.Account{}).Where("email = ?", "dup@example.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAuthService_RegisterAsCompany(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := newAuth(db, security.PlaintextHasher{})
	ctx := context.Background()

	account, err := svc.Register(ctx, RegisterInput{Name: "Acme", Email: "acme@example.com", Password: "x", AsCompany: true})
	require.NoError(t, err)

	company, err := repository.NewCompanyRepository(db).GetByAccountID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", company.Name)
}

func TestAuthService_LoginFailures(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := newAuth(db, security.PlaintextHasher{})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "bob", Email: "bob@example.com", Password: "right"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		code     string
	}{
		{"missing email", "", "right", models.CodeValidation},
		{"missing password", "bob@example.com", "", models.CodeValidation},
		{"unknown email", "nobody@example.com", "right", models.CodeNotFound},
		{"wrong password", "bob@example.com", "wrong", models.CodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.Login(ctx, tt.email, tt.password)
			assert.Nil(t, session)
			assert.True(t, models.IsCode(err, tt.code), "got %v", err)
		})
	}
}
