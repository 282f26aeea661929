package db

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"Gin_postgres_library_management/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestRepo spins up an isolated in-memory database per test. The named
// shared-cache DSN keeps all pooled connections on the same database.
func newTestRepo(t *testing.T) *Repo {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, conn.AutoMigrate(
		&models.User{}, &models.Category{}, &models.Book{}, &models.Loan{},
	))
	return NewRepo(conn, DefaultPolicy())
}

func seedMember(t *testing.T, r *Repo, email string) *models.User {
	t.Helper()
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         "Reader " + email,
		Email:        email,
		PasswordHash: "x",
		Role:         models.RoleMember,
		IsActive:     true,
		FineBalance:  decimal.Zero,
	}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

var isbnSeq int64

func seedBook(t *testing.T, r *Repo, title string, copies int) *models.Book {
	t.Helper()
	b := &models.Book{
		ID:              uuid.NewString(),
		ISBN:            fmt.Sprintf("978%010d", atomic.AddInt64(&isbnSeq, 1)),
		Title:           title,
		Author:          "Some Author",
		TotalCopies:     copies,
		AvailableCopies: copies,
		IsActive:        true,
	}
	require.NoError(t, r.CreateBook(context.Background(), b))
	return b
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	r := newTestRepo(t)
	seedMember(t, r, "amy@example.com")

	dup := &models.User{
		ID: uuid.NewString(), Name: "Amy Again",
		Email: "AMY@example.com", PasswordHash: "x",
		Role: models.RoleMember, IsActive: true,
	}
	err := r.CreateUser(context.Background(), dup)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestFindUserByEmailCaseInsensitive(t *testing.T) {
	r := newTestRepo(t)
	u := seedMember(t, r, "ben@example.com")

	got, err := r.FindUserByEmail(context.Background(), "BEN@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = r.FindUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListUsersSearchAndPaging(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		seedMember(t, r, fmt.Sprintf("reader%d@example.com", i))
	}

	res, err := r.ListUsers(ctx, "", 1, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 5, res.Total)
	assert.Len(t, res.Users, 3)

	res, err = r.ListUsers(ctx, "reader3", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
}

func TestDeleteUserGuards(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	admin := &models.User{
		ID: uuid.NewString(), Name: "Root", Email: "root@example.com",
		PasswordHash: "x", Role: models.RoleAdmin, IsActive: true,
	}
	require.NoError(t, r.CreateUser(ctx, admin))
	assert.ErrorIs(t, r.DeleteUserByID(ctx, admin.ID), ErrUserIsAdmin)

	u := seedMember(t, r, "holder@example.com")
	b := seedBook(t, r, "Kept Out", 1)
	_, err := r.BorrowBook(ctx, u.ID, b.ID, 0)
	require.NoError(t, err)
	assert.ErrorIs(t, r.DeleteUserByID(ctx, u.ID), ErrUserHasOpenLoans)

	free := seedMember(t, r, "free@example.com")
	require.NoError(t, r.DeleteUserByID(ctx, free.ID))
	_, err = r.FindUserByID(ctx, free.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPayFine(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedMember(t, r, "fined@example.com")
	require.NoError(t, r.AddFine(ctx, u.ID, decimal.NewFromFloat(10)))

	// paying more than the balance must leave it untouched
	_, err := r.PayFine(ctx, u.ID, decimal.NewFromFloat(15))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	got, err := r.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.FineBalance.Equal(decimal.NewFromFloat(10)), "balance changed: %s", got.FineBalance)

	got, err = r.PayFine(ctx, u.ID, decimal.NewFromFloat(4))
	require.NoError(t, err)
	assert.True(t, got.FineBalance.Equal(decimal.NewFromFloat(6)))

	_, err = r.PayFine(ctx, u.ID, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = r.PayFine(ctx, u.ID, decimal.NewFromFloat(-1))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAdminUpdateUser(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedMember(t, r, "edit@example.com")
	other := seedMember(t, r, "taken@example.com")

	email := other.Email
	_, err := r.AdminUpdateUser(ctx, u.ID, UserUpdate{Email: &email})
	assert.ErrorIs(t, err, ErrEmailTaken)

	bad := "librarian"
	_, err = r.AdminUpdateUser(ctx, u.ID, UserUpdate{Role: &bad})
	assert.ErrorIs(t, err, ErrInvalidRole)

	role := models.RoleAdmin
	name := "Edited"
	got, err := r.AdminUpdateUser(ctx, u.ID, UserUpdate{Name: &name, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "Edited", got.Name)
	assert.True(t, got.IsAdmin())
}

func TestToggleUserActive(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedMember(t, r, "toggle@example.com")

	got, err := r.ToggleUserActive(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	got, err = r.ToggleUserActive(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}
