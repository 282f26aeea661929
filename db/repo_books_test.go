package db

import (
	"context"
	"testing"

	"Gin_postgres_library_management/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidISBN(t *testing.T) {
	assert.True(t, ValidISBN("9780134190440"))
	assert.True(t, ValidISBN("978-0-13-419044-0"))
	assert.True(t, ValidISBN("978 0134 190440"))
	assert.False(t, ValidISBN("0134190440"))
	assert.False(t, ValidISBN("97801341904401"))
	assert.False(t, ValidISBN("978013419044X"))
	assert.False(t, ValidISBN(""))
}

func TestCreateBookDuplicateISBN(t *testing.T) {
	r := newTestRepo(t)
	b := seedBook(t, r, "First Print", 1)

	dup := &models.Book{
		ID: uuid.NewString(), ISBN: b.ISBN,
		Title: "Second Print", Author: "Someone Else",
		TotalCopies: 1, AvailableCopies: 1, IsActive: true,
	}
	assert.ErrorIs(t, r.CreateBook(context.Background(), dup), ErrISBNTaken)
}

func TestCreateBookUnknownCategory(t *testing.T) {
	r := newTestRepo(t)
	ghost := uuid.NewString()
	b := &models.Book{
		ID: uuid.NewString(), ISBN: "9781111111111",
		Title: "Orphan", Author: "Nobody",
		CategoryID:  &ghost,
		TotalCopies: 1, AvailableCopies: 1, IsActive: true,
	}
	assert.ErrorIs(t, r.CreateBook(context.Background(), b), ErrCategoryNotFound)
}

func TestListBooksFilters(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	cat := &models.Category{ID: uuid.NewString(), Name: "Databases"}
	require.NoError(t, r.CreateCategory(ctx, cat))

	inCat := seedBook(t, r, "Designing Data Systems", 2)
	_, err := r.UpdateBook(ctx, inCat.ID, BookUpdate{CategoryID: &cat.ID})
	require.NoError(t, err)

	drained := seedBook(t, r, "Sold Out Stories", 1)
	u := seedMember(t, r, "filter@example.com")
	_, err = r.BorrowBook(ctx, u.ID, drained.ID, 0)
	require.NoError(t, err)

	hidden := seedBook(t, r, "Retired Volume", 1)
	require.NoError(t, r.SoftDeleteBook(ctx, hidden.ID))

	all, err := r.ListBooks(ctx, BookQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2) // soft-deleted one stays out

	avail, err := r.ListBooks(ctx, BookQuery{AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, inCat.ID, avail[0].ID)

	byCat, err := r.ListBooks(ctx, BookQuery{CategoryID: cat.ID})
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, inCat.ID, byCat[0].ID)

	bySearch, err := r.ListBooks(ctx, BookQuery{Search: "data sys"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, inCat.ID, bySearch[0].ID)
}

func TestUpdateBookTotalCopies(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	b := seedBook(t, r, "Shrinkable", 3)
	u := seedMember(t, r, "shrink@example.com")
	_, err := r.BorrowBook(ctx, u.ID, b.ID, 0)
	require.NoError(t, err)
	// 3 total, 1 out, 2 on the shelf

	_, err = r.AdjustTotalCopies(ctx, b.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidTotal) // one copy is still out

	got, err := r.AdjustTotalCopies(ctx, b.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalCopies)
	assert.Equal(t, 0, got.AvailableCopies)

	got, err = r.AdjustTotalCopies(ctx, b.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, got.TotalCopies)
	assert.Equal(t, 4, got.AvailableCopies)
}

func TestSoftDeleteBookWithOpenLoan(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	b := seedBook(t, r, "In Someone's Bag", 1)
	u := seedMember(t, r, "bag@example.com")
	_, err := r.BorrowBook(ctx, u.ID, b.ID, 0)
	require.NoError(t, err)

	assert.ErrorIs(t, r.SoftDeleteBook(ctx, b.ID), ErrBookHasOpenLoans)
}

func TestReleaseCopyClamps(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	b := seedBook(t, r, "Full Shelf", 2)

	// already at total, a stray release must not oversell
	require.NoError(t, r.ReleaseCopy(ctx, b.ID))
	got, err := r.FindBookByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableCopies)

	assert.ErrorIs(t, r.ReleaseCopy(ctx, uuid.NewString()), ErrBookNotFound)
	assert.ErrorIs(t, r.ReserveCopy(ctx, uuid.NewString()), ErrBookNotFound)
}

func TestCategoryLifecycle(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	cat := &models.Category{ID: uuid.NewString(), Name: "History"}
	require.NoError(t, r.CreateCategory(ctx, cat))

	dup := &models.Category{ID: uuid.NewString(), Name: "history"}
	assert.ErrorIs(t, r.CreateCategory(ctx, dup), ErrCategoryTaken)

	other := &models.Category{ID: uuid.NewString(), Name: "Science"}
	require.NoError(t, r.CreateCategory(ctx, other))
	_, err := r.RenameCategory(ctx, other.ID, "History")
	assert.ErrorIs(t, err, ErrCategoryTaken)

	renamed, err := r.RenameCategory(ctx, other.ID, "Natural Science")
	require.NoError(t, err)
	assert.Equal(t, "Natural Science", renamed.Name)

	b := seedBook(t, r, "Rome", 1)
	_, err = r.UpdateBook(ctx, b.ID, BookUpdate{CategoryID: &cat.ID})
	require.NoError(t, err)
	assert.ErrorIs(t, r.DeleteCategory(ctx, cat.ID), ErrCategoryHasBooks)

	require.NoError(t, r.DeleteCategory(ctx, renamed.ID))
	_, err = r.FindCategoryByID(ctx, renamed.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}
