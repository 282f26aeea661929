// db/repo_books.go
package db

import (
	"context"
	"strings"

	"Gin_postgres_library_management/models"

	"gorm.io/gorm"
)

// ValidISBN accepts 13-digit ISBNs, ignoring hyphens and spaces.
func ValidISBN(isbn string) bool {
	s := strings.NewReplacer("-", "", " ", "").Replace(isbn)
	if len(s) != 13 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (r *Repo) CreateBook(ctx context.Context, b *models.Book) error {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Book{}).
		Where("isbn = ?", b.ISBN).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrISBNTaken
	}
	if b.CategoryID != nil {
		if _, err := r.FindCategoryByID(ctx, *b.CategoryID); err != nil {
			return err
		}
	}
	return r.DB.WithContext(ctx).Create(b).Error
}

func (r *Repo) FindBookByID(ctx context.Context, id string) (*models.Book, error) {
	var b models.Book
	if err := r.DB.WithContext(ctx).Preload("Category").
		First(&b, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, ErrBookNotFound)
	}
	return &b, nil
}

type BookQuery struct {
	Search        string // matches title/author/isbn
	CategoryID    string
	AvailableOnly bool
}

func (r *Repo) ListBooks(ctx context.Context, q BookQuery) ([]models.Book, error) {
	tx := r.DB.WithContext(ctx).Preload("Category").
		Where("is_active = ?", true)

	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR LOWER(isbn) LIKE ?", like, like, like)
	}
	if q.CategoryID != "" {
		tx = tx.Where("category_id = ?", q.CategoryID)
	}
	if q.AvailableOnly {
		tx = tx.Where("available_copies > 0")
	}

	var books []models.Book
	if err := tx.Order("title ASC").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

type BookUpdate struct {
	Title           *string
	Author          *string
	CategoryID      *string // empty string clears the category
	PublicationYear *int
	Description     *string
	TotalCopies     *int
}

func (r *Repo) UpdateBook(ctx context.Context, id string, in BookUpdate) (*models.Book, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Book
		if err := tx.First(&b, "id = ?", id).Error; err != nil {
			return mapNotFound(err, ErrBookNotFound)
		}

		updates := map[string]any{}
		if in.Title != nil {
			updates["title"] = *in.Title
		}
		if in.Author != nil {
			updates["author"] = *in.Author
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.PublicationYear != nil {
			updates["publication_year"] = *in.PublicationYear
		}
		if in.CategoryID != nil {
			if *in.CategoryID == "" {
				updates["category_id"] = nil
			} else {
				var n int64
				if err := tx.Model(&models.Category{}).
					Where("id = ?", *in.CategoryID).Count(&n).Error; err != nil {
					return err
				}
				if n == 0 {
					return ErrCategoryNotFound
				}
				updates["category_id"] = *in.CategoryID
			}
		}
		if in.TotalCopies != nil {
			newTotal := *in.TotalCopies
			onLoan := b.TotalCopies - b.AvailableCopies
			if newTotal < onLoan || newTotal < 0 {
				return ErrInvalidTotal
			}
			updates["total_copies"] = newTotal
			updates["available_copies"] = newTotal - onLoan
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.Book{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return r.FindBookByID(ctx, id)
}

// AdjustTotalCopies changes the size of the holding; it refuses to shrink
// below the copies currently out.
func (r *Repo) AdjustTotalCopies(ctx context.Context, id string, newTotal int) (*models.Book, error) {
	return r.UpdateBook(ctx, id, BookUpdate{TotalCopies: &newTotal})
}

// SoftDeleteBook hides the book from the catalog; the loan history stays.
func (r *Repo) SoftDeleteBook(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Book
		if err := tx.First(&b, "id = ?", id).Error; err != nil {
			return mapNotFound(err, ErrBookNotFound)
		}
		if b.AvailableCopies < b.TotalCopies {
			return ErrBookHasOpenLoans
		}
		return tx.Model(&models.Book{}).Where("id = ?", id).
			Update("is_active", false).Error
	})
}

// reserveCopy takes one copy off the shelf. The conditional UPDATE is the
// whole concurrency story: with one copy left, exactly one of two racing
// borrowers gets RowsAffected == 1.
func reserveCopy(tx *gorm.DB, bookID string) error {
	res := tx.Model(&models.Book{}).
		Where("id = ? AND is_active = ? AND available_copies > 0", bookID, true).
		Update("available_copies", gorm.Expr("available_copies - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := tx.Model(&models.Book{}).
			Where("id = ? AND is_active = ?", bookID, true).
			Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrBookNotFound
		}
		return ErrNoCopiesAvailable
	}
	return nil
}

// releaseCopy puts a copy back, clamped at total_copies so a double release
// can never oversell the shelf. Dedup is the caller's job.
func releaseCopy(tx *gorm.DB, bookID string) error {
	res := tx.Model(&models.Book{}).
		Where("id = ? AND available_copies < total_copies", bookID).
		Update("available_copies", gorm.Expr("available_copies + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := tx.Model(&models.Book{}).
			Where("id = ?", bookID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrBookNotFound
		}
		// already at total: clamp, not an error
	}
	return nil
}

func (r *Repo) ReserveCopy(ctx context.Context, bookID string) error {
	return reserveCopy(r.DB.WithContext(ctx), bookID)
}

func (r *Repo) ReleaseCopy(ctx context.Context, bookID string) error {
	return releaseCopy(r.DB.WithContext(ctx), bookID)
}

// Categories

func (r *Repo) CreateCategory(ctx context.Context, c *models.Category) error {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Category{}).
		Where("LOWER(name) = ?", strings.ToLower(c.Name)).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrCategoryTaken
	}
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *Repo) FindCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	if err := r.DB.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, ErrCategoryNotFound)
	}
	return &c, nil
}

func (r *Repo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cs []models.Category
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&cs).Error
	return cs, err
}

func (r *Repo) RenameCategory(ctx context.Context, id, name string) (*models.Category, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Category{}).
		Where("LOWER(name) = ? AND id <> ?", strings.ToLower(name), id).
		Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrCategoryTaken
	}
	res := r.DB.WithContext(ctx).Model(&models.Category{}).
		Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrCategoryNotFound
	}
	return r.FindCategoryByID(ctx, id)
}

func (r *Repo) DeleteCategory(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Category
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			return mapNotFound(err, ErrCategoryNotFound)
		}
		var books int64
		if err := tx.Model(&models.Book{}).
			Where("category_id = ?", id).Count(&books).Error; err != nil {
			return err
		}
		if books > 0 {
			return ErrCategoryHasBooks
		}
		return tx.Delete(&models.Category{ID: id}).Error
	})
}
