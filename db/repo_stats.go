// db/repo_stats.go
package db

import (
	"context"
	"time"

	"Gin_postgres_library_management/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stats is the public dashboard snapshot. All counts come from one
// transaction so the numbers are consistent with each other.
type Stats struct {
	TotalBooks      int64 `json:"totalBooks"`
	TotalCopies     int64 `json:"totalCopies"`
	AvailableCopies int64 `json:"availableCopies"`
	BorrowedCopies  int64 `json:"borrowedCopies"`
	TotalMembers    int64 `json:"totalMembers"`
	ActiveLoans     int64 `json:"activeLoans"`
	OverdueLoans    int64 `json:"overdueLoans"`
	TotalCategories int64 `json:"totalCategories"`
}

func (r *Repo) ComputeStatistics(ctx context.Context) (*Stats, error) {
	var s Stats
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Book{}).
			Where("is_active = ?", true).Count(&s.TotalBooks).Error; err != nil {
			return err
		}

		var sums struct {
			Total     int64
			Available int64
		}
		if err := tx.Model(&models.Book{}).
			Where("is_active = ?", true).
			Select("COALESCE(SUM(total_copies), 0) AS total, COALESCE(SUM(available_copies), 0) AS available").
			Scan(&sums).Error; err != nil {
			return err
		}
		s.TotalCopies = sums.Total
		s.AvailableCopies = sums.Available
		s.BorrowedCopies = sums.Total - sums.Available

		if err := tx.Model(&models.User{}).
			Where("role = ? AND is_active = ?", models.RoleMember, true).
			Count(&s.TotalMembers).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Loan{}).
			Where("status = ?", models.LoanActive).
			Count(&s.ActiveLoans).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Loan{}).
			Where("status = ? AND due_date < ?", models.LoanActive, r.now().UTC()).
			Count(&s.OverdueLoans).Error; err != nil {
			return err
		}
		return tx.Model(&models.Category{}).Count(&s.TotalCategories).Error
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type PopularBook struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	BorrowCount int64  `json:"borrowCount"`
}

type OverdueRow struct {
	Loan        models.Loan `json:"loan"`
	DaysOverdue int         `json:"daysOverdue"`
}

type Dashboard struct {
	Stats             Stats           `json:"stats"`
	ActiveMembers     int64           `json:"activeMembers"`
	TotalFinesPending decimal.Decimal `json:"totalFinesPending"`
	LoansThisWeek     int64           `json:"loansThisWeek"`
	ReturnsThisWeek   int64           `json:"returnsThisWeek"`
	BooksByCategory   []CategoryCount `json:"booksByCategory"`
	PopularBooks      []PopularBook   `json:"popularBooks"`
	RecentLoans       []models.Loan   `json:"recentLoans"`
	OverdueDetail     []OverdueRow    `json:"overdueDetail"`
}

func (r *Repo) ComputeDashboard(ctx context.Context) (*Dashboard, error) {
	stats, err := r.ComputeStatistics(ctx)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{Stats: *stats, TotalFinesPending: decimal.Zero}
	now := r.now().UTC()
	weekAgo := now.AddDate(0, 0, -7)
	db := r.DB.WithContext(ctx)

	if err := db.Model(&models.User{}).
		Where("role = ? AND is_active = ?", models.RoleMember, true).
		Count(&d.ActiveMembers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).
		Select("COALESCE(SUM(fine_balance), 0)").
		Row().Scan(&d.TotalFinesPending); err != nil {
		return nil, err
	}
	if err := db.Model(&models.Loan{}).
		Where("borrow_date >= ?", weekAgo).
		Count(&d.LoansThisWeek).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Loan{}).
		Where("status = ? AND return_date >= ?", models.LoanReturned, weekAgo).
		Count(&d.ReturnsThisWeek).Error; err != nil {
		return nil, err
	}

	// 按分类统计在册书目
	if err := db.
		Table(models.CategoryTable+" c").
		Select("c.name, COUNT(b.id) AS count").
		Joins("LEFT JOIN "+models.BookTable+" b ON b.category_id = c.id AND b.is_active = ?", true).
		Group("c.id, c.name").
		Order("c.name ASC").
		Scan(&d.BooksByCategory).Error; err != nil {
		return nil, err
	}

	if err := db.
		Table(models.BookTable+" b").
		Select("b.id, b.title, b.author, COUNT(l.id) AS borrow_count").
		Joins("JOIN "+models.LoanTable+" l ON l.book_id = b.id").
		Where("b.is_active = ?", true).
		Group("b.id, b.title, b.author").
		Order("COUNT(l.id) DESC").
		Limit(5).
		Scan(&d.PopularBooks).Error; err != nil {
		return nil, err
	}

	var recent []models.Loan
	if err := db.Preload("Book").Preload("User").
		Order("borrow_date DESC").Limit(10).
		Find(&recent).Error; err != nil {
		return nil, err
	}
	d.RecentLoans = r.markOverdue(recent)

	var late []models.Loan
	if err := db.Preload("Book").Preload("User").
		Where("status = ? AND due_date < ?", models.LoanActive, now).
		Order("due_date ASC").Limit(10).
		Find(&late).Error; err != nil {
		return nil, err
	}
	for _, l := range r.markOverdue(late) {
		d.OverdueDetail = append(d.OverdueDetail, OverdueRow{
			Loan:        l,
			DaysOverdue: int(now.Sub(l.DueDate).Hours() / 24),
		})
	}

	return d, nil
}

// MemberUsage is one row of the usage report: loans per member in a window.
type MemberUsage struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	LoanCount int64  `json:"loanCount"`
}

type UsageReport struct {
	From         time.Time     `json:"from"`
	To           time.Time     `json:"to"`
	TotalLoans   int64         `json:"totalLoans"`
	ByMember     []MemberUsage `json:"byMember"`
	MostBorrowed []PopularBook `json:"mostBorrowed"`
	OverdueNow   int64         `json:"overdueNow"`
	OpenLoansNow int64         `json:"openLoansNow"`
}

func (r *Repo) ComputeUsageReport(ctx context.Context, from, to time.Time) (*UsageReport, error) {
	if from.After(to) {
		return nil, ErrInvalidDateRange
	}
	rep := &UsageReport{From: from, To: to}
	db := r.DB.WithContext(ctx)

	if err := db.Model(&models.Loan{}).
		Where("borrow_date >= ? AND borrow_date <= ?", from, to).
		Count(&rep.TotalLoans).Error; err != nil {
		return nil, err
	}

	if err := db.
		Table(models.UserTable+" u").
		Select("u.id AS user_id, u.name, u.email, COUNT(l.id) AS loan_count").
		Joins("JOIN "+models.LoanTable+" l ON l.user_id = u.id").
		Where("l.borrow_date >= ? AND l.borrow_date <= ?", from, to).
		Group("u.id, u.name, u.email").
		Order("COUNT(l.id) DESC").
		Limit(20).
		Scan(&rep.ByMember).Error; err != nil {
		return nil, err
	}

	if err := db.
		Table(models.BookTable+" b").
		Select("b.id, b.title, b.author, COUNT(l.id) AS borrow_count").
		Joins("JOIN "+models.LoanTable+" l ON l.book_id = b.id").
		Where("l.borrow_date >= ? AND l.borrow_date <= ?", from, to).
		Group("b.id, b.title, b.author").
		Order("COUNT(l.id) DESC").
		Limit(10).
		Scan(&rep.MostBorrowed).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Loan{}).
		Where("status = ? AND due_date < ?", models.LoanActive, r.now().UTC()).
		Count(&rep.OverdueNow).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Loan{}).
		Where("status = ?", models.LoanActive).
		Count(&rep.OpenLoansNow).Error; err != nil {
		return nil, err
	}
	return rep, nil
}

// InventoryRow is the per-category shelf picture.
type InventoryRow struct {
	CategoryID      string `json:"categoryId"`
	Category        string `json:"category"`
	Titles          int64  `json:"titles"`
	TotalCopies     int64  `json:"totalCopies"`
	AvailableCopies int64  `json:"availableCopies"`
	BorrowedCopies  int64  `json:"borrowedCopies"`
}

func (r *Repo) ComputeInventoryReport(ctx context.Context, categoryID string) ([]InventoryRow, error) {
	db := r.DB.WithContext(ctx)
	if categoryID != "" {
		if _, err := r.FindCategoryByID(ctx, categoryID); err != nil {
			return nil, err
		}
	}

	tx := db.
		Table(models.CategoryTable+" c").
		Select(`c.id AS category_id, c.name AS category,
			COUNT(b.id) AS titles,
			COALESCE(SUM(b.total_copies), 0) AS total_copies,
			COALESCE(SUM(b.available_copies), 0) AS available_copies,
			COALESCE(SUM(b.total_copies - b.available_copies), 0) AS borrowed_copies`).
		Joins("LEFT JOIN "+models.BookTable+" b ON b.category_id = c.id AND b.is_active = ?", true).
		Group("c.id, c.name").
		Order("c.name ASC")
	if categoryID != "" {
		tx = tx.Where("c.id = ?", categoryID)
	}

	var rows []InventoryRow
	if err := tx.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
