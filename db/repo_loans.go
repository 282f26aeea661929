// db/repo_loans.go
package db

import (
	"context"

	"Gin_postgres_library_management/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 借书：单事务 = 校验读者 → 配额 → 占一本 → 建 Loan
func (r *Repo) BorrowBook(ctx context.Context, userID, bookID string, durationDays int) (*models.Loan, error) {
	if durationDays == 0 {
		durationDays = r.cfg.LoanDays
	}
	if durationDays < 1 || durationDays > 90 {
		return nil, ErrInvalidDuration
	}

	var loan *models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, "id = ?", userID).Error; err != nil {
			return mapNotFound(err, ErrUserNotFound)
		}
		if !u.IsActive {
			return ErrUserInactive
		}
		if r.cfg.RequireClearFines && u.FineBalance.IsPositive() {
			return ErrOutstandingFines
		}
		if r.cfg.MaxActiveLoans > 0 {
			var open int64
			if err := tx.Model(&models.Loan{}).
				Where("user_id = ? AND status = ?", userID, models.LoanActive).
				Count(&open).Error; err != nil {
				return err
			}
			if open >= int64(r.cfg.MaxActiveLoans) {
				return ErrLoanLimitReached
			}
		}

		if err := reserveCopy(tx, bookID); err != nil {
			return err
		}

		now := r.now().UTC()
		l := &models.Loan{
			ID:         uuid.NewString(),
			BookID:     bookID,
			UserID:     userID,
			BorrowDate: now,
			DueDate:    now.AddDate(0, 0, durationDays),
			Status:     models.LoanActive,
			FineAmount: decimal.Zero,
		}
		if err := tx.Create(l).Error; err != nil {
			return err
		}
		loan = l
		return nil
	})
	return loan, err
}

// 还书：单事务 = 状态翻转（防二次归还）→ 算罚金 → 记账 → 释放副本
func (r *Repo) ReturnLoan(ctx context.Context, loanID string) (*models.Loan, error) {
	var l models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&l, "id = ?", loanID).Error; err != nil {
			return mapNotFound(err, ErrLoanNotFound)
		}

		now := r.now().UTC()
		overdueDays := l.OverdueDays(now, r.cfg.GraceDays)
		fine := r.cfg.FinePerDay.Mul(decimal.NewFromInt(int64(overdueDays)))

		// conditional flip: whoever loses the race sees RowsAffected == 0
		res := tx.Model(&models.Loan{}).
			Where("id = ? AND status = ?", loanID, models.LoanActive).
			Updates(map[string]any{
				"status":      models.LoanReturned,
				"return_date": now,
				"fine_amount": fine,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyReturned
		}

		if fine.IsPositive() {
			if err := addFine(tx, l.UserID, fine); err != nil {
				return err
			}
		}
		if err := releaseCopy(tx, l.BookID); err != nil {
			return err
		}

		l.Status = models.LoanReturned
		l.ReturnDate = &now
		l.FineAmount = fine
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// markOverdue rewrites the presented status of open loans past due. Nothing
// is persisted; "overdue" exists only in the returned view.
func (r *Repo) markOverdue(loans []models.Loan) []models.Loan {
	now := r.now().UTC()
	for i := range loans {
		loans[i].Status = loans[i].DisplayStatus(now)
	}
	return loans
}

// ListOverdue recomputes the overdue set from wall-clock time on every call;
// there is no background sweeper.
func (r *Repo) ListOverdue(ctx context.Context) ([]models.Loan, error) {
	var ls []models.Loan
	if err := r.DB.WithContext(ctx).
		Preload("Book").Preload("User").
		Where("status = ? AND due_date < ?", models.LoanActive, r.now().UTC()).
		Order("due_date ASC").
		Find(&ls).Error; err != nil {
		return nil, err
	}
	return r.markOverdue(ls), nil
}

func (r *Repo) FindLoanByID(ctx context.Context, id string) (*models.Loan, error) {
	var l models.Loan
	if err := r.DB.WithContext(ctx).
		Preload("Book").Preload("User").
		First(&l, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, ErrLoanNotFound)
	}
	l.Status = l.DisplayStatus(r.now().UTC())
	return &l, nil
}

// ListUserActiveLoans is "what do I have out right now", soonest due first.
func (r *Repo) ListUserActiveLoans(ctx context.Context, userID string) ([]models.Loan, error) {
	var ls []models.Loan
	if err := r.DB.WithContext(ctx).
		Preload("Book").
		Where("user_id = ? AND status = ?", userID, models.LoanActive).
		Order("due_date ASC").
		Find(&ls).Error; err != nil {
		return nil, err
	}
	return r.markOverdue(ls), nil
}

func (r *Repo) ListUserLoans(ctx context.Context, userID string) ([]models.Loan, error) {
	var ls []models.Loan
	if err := r.DB.WithContext(ctx).
		Preload("Book").
		Where("user_id = ?", userID).
		Order("borrow_date DESC").
		Find(&ls).Error; err != nil {
		return nil, err
	}
	return r.markOverdue(ls), nil
}

// ListLoans is the admin view. Status accepts the derived vocabulary:
// "active" (open, even if late), "overdue" (open and late), "returned".
func (r *Repo) ListLoans(ctx context.Context, status string) ([]models.Loan, error) {
	tx := r.DB.WithContext(ctx).Preload("Book").Preload("User")
	switch status {
	case models.LoanActive:
		tx = tx.Where("status = ?", models.LoanActive)
	case models.LoanReturned:
		tx = tx.Where("status = ?", models.LoanReturned)
	case models.LoanOverdue:
		tx = tx.Where("status = ? AND due_date < ?", models.LoanActive, r.now().UTC())
	case "":
		// all
	default:
		return nil, ErrInvalidStatus
	}

	var ls []models.Loan
	if err := tx.Order("borrow_date DESC").Find(&ls).Error; err != nil {
		return nil, err
	}
	return r.markOverdue(ls), nil
}
