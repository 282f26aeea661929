// models/loan.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const LoanTable = "lib_loans"

const (
	LoanActive   = "active"
	LoanReturned = "returned"
	LoanOverdue  = "overdue" // derived view only, never written to storage
)

type Loan struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	BookID string `gorm:"type:uuid;index;not null" json:"bookId"`
	UserID string `gorm:"type:uuid;index;not null" json:"userId"`
	Book   *Book  `gorm:"foreignKey:BookID" json:"book,omitempty"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	BorrowDate time.Time  `gorm:"index;not null" json:"borrowDate"`
	DueDate    time.Time  `gorm:"index;not null" json:"dueDate"`
	ReturnDate *time.Time `gorm:"index" json:"returnDate,omitempty"`

	Status     string          `gorm:"size:20;not null;default:'active';index" json:"status"`
	FineAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"fineAmount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Loan) TableName() string { return LoanTable }

// IsOverdue reports whether an open loan is past its due date.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.Status == LoanActive && now.After(l.DueDate)
}

// DisplayStatus is the status shown to callers: "overdue" is computed on
// read, the stored row stays "active" until the book comes back.
func (l *Loan) DisplayStatus(now time.Time) string {
	if l.IsOverdue(now) {
		return LoanOverdue
	}
	return l.Status
}

// OverdueDays counts whole days past due at the given instant (grace days
// extend the due date). Negative never: early or on-time returns yield 0.
func (l *Loan) OverdueDays(at time.Time, graceDays int) int {
	deadline := l.DueDate.AddDate(0, 0, graceDays)
	if !at.After(deadline) {
		return 0
	}
	return int(at.Sub(deadline).Hours() / 24)
}
