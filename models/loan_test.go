package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoanOverdueDays(t *testing.T) {
	due := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	l := &Loan{Status: LoanActive, DueDate: due}

	assert.Equal(t, 0, l.OverdueDays(due.AddDate(0, 0, -2), 0))
	assert.Equal(t, 0, l.OverdueDays(due, 0)) // due instant itself is on time
	assert.Equal(t, 0, l.OverdueDays(due.Add(12*time.Hour), 0))
	assert.Equal(t, 1, l.OverdueDays(due.AddDate(0, 0, 1), 0))
	assert.Equal(t, 6, l.OverdueDays(due.AddDate(0, 0, 6), 0))

	// grace days push the deadline out
	assert.Equal(t, 0, l.OverdueDays(due.AddDate(0, 0, 3), 3))
	assert.Equal(t, 2, l.OverdueDays(due.AddDate(0, 0, 5), 3))
}

func TestLoanDisplayStatus(t *testing.T) {
	due := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	open := &Loan{Status: LoanActive, DueDate: due}
	assert.Equal(t, LoanActive, open.DisplayStatus(due.AddDate(0, 0, -1)))
	assert.Equal(t, LoanOverdue, open.DisplayStatus(due.AddDate(0, 0, 1)))

	// a returned loan never shows as overdue, however late it was
	done := &Loan{Status: LoanReturned, DueDate: due}
	assert.Equal(t, LoanReturned, done.DisplayStatus(due.AddDate(0, 0, 30)))
}
