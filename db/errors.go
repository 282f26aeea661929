// db/errors.go
package db

import "errors"

// Sentinel errors returned by the repo layer. Controllers map these onto
// HTTP statuses in one place; nothing here is retried automatically.

// Lookup failures
var (
	ErrBookNotFound     = errors.New("book not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrLoanNotFound     = errors.New("loan not found")
)

// Borrow / return failures
var (
	ErrNoCopiesAvailable = errors.New("no copies available for borrowing")
	ErrUserInactive      = errors.New("account is inactive")
	ErrLoanLimitReached  = errors.New("maximum concurrent loans reached")
	ErrOutstandingFines  = errors.New("outstanding fines must be paid before borrowing")
	ErrAlreadyReturned   = errors.New("loan already returned")
)

// Validation failures
var (
	ErrInvalidDuration  = errors.New("loan duration must be between 1 and 90 days")
	ErrInvalidAmount    = errors.New("amount must be positive and not exceed the balance")
	ErrInvalidTotal     = errors.New("total copies cannot drop below copies on loan")
	ErrInvalidDateRange = errors.New("date range start must not be after end")
	ErrInvalidRole      = errors.New("role must be admin or member")
	ErrInvalidStatus    = errors.New("status must be active, returned or overdue")
	ErrISBNTaken        = errors.New("isbn already exists")
	ErrEmailTaken       = errors.New("email already registered")
	ErrCategoryTaken    = errors.New("category already exists")
)

// Deletion guards
var (
	ErrBookHasOpenLoans = errors.New("cannot delete book with copies on loan")
	ErrCategoryHasBooks = errors.New("cannot delete category with books")
	ErrUserHasOpenLoans = errors.New("cannot delete user with active loans")
	ErrUserIsAdmin      = errors.New("cannot delete admin users")
)
