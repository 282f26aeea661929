// controllers/srv.go
package controllers

import (
	"errors"
	"net/http"

	"Gin_postgres_library_management/app"
	"Gin_postgres_library_management/db"
	"Gin_postgres_library_management/session"

	"github.com/gin-gonic/gin"
)

type Srv struct {
	Repo   *db.Repo
	Issuer *session.TokenIssuer
	Tokens *session.TokenStore
	Cfg    app.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:   db.NewRepo(a.DB, a.Config.Policy()),
		Issuer: session.NewTokenIssuer(a.Config.JWTSecret, a.Config.TokenTTL),
		Tokens: session.NewTokenStore(a.RDB),
		Cfg:    a.Config,
	}
}

// --- helpers ---

func currentUserID(c *gin.Context) string {
	v, _ := c.Get("userID")
	uid, _ := v.(string)
	return uid
}

func isAdmin(c *gin.Context) bool {
	v, _ := c.Get("isAdmin")
	ok, _ := v.(bool)
	return ok
}

// statusFor maps repo sentinels onto HTTP statuses in one place so every
// handler fails the same way.
func statusFor(err error) int {
	switch {
	case errors.Is(err, db.ErrBookNotFound),
		errors.Is(err, db.ErrCategoryNotFound),
		errors.Is(err, db.ErrUserNotFound),
		errors.Is(err, db.ErrLoanNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrUserInactive),
		errors.Is(err, db.ErrUserIsAdmin):
		return http.StatusForbidden
	case errors.Is(err, db.ErrNoCopiesAvailable),
		errors.Is(err, db.ErrAlreadyReturned),
		errors.Is(err, db.ErrISBNTaken),
		errors.Is(err, db.ErrEmailTaken),
		errors.Is(err, db.ErrCategoryTaken),
		errors.Is(err, db.ErrBookHasOpenLoans),
		errors.Is(err, db.ErrCategoryHasBooks),
		errors.Is(err, db.ErrUserHasOpenLoans):
		return http.StatusConflict
	case errors.Is(err, db.ErrLoanLimitReached),
		errors.Is(err, db.ErrOutstandingFines),
		errors.Is(err, db.ErrInvalidDuration),
		errors.Is(err, db.ErrInvalidAmount),
		errors.Is(err, db.ErrInvalidTotal),
		errors.Is(err, db.ErrInvalidDateRange),
		errors.Is(err, db.ErrInvalidRole),
		errors.Is(err, db.ErrInvalidStatus):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), app.H{"error": err.Error()})
}
