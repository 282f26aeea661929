// controllers/loan_controller.go
package controllers

import (
	"net/http"

	"Gin_postgres_library_management/app"

	"github.com/gin-gonic/gin"
)

type LoanController struct{ *Srv }

func NewLoanController(s *Srv) *LoanController { return &LoanController{Srv: s} }

// POST /api/loans/borrow
func (lc *LoanController) Borrow(c *gin.Context) {
	var in struct {
		BookID   string `json:"bookId" binding:"required"`
		Duration int    `json:"duration"` // days; 0 = library default
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	loan, err := lc.Repo.BorrowBook(c.Request.Context(), currentUserID(c), in.BookID, in.Duration)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"loan": loan})
}

// POST /api/loans/return/:loanId
func (lc *LoanController) Return(c *gin.Context) {
	loanID := c.Param("loanId")

	// 只能还自己的书，管理员例外
	l, err := lc.Repo.FindLoanByID(c.Request.Context(), loanID)
	if err != nil {
		fail(c, err)
		return
	}
	if l.UserID != currentUserID(c) && !isAdmin(c) {
		c.JSON(http.StatusForbidden, app.H{"error": "unauthorized to return this loan"})
		return
	}

	loan, err := lc.Repo.ReturnLoan(c.Request.Context(), loanID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"loan": loan, "fineAmount": loan.FineAmount})
}

// GET /api/loans/my-loans — 手上正借着的
func (lc *LoanController) MyLoans(c *gin.Context) {
	ls, err := lc.Repo.ListUserActiveLoans(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"loans": ls})
}

// GET /api/loans/history
func (lc *LoanController) History(c *gin.Context) {
	ls, err := lc.Repo.ListUserLoans(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"loans": ls})
}

// GET /api/loans/all?status= （管理员）
func (lc *LoanController) ListAll(c *gin.Context) {
	ls, err := lc.Repo.ListLoans(c.Request.Context(), c.Query("status"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"loans": ls})
}

// GET /api/loans/overdue （管理员）
func (lc *LoanController) Overdue(c *gin.Context) {
	ls, err := lc.Repo.ListOverdue(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"loans": ls})
}
