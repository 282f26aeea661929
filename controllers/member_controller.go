// controllers/member_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_library_management/app"
	"Gin_postgres_library_management/db"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type MemberController struct{ *Srv }

func NewMemberController(s *Srv) *MemberController { return &MemberController{Srv: s} }

// GET /api/users/profile
func (mc *MemberController) GetProfile(c *gin.Context) {
	u, err := mc.Repo.FindUserByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}

// PUT /api/users/profile
func (mc *MemberController) UpdateProfile(c *gin.Context) {
	var in struct {
		Name     *string `json:"name"`
		Phone    *string `json:"phone"`
		Password *string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	upd := db.ProfileUpdate{Name: in.Name, Phone: in.Phone}
	if in.Password != nil && *in.Password != "" {
		if len(*in.Password) < 6 {
			c.JSON(http.StatusBadRequest, app.H{"error": "password must be at least 6 characters"})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
			return
		}
		s := string(hash)
		upd.PasswordHash = &s
	}

	u, err := mc.Repo.UpdateProfile(c.Request.Context(), currentUserID(c), upd)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}

// GET /api/users/fines — 当前余额 + 产生过罚金的借阅
func (mc *MemberController) GetFines(c *gin.Context) {
	uid := currentUserID(c)
	u, err := mc.Repo.FindUserByID(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	loans, err := mc.Repo.ListUserLoans(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	fined := loans[:0]
	for _, l := range loans {
		if l.FineAmount.IsPositive() {
			fined = append(fined, l)
		}
	}
	c.JSON(http.StatusOK, app.H{"totalFines": u.FineBalance, "loans": fined})
}

// POST /api/users/fines/pay
func (mc *MemberController) PayFine(c *gin.Context) {
	var in struct {
		Amount decimal.Decimal `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	u, err := mc.Repo.PayFine(c.Request.Context(), currentUserID(c), in.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}

// ------------------------------
// Admin
// ------------------------------

// GET /api/users?q=&page=&size=
func (mc *MemberController) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := mc.Repo.ListUsers(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"total": res.Total, "users": res.Users})
}

// GET /api/users/:id
func (mc *MemberController) GetUser(c *gin.Context) {
	u, err := mc.Repo.FindUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}

// PUT /api/users/:id
func (mc *MemberController) UpdateUser(c *gin.Context) {
	var in struct {
		Name     *string `json:"name"`
		Email    *string `json:"email"`
		Phone    *string `json:"phone"`
		Role     *string `json:"role"`
		IsActive *bool   `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	u, err := mc.Repo.AdminUpdateUser(c.Request.Context(), c.Param("id"), db.UserUpdate{
		Name: in.Name, Email: in.Email, Phone: in.Phone,
		Role: in.Role, IsActive: in.IsActive,
	})
	if err != nil {
		fail(c, err)
		return
	}
	// 被停用的账号立刻失去所有已发 token
	if in.IsActive != nil && !*in.IsActive {
		_ = mc.Tokens.RevokeAllForUser(c.Request.Context(), u.ID, mc.Issuer.TTL())
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}

// POST /api/users/:id/toggle-status
func (mc *MemberController) ToggleUserStatus(c *gin.Context) {
	u, err := mc.Repo.ToggleUserActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if !u.IsActive {
		_ = mc.Tokens.RevokeAllForUser(c.Request.Context(), u.ID, mc.Issuer.TTL())
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}

// DELETE /api/users/:id
func (mc *MemberController) DeleteUser(c *gin.Context) {
	id := c.Param("id")

	// 不允许删除自己，避免锁死
	if currentUserID(c) == id {
		c.JSON(http.StatusBadRequest, app.H{"error": "cannot delete yourself"})
		return
	}
	if err := mc.Repo.DeleteUserByID(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	_ = mc.Tokens.RevokeAllForUser(c.Request.Context(), id, mc.Issuer.TTL())
	c.JSON(http.StatusOK, app.H{"ok": true})
}
