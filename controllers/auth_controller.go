// controllers/auth_controller.go
package controllers

import (
	"net/http"
	"regexp"

	"Gin_postgres_library_management/app"
	"Gin_postgres_library_management/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// POST /api/auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var in struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Phone    string `json:"phone"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if !emailRe.MatchString(in.Email) {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid email format"})
		return
	}
	if len(in.Password) < 6 {
		c.JSON(http.StatusBadRequest, app.H{"error": "password must be at least 6 characters"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		Role:         models.RoleMember,
		IsActive:     true,
		FineBalance:  decimal.Zero,
	}
	if err := ac.Repo.CreateUser(c.Request.Context(), u); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"user": u})
}

// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	u, err := ac.Repo.FindUserByEmail(c.Request.Context(), in.Email)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		// 不区分“没有此人”与“密码错误”
		c.JSON(http.StatusUnauthorized, app.H{"error": "invalid credentials"})
		return
	}
	if !u.IsActive {
		c.JSON(http.StatusForbidden, app.H{"error": "account is inactive, please contact admin"})
		return
	}

	token, claims, err := ac.Issuer.Sign(u.ID, u.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	_ = ac.Tokens.Track(c.Request.Context(), u.ID, claims.ID, ac.Issuer.TTL())
	_ = ac.Repo.TouchUserLogin(c.Request.Context(), u.ID, c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusOK, app.H{"token": token, "user": u})
}

// GET /api/auth/me
func (ac *AuthController) Me(c *gin.Context) {
	u, err := ac.Repo.FindUserByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}

// POST /api/auth/logout — 拉黑当前 jti，直到它自然过期
func (ac *AuthController) Logout(c *gin.Context) {
	if v, ok := c.Get("jti"); ok {
		if jti, _ := v.(string); jti != "" {
			_ = ac.Tokens.Revoke(c.Request.Context(), jti, ac.Issuer.TTL())
		}
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
