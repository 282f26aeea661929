package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"Gin_postgres_library_management/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Policy carries the loan/fine configuration. It is passed in at
// construction instead of being read from ambient globals so tests can run
// with their own rates and caps.
type Policy struct {
	FinePerDay        decimal.Decimal
	LoanDays          int // default borrow duration
	MaxActiveLoans    int // 0 = unbounded
	GraceDays         int // days past due before fines start
	RequireClearFines bool
}

func DefaultPolicy() Policy {
	return Policy{
		FinePerDay: decimal.NewFromFloat(0.50),
		LoanDays:   14,
	}
}

type Repo struct {
	DB  *gorm.DB
	cfg Policy
	now func() time.Time
}

func NewRepo(db *gorm.DB, cfg Policy) *Repo {
	if cfg.LoanDays <= 0 {
		cfg.LoanDays = 14
	}
	return &Repo{DB: db, cfg: cfg, now: time.Now}
}

// WithClock returns a copy of the repo using the given time source, so
// overdue scenarios can be replayed deterministically.
func (r *Repo) WithClock(now func() time.Time) *Repo {
	cp := *r
	cp.now = now
	return &cp
}

func mapNotFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// Users

func (r *Repo) TouchUserLogin(ctx context.Context, userID, ip, ua string) error {
	// 用数据库时间，避免并发覆盖
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login_at": gorm.Expr("CURRENT_TIMESTAMP"),
			"last_seen_at":  gorm.Expr("CURRENT_TIMESTAMP"),
			"login_count":   gorm.Expr("COALESCE(login_count, 0) + 1"),
			"last_login_ip": ip,
			"last_login_ua": ua,
		}).Error
}

func (r *Repo) TouchUserSeen(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(email) = ?", strings.ToLower(u.Email)).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrEmailTaken
	}
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *Repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	return &u, nil
}

func (r *Repo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&u).Error; err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	return &u, nil
}

func (r *Repo) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&n).Error
	return n, err
}

// 列表（分页 + 关键词，关键词匹配姓名/邮箱）
type ListUsersResult struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
}

func (r *Repo) ListUsers(ctx context.Context, q string, page, size int) (ListUsersResult, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.User{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListUsersResult{}, err
	}

	var users []models.User
	if err := tx.
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&users).Error; err != nil {
		return ListUsersResult{}, err
	}
	return ListUsersResult{Users: users, Total: total}, nil
}

// DeleteUserByID refuses admins and users that still hold books.
func (r *Repo) DeleteUserByID(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, "id = ?", id).Error; err != nil {
			return mapNotFound(err, ErrUserNotFound)
		}
		if u.IsAdmin() {
			return ErrUserIsAdmin
		}
		var open int64
		if err := tx.Model(&models.Loan{}).
			Where("user_id = ? AND status = ?", id, models.LoanActive).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return ErrUserHasOpenLoans
		}
		return tx.Delete(&models.User{ID: id}).Error
	})
}
