// db/repo_members.go
package db

import (
	"context"
	"strings"

	"Gin_postgres_library_management/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// addFine bumps the member's unpaid balance inside the caller's transaction.
func addFine(tx *gorm.DB, userID string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	if amount.IsZero() {
		return nil
	}
	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Update("fine_balance", gorm.Expr("fine_balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *Repo) AddFine(ctx context.Context, userID string, amount decimal.Decimal) error {
	return addFine(r.DB.WithContext(ctx), userID, amount)
}

// PayFine reduces the balance by exactly the paid amount. The balance guard
// sits in the UPDATE itself, so two racing payments can never drive it
// negative.
func (r *Repo) PayFine(ctx context.Context, userID string, amount decimal.Decimal) (*models.User, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND fine_balance >= ?", userID, amount).
			Update("fine_balance", gorm.Expr("fine_balance - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&models.User{}).
				Where("id = ?", userID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrUserNotFound
			}
			return ErrInvalidAmount // would overdraw the balance
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindUserByID(ctx, userID)
}

func (r *Repo) SetUserActive(ctx context.Context, userID string, active bool) (*models.User, error) {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).Update("is_active", active)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return r.FindUserByID(ctx, userID)
}

type ProfileUpdate struct {
	Name         *string
	Phone        *string
	PasswordHash *string
}

func (r *Repo) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*models.User, error) {
	updates := map[string]any{}
	if in.Name != nil && *in.Name != "" {
		updates["name"] = *in.Name
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.PasswordHash != nil {
		updates["password_hash"] = *in.PasswordHash
	}
	if len(updates) > 0 {
		res := r.DB.WithContext(ctx).Model(&models.User{}).
			Where("id = ?", userID).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrUserNotFound
		}
	}
	return r.FindUserByID(ctx, userID)
}

type UserUpdate struct {
	Name     *string
	Email    *string
	Phone    *string
	Role     *string // "admin" or "member"
	IsActive *bool
}

// AdminUpdateUser is the admin-side edit; it may change role and email.
func (r *Repo) AdminUpdateUser(ctx context.Context, userID string, in UserUpdate) (*models.User, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, "id = ?", userID).Error; err != nil {
			return mapNotFound(err, ErrUserNotFound)
		}

		updates := map[string]any{}
		if in.Name != nil {
			updates["name"] = *in.Name
		}
		if in.Phone != nil {
			updates["phone"] = *in.Phone
		}
		if in.Email != nil {
			var n int64
			if err := tx.Model(&models.User{}).
				Where("LOWER(email) = ? AND id <> ?", strings.ToLower(*in.Email), userID).
				Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return ErrEmailTaken
			}
			updates["email"] = *in.Email
		}
		if in.Role != nil {
			if *in.Role != models.RoleAdmin && *in.Role != models.RoleMember {
				return ErrInvalidRole
			}
			updates["role"] = *in.Role
		}
		if in.IsActive != nil {
			updates["is_active"] = *in.IsActive
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return r.FindUserByID(ctx, userID)
}

func (r *Repo) ToggleUserActive(ctx context.Context, userID string) (*models.User, error) {
	u, err := r.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return r.SetUserActive(ctx, userID, !u.IsActive)
}
