// app/bootstrap.go
package app

import (
	"context"
	"log"

	"Gin_postgres_library_management/db"
	"Gin_postgres_library_management/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// BootstrapFirstAdmin seeds the first admin account from env so a fresh
// deployment is usable without poking the database by hand.
func BootstrapFirstAdmin(ctx context.Context, cfg Config, repo *db.Repo) {
	if cfg.BootstrapAdminEmail == "" || cfg.BootstrapAdminPassword == "" {
		return
	}
	n, err := repo.CountAdmins(ctx)
	if err != nil {
		log.Printf("bootstrap: %v", err)
		return
	}
	if n > 0 {
		return // 已经有管理员，跳过
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.BootstrapAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("bootstrap hash: %v", err)
		return
	}
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         "Administrator",
		Email:        cfg.BootstrapAdminEmail,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := repo.CreateUser(ctx, u); err != nil {
		log.Printf("bootstrap admin failed: %v", err)
		return
	}
	log.Printf("[BOOTSTRAP] created first admin %s", cfg.BootstrapAdminEmail)
}
