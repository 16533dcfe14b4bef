package database

import (
	"fmt"
	"log"

	"github.com/torisawa/task-assignment-api/internal/config"
	"github.com/torisawa/task-assignment-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// SeedSuperadmin creates the bootstrap superadmin account when none exists.
// Without it there is no way to create the first admin or user.
func SeedSuperadmin(cfg *config.Config) error {
	var count int64
	if err := DB.Model(&models.User{}).
		Where("role = ?", models.RoleSuperadmin).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count superadmins: %w", err)
	}
	if count > 0 {
		return nil
	}

	if cfg.BootstrapPassword == "" {
		log.Println("No superadmin exists and BOOTSTRAP_ADMIN_PASSWORD is not set; skipping seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.BootstrapPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap password: %w", err)
	}

	user := &models.User{
		Username:     cfg.BootstrapUsername,
		PasswordHash: string(hash),
		Role:         models.RoleSuperadmin,
	}
	if err := DB.Create(user).Error; err != nil {
		return fmt.Errorf("failed to seed superadmin: %w", err)
	}

	log.Printf("Seeded bootstrap superadmin %q", user.Username)
	return nil
}
