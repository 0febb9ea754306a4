package auth

import (
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ledgerly/ledgerly-backend/config"
)

// SeedRoles inserts the closed role set if missing and returns the resolved
// RoleSet used for the lifetime of the process.
func SeedRoles(db *gorm.DB) (*RoleSet, error) {
	defs := []Role{
		{Name: RoleSuperAdmin, Description: "Full access across all organizations"},
		{Name: RoleAdmin, Description: "Manages users within their organization"},
		{Name: RoleUser, Description: "Standard member access"},
	}

	set := &RoleSet{}
	for _, def := range defs {
		var role Role
		err := db.Where("name = ?", def.Name).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			role = def
			if err := db.Create(&role).Error; err != nil {
				return nil, fmt.Errorf("seed role %s: %w", def.Name, err)
			}
		} else if err != nil {
			return nil, err
		}

		switch role.Name {
		case RoleSuperAdmin:
			set.SuperAdmin = role
		case RoleAdmin:
			set.Admin = role
		case RoleUser:
			set.User = role
		}
	}

	return set, nil
}

// SeedSuperAdmin creates the bootstrap SuperAdmin account from env config.
// Skipped when the email is unset or the account already exists.
func SeedSuperAdmin(db *gorm.DB, roles *RoleSet, cfg *config.Config) error {
	if cfg.SeedSuperAdminEmail == "" || cfg.SeedSuperAdminPassword == "" {
		log.Println("No super admin seed configured, skipping")
		return nil
	}

	var count int64
	if err := db.Model(&User{}).
		Where("email = ?", normalizeEmail(cfg.SeedSuperAdminEmail)).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedSuperAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &User{
		FullName:     "Super Admin",
		Email:        normalizeEmail(cfg.SeedSuperAdminEmail),
		PasswordHash: string(hash),
		Status:       StatusActive,
		RoleID:       roles.SuperAdmin.ID,
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("seed super admin: %w", err)
	}

	log.Printf("Seeded super admin account %s", admin.Email)
	return nil
}
