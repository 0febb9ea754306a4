package auth

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(user *User) error
	FindByEmail(email string) (*User, error)
	FindByID(userID uint) (*User, error)
	UpdateLastLogin(userID uint, at time.Time) error
	Update(user *User) error

	SetResetToken(userID uint, token string, expiry time.Time) error
	FindByResetToken(token string) (*User, error)
	ClearResetToken(userID uint) error
	UpdatePassword(userID uint, passwordHash string) error
}

type repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *repository) Create(user *User) error {
	user.Email = normalizeEmail(user.Email)
	return r.db.Create(user).Error
}

// FindByEmail matches case-insensitively; emails are stored lowercased.
func (r *repository) FindByEmail(email string) (*User, error) {
	var u User
	err := r.db.Preload("Role").Preload("Org").
		Where("email = ?", normalizeEmail(email)).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByID(userID uint) (*User, error) {
	var u User
	err := r.db.Preload("Role").Preload("Org").First(&u, userID).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) UpdateLastLogin(userID uint, at time.Time) error {
	return r.db.Model(&User{}).Where("id = ?", userID).
		Update("last_login_at", at).Error
}

func (r *repository) Update(user *User) error {
	return r.db.Save(user).Error
}

func (r *repository) SetResetToken(userID uint, token string, expiry time.Time) error {
	return r.db.Model(&User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"reset_password_token":   token,
		"reset_password_expires": expiry,
	}).Error
}

// FindByResetToken only matches unexpired tokens; an expired token behaves
// exactly like an unknown one.
func (r *repository) FindByResetToken(token string) (*User, error) {
	var u User
	err := r.db.
		Where("reset_password_token = ? AND reset_password_expires > ?", token, time.Now()).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) ClearResetToken(userID uint) error {
	return r.db.Model(&User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"reset_password_token":   nil,
		"reset_password_expires": nil,
	}).Error
}

func (r *repository) UpdatePassword(userID uint, passwordHash string) error {
	return r.db.Model(&User{}).Where("id = ?", userID).
		Update("password_hash", passwordHash).Error
}
