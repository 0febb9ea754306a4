package auth

import (
	"strings"
	"time"

	"github.com/ledgerly/ledgerly-backend/internal/organization"
)

// Role names form a closed set; rows are seeded at startup and resolved
// into a RoleSet once instead of being re-queried by name on every write.
const (
	RoleSuperAdmin = "SuperAdmin"
	RoleAdmin      = "Admin"
	RoleUser       = "User"
)

const (
	StatusActive   = "Active"
	StatusDisabled = "Disabled"
)

type Role struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:30;not null;uniqueIndex" json:"name"`
	Description string `json:"description"`
}

func (Role) TableName() string {
	return "roles"
}

// RoleSet holds the three seeded roles, loaded once at startup.
type RoleSet struct {
	SuperAdmin Role
	Admin      Role
	User       Role
}

// ByName resolves a role name case-insensitively against the closed set.
func (rs *RoleSet) ByName(name string) (Role, bool) {
	switch {
	case strings.EqualFold(name, RoleSuperAdmin):
		return rs.SuperAdmin, true
	case strings.EqualFold(name, RoleAdmin):
		return rs.Admin, true
	case strings.EqualFold(name, RoleUser):
		return rs.User, true
	}
	return Role{}, false
}

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	FullName     string `gorm:"not null" json:"fullName"`
	Email        string `gorm:"not null;uniqueIndex" json:"email"` // stored lowercased
	PasswordHash string `gorm:"not null" json:"-"`
	Status       string `gorm:"size:20;default:'Active'" json:"status"`

	RoleID uint `gorm:"not null;index" json:"roleId"`
	Role   Role `gorm:"foreignKey:RoleID" json:"role"`

	OrgID *uint                      `gorm:"index" json:"orgId"`
	Org   *organization.Organization `gorm:"foreignKey:OrgID" json:"org,omitempty"`

	ResetPasswordToken   *string    `gorm:"index" json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`

	LastLoginAt *time.Time `json:"lastLoginAt"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// Projection is the user shape returned to clients: no password hash, role
// flattened to its name, org reduced to id/name/status.
type Projection struct {
	ID          uint       `json:"id"`
	FullName    string     `json:"fullName"`
	Email       string     `json:"email"`
	Status      string     `json:"status"`
	Role        string     `json:"role"`
	Org         *OrgInfo   `json:"org,omitempty"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type OrgInfo struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Project builds the client projection for u. Role and Org must be loaded.
func Project(u *User) Projection {
	p := Projection{
		ID:          u.ID,
		FullName:    u.FullName,
		Email:       u.Email,
		Status:      u.Status,
		Role:        u.Role.Name,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
	if u.Org != nil {
		p.Org = &OrgInfo{ID: u.Org.ID, Name: u.Org.Name, Status: u.Org.Status}
	}
	return p
}
