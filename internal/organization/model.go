package organization

import "time"

// Subscription plans offered to organizations.
const (
	PlanStarter      = "Starter"
	PlanGrowth       = "Growth"
	PlanProfessional = "Professional"
	PlanEnterprise   = "Enterprise"
)

const (
	StatusActive   = "Active"
	StatusDisabled = "Disabled"
)

type Organization struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null;uniqueIndex" json:"name"`
	ContactEmail string    `gorm:"not null" json:"contactEmail"`
	Phone        string    `gorm:"not null" json:"phone"`
	Plan         string    `gorm:"size:20;default:'Starter'" json:"plan"`
	Status       string    `gorm:"size:20;default:'Active'" json:"status"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Organization) TableName() string {
	return "organizations"
}

// ValidPlan reports whether p is one of the offered plans.
func ValidPlan(p string) bool {
	switch p {
	case PlanStarter, PlanGrowth, PlanProfessional, PlanEnterprise:
		return true
	}
	return false
}

// ValidStatus reports whether s is a known organization status.
func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusDisabled
}
