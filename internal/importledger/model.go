package importledger

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusSuccess = "Success"
	StatusFailed  = "Failed"
)

// Import is one bookkeeping file upload. User and organization names are
// denormalized onto the row so the history stays readable after the
// uploading account or its organization is removed.
type Import struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	FileName     string         `gorm:"not null" json:"fileName"`
	FileType     string         `json:"fileType"`
	ImportedOn   time.Time      `gorm:"not null" json:"importedOn"`
	Records      int            `gorm:"not null" json:"records"`
	Status       string         `gorm:"not null" json:"status"`
	UserID       uint           `gorm:"not null;index" json:"userId"`
	UserName     string         `gorm:"not null" json:"userName"`
	OrgID        uint           `gorm:"not null;index" json:"orgId"`
	OrgName      string         `gorm:"not null" json:"orgName"`
	Notes        string         `json:"notes"`
	ImportedData datatypes.JSON `json:"importedData,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

func (Import) TableName() string {
	return "imports"
}
