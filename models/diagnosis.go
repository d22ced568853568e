package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Diagnosis statuses
const (
	DiagnosisStatusOpen      = "open"
	DiagnosisStatusResolved  = "resolved"
	DiagnosisStatusEscalated = "escalated"
)

// Chat roles accepted in a diagnosis transcript
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a troubleshooting conversation
type ChatMessage struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required"`
}

// Diagnosis is one AI troubleshooting session
type Diagnosis struct {
	ID            string                           `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID        string                           `gorm:"not null;index;type:varchar(64)" json:"userId"`
	User          *User                            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ApplianceID   *string                          `gorm:"index;type:varchar(64)" json:"applianceId"`
	Appliance     *Appliance                       `gorm:"foreignKey:ApplianceID;constraint:OnDelete:SET NULL" json:"-"`
	Issue         string                           `gorm:"type:text;not null" json:"issue"`
	Messages      datatypes.JSONSlice[ChatMessage] `gorm:"not null" json:"messages"`
	Diagnosis     *string                          `gorm:"type:text" json:"diagnosis"`
	Solution      *string                          `gorm:"type:text" json:"solution"`
	ImageKey      *string                          `gorm:"column:image_url" json:"-"` // storage key of the uploaded photo
	ImageURL      *string                          `gorm:"-" json:"imageUrl"`         // computed, resolved from ImageKey
	ImageAnalysis *string                          `gorm:"type:text" json:"imageAnalysis"`
	Status        string                           `gorm:"not null;default:'open'" json:"status"` // open, resolved, escalated
	Resolved      bool                             `gorm:"not null;default:false" json:"resolved"`
	CreatedAt     time.Time                        `json:"createdAt"`
	UpdatedAt     time.Time                        `json:"updatedAt"`
}

// TableName specifies the table name for the Diagnosis model
func (Diagnosis) TableName() string {
	return "diagnoses"
}

// BeforeCreate assigns the id and fills column defaults
func (d *Diagnosis) BeforeCreate(tx *gorm.DB) error {
	ensureID(&d.ID)
	if d.Status == "" {
		d.Status = DiagnosisStatusOpen
	}
	if d.Messages == nil {
		d.Messages = datatypes.JSONSlice[ChatMessage]{}
	}
	return nil
}

// IsActive reports whether the diagnosis still counts as an open session
func (d Diagnosis) IsActive() bool {
	return d.Status == DiagnosisStatusOpen
}
