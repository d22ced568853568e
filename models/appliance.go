package models

import (
	"time"

	"gorm.io/gorm"
)

// Appliance is a device registered by a user
type Appliance struct {
	ID             string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID         string     `gorm:"not null;index;type:varchar(64)" json:"userId"`
	User           *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Name           string     `gorm:"not null" json:"name"` // e.g. "Kitchen Refrigerator"
	Type           string     `gorm:"not null" json:"type"` // e.g. "refrigerator", "washing_machine"
	Brand          *string    `json:"brand"`
	Model          *string    `json:"model"`
	SerialNumber   *string    `json:"serialNumber"`
	PurchaseDate   *time.Time `json:"purchaseDate"`
	WarrantyExpiry *time.Time `json:"warrantyExpiry"`
	ManualURL      *string    `json:"manualUrl"`
	ImageURL       *string    `json:"imageUrl"`
	Notes          *string    `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// TableName specifies the table name for the Appliance model
func (Appliance) TableName() string {
	return "appliances"
}

// BeforeCreate assigns the appliance id
func (a *Appliance) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
