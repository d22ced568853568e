package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultServiceRadius is the service radius in miles used when none is given
const DefaultServiceRadius = 25

// Technician is a bookable service provider. Rating and TotalReviews are derived
// from the technician's reviews.
type Technician struct {
	ID            string                      `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name          string                      `gorm:"not null" json:"name"`
	Email         string                      `gorm:"uniqueIndex;not null" json:"email"`
	Phone         string                      `gorm:"not null" json:"phone"`
	Bio           *string                     `gorm:"type:text" json:"bio"`
	ProfileImage  *string                     `json:"profileImage"`
	Specialties   datatypes.JSONSlice[string] `gorm:"not null" json:"specialties"`   // e.g. ["HVAC", "Refrigeration"]
	ServiceRadius int                         `gorm:"not null" json:"serviceRadius"` // miles
	City          string                      `gorm:"not null;index" json:"city"`
	State         string                      `gorm:"not null;index" json:"state"`
	ZipCode       string                      `gorm:"not null" json:"zipCode"`
	HourlyRate    *float64                    `gorm:"type:decimal(10,2)" json:"hourlyRate"`
	Rating        float64                     `gorm:"type:decimal(3,2);not null;default:0" json:"rating"`
	TotalReviews  int                         `gorm:"not null;default:0" json:"totalReviews"`
	Verified      bool                        `gorm:"not null" json:"verified"`
	Available     bool                        `gorm:"not null" json:"available"`
	CreatedAt     time.Time                   `json:"createdAt"`
}

// TableName specifies the table name for the Technician model
func (Technician) TableName() string {
	return "technicians"
}

// BeforeCreate assigns the id and fills column defaults
func (t *Technician) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	if t.Specialties == nil {
		t.Specialties = datatypes.JSONSlice[string]{}
	}
	if t.ServiceRadius == 0 {
		t.ServiceRadius = DefaultServiceRadius
	}
	return nil
}
