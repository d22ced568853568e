package models

import (
	"time"

	"gorm.io/gorm"
)

// Review is a 1-5 star rating of a technician for one booking
type Review struct {
	ID           string      `gorm:"primaryKey;type:varchar(64)" json:"id"`
	BookingID    string      `gorm:"not null;index;type:varchar(64)" json:"bookingId"`
	Booking      *Booking    `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"-"`
	UserID       string      `gorm:"not null;index;type:varchar(64)" json:"userId"`
	User         *User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TechnicianID string      `gorm:"not null;index;type:varchar(64)" json:"technicianId"`
	Technician   *Technician `gorm:"foreignKey:TechnicianID;constraint:OnDelete:CASCADE" json:"-"`
	Rating       int         `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment      *string     `gorm:"type:text" json:"comment"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// TableName specifies the table name for the Review model
func (Review) TableName() string {
	return "reviews"
}

// BeforeCreate assigns the review id
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
