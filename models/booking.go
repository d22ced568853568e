package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking statuses
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// Payment statuses
const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// Booking is a scheduled service engagement between a user and a technician
type Booking struct {
	ID                 string      `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID             string      `gorm:"not null;index;type:varchar(64)" json:"userId"`
	User               *User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TechnicianID       string      `gorm:"not null;index;type:varchar(64)" json:"technicianId"`
	Technician         *Technician `gorm:"foreignKey:TechnicianID;constraint:OnDelete:CASCADE" json:"-"`
	ApplianceID        *string     `gorm:"index;type:varchar(64)" json:"applianceId"`
	Appliance          *Appliance  `gorm:"foreignKey:ApplianceID;constraint:OnDelete:SET NULL" json:"-"`
	DiagnosisID        *string     `gorm:"index;type:varchar(64)" json:"diagnosisId"`
	Diagnosis          *Diagnosis  `gorm:"foreignKey:DiagnosisID;constraint:OnDelete:SET NULL" json:"-"`
	ScheduledDate      time.Time   `gorm:"not null" json:"scheduledDate"`
	Status             string      `gorm:"not null;default:'pending'" json:"status"` // pending, confirmed, completed, cancelled
	ServiceType        string      `gorm:"not null" json:"serviceType"`              // repair, maintenance, installation
	ProblemDescription string      `gorm:"type:text;not null" json:"problemDescription"`
	EstimatedCost      *float64    `gorm:"type:decimal(10,2)" json:"estimatedCost"`
	ActualCost         *float64    `gorm:"type:decimal(10,2)" json:"actualCost"`
	PaymentStatus      string      `gorm:"not null;default:'unpaid'" json:"paymentStatus"` // unpaid, paid, refunded
	PaymentIntentID    *string     `json:"paymentIntentId"`
	Notes              *string     `gorm:"type:text" json:"notes"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

// TableName specifies the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}

// BeforeCreate assigns the id and fills column defaults
func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	if b.Status == "" {
		b.Status = BookingStatusPending
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = PaymentStatusUnpaid
	}
	return nil
}

// IsUpcoming reports whether the booking is still live and scheduled after now
func (b Booking) IsUpcoming(now time.Time) bool {
	return b.Status != BookingStatusCancelled &&
		b.Status != BookingStatusCompleted &&
		b.ScheduledDate.After(now)
}
