package models

import (
	"time"

	"tutorledger/internal/money"
)

// Class is a named teaching group. TeacherID never changes after creation.
type Class struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	TeacherID uint   `gorm:"not null;index" json:"teacher_id"`
	Name      string `gorm:"not null;index" json:"name"`
	Subject   string `json:"subject"`
	// Default per-session rate in cents; 0 means unset.
	DefaultRate money.Cents `gorm:"not null;default:0" json:"default_rate"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type Student struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	TeacherID   uint   `gorm:"not null;index" json:"teacher_id"`
	Name        string `gorm:"not null;index" json:"name"`
	ParentEmail string `json:"parent_email"`
	// paid, pending, overdue – a display tag refreshed by the payment
	// ledger, never a source of truth.
	PaymentStatus string      `gorm:"size:16;not null;default:'pending'" json:"payment_status"`
	AmountHint    money.Cents `gorm:"not null;default:0" json:"amount_hint"`
	LastPaymentAt *time.Time  `json:"last_payment_at"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

const (
	StudentPaid    = "paid"
	StudentPending = "pending"
	StudentOverdue = "overdue"
)
