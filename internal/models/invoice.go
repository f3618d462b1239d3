package models

import (
	"time"

	"tutorledger/internal/money"
)

// Invoicing models
type Invoice struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Number      string      `gorm:"size:40;unique;not null" json:"number"`
	TeacherID   uint        `gorm:"not null;index" json:"teacher_id"`
	StudentID   uint        `gorm:"not null;index" json:"student_id"`
	ClassID     uint        `gorm:"not null;index" json:"class_id"`
	PeriodYear  int         `gorm:"not null" json:"period_year"`
	PeriodMonth int         `gorm:"not null" json:"period_month"` // 1..12
	InvoiceDate time.Time   `json:"invoice_date"`
	DueDate     time.Time   `json:"due_date"`
	Total       money.Cents `gorm:"not null" json:"total"`
	Tax         money.Cents `gorm:"not null;default:0" json:"tax"`
	// Cached label; ledger sum versus Total is the truth. Recomputed in
	// the same transaction as every payment mutation.
	Status    string            `gorm:"size:16;not null;default:'draft'" json:"status"`
	Items     []InvoiceLineItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

const (
	InvoiceDraft     = "draft"
	InvoiceSent      = "sent"
	InvoicePaid      = "paid"
	InvoiceOverdue   = "overdue"
	InvoiceCancelled = "cancelled"
)

type InvoiceLineItem struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	InvoiceID        uint        `gorm:"not null;index" json:"invoice_id"`
	Description      string      `gorm:"not null" json:"description"`
	Quantity         int         `gorm:"not null" json:"quantity"`
	UnitPrice        money.Cents `json:"unit_price"`
	Total            money.Cents `json:"total"`
	LessonScheduleID *uint       `json:"lesson_schedule_id"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// Payment is append-only; "paid total" is always a derived sum.
type Payment struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Reference   string      `gorm:"size:40;unique;not null" json:"reference"`
	InvoiceID   uint        `gorm:"not null;index" json:"invoice_id"`
	StudentID   uint        `gorm:"not null;index" json:"student_id"`
	Amount      money.Cents `gorm:"not null" json:"amount"`
	PaymentDate time.Time   `gorm:"not null" json:"payment_date"`
	Method      string      `gorm:"size:16;not null" json:"method"` // cash, transfer, card, other
	Notes       string      `json:"notes"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ReferenceCounter backs sequential per-year numbering for invoices and
// payments; callers fall back to a timestamp/random reference when it
// cannot be read.
type ReferenceCounter struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Scope     string    `gorm:"size:16;not null;index:idx_counter_scope_year,unique,priority:1" json:"scope"`
	Year      int       `gorm:"not null;index:idx_counter_scope_year,unique,priority:2" json:"year"`
	Next      int       `gorm:"not null;default:1" json:"next"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
