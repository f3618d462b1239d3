package models

import "time"

// Teacher is the owning account; every other row carries its id,
// directly or through a class/invoice join.
type Teacher struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Email       string `gorm:"unique;not null;index" json:"email"`
	Password    string `gorm:"not null" json:"-"` // bcrypt hash
	DisplayName string `json:"display_name"`
	SchoolName  string `json:"school_name"`
	// Branding shown on invoices; the logo itself lives in blob storage,
	// only the public URL is kept here.
	LogoURL    string `json:"logo_url"`
	ThemeColor string `gorm:"size:16" json:"theme_color"`
	Currency   string `gorm:"size:3;not null;default:'USD'" json:"currency"`
	// Invoice defaults
	InvoiceNetDays int       `gorm:"not null;default:14" json:"invoice_net_days"`
	TaxBasisPoints int       `gorm:"not null;default:0" json:"tax_basis_points"` // 2000 = 20%
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
