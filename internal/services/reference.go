package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutorledger/internal/models"
)

const (
	scopeInvoice = "invoice"
	scopePayment = "payment"
)

// nextReference allocates the next sequential code for a scope and year,
// e.g. INV-2026-0004. Runs on the caller's transaction so the counter
// bump commits or rolls back with the row that uses it.
func nextReference(tx *gorm.DB, scope, prefix string, year int) (string, error) {
	var c models.ReferenceCounter
	err := tx.Where("scope = ? AND year = ?", scope, year).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c = models.ReferenceCounter{Scope: scope, Year: year, Next: 1}
		if err := tx.Create(&c).Error; err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}
	n := c.Next
	if err := tx.Model(&models.ReferenceCounter{}).Where("id = ?", c.ID).Update("next", n+1).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%04d", prefix, year, n), nil
}

// reference is nextReference with the degraded fallback path: when the
// counter cannot be used, a timestamp/random code is issued instead.
// Fallback codes are collision-resistant but carry no sequence guarantee.
func reference(tx *gorm.DB, scope, prefix string, year int) string {
	ref, err := nextReference(tx, scope, prefix, year)
	if err != nil {
		slog.Warn("reference counter unavailable, using fallback", "scope", scope, "err", err)
		return fmt.Sprintf("%s-%d-%d-%s", prefix, year, time.Now().Unix(), uuid.NewString()[:8])
	}
	return ref
}

// DateOnly truncates to calendar-day granularity in UTC; lesson dates
// and payment dates are compared at this granularity everywhere.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
