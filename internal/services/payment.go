package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"tutorledger/internal/models"
	"tutorledger/internal/money"
)

// PaymentService is the append-only ledger against invoices. Every
// mutation recomputes the cached invoice status from the ledger sum in
// the same transaction, so the label cannot drift from ledger truth.
type PaymentService struct {
	DB *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService { return &PaymentService{DB: db} }

func ownedInvoice(db *gorm.DB, teacherID, invoiceID uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := db.Where("id = ? AND teacher_id = ?", invoiceID, teacherID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func paidTotal(tx *gorm.DB, invoiceID uint) (money.Cents, error) {
	var total int64
	err := tx.Model(&models.Payment{}).
		Where("invoice_id = ?", invoiceID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return money.Cents(total), err
}

// PaidTotal returns the derived ledger sum for an invoice; it is never stored.
func (s *PaymentService) PaidTotal(teacherID, invoiceID uint) (money.Cents, error) {
	if _, err := ownedInvoice(s.DB, teacherID, invoiceID); err != nil {
		return 0, err
	}
	return paidTotal(s.DB, invoiceID)
}

// Record validates, inserts the payment and recomputes the invoice
// status and the student's payment tag, all in one transaction. A paid
// sum at or above the total marks the invoice paid; otherwise a draft
// moves to sent and anything else keeps its status.
func (s *PaymentService) Record(teacherID, invoiceID uint, amount money.Cents, date time.Time, method, notes string) (*models.Payment, error) {
	if amount <= 0 {
		return nil, &ValidationError{Fields: map[string]string{"amount": "must_be_positive"}}
	}
	inv, err := ownedInvoice(s.DB, teacherID, invoiceID)
	if err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}
	date = DateOnly(date)

	var p models.Payment
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		p = models.Payment{
			Reference:   reference(tx, scopePayment, "PAY", date.Year()),
			InvoiceID:   inv.ID,
			StudentID:   inv.StudentID,
			Amount:      amount,
			PaymentDate: date,
			Method:      method,
			Notes:       notes,
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		paid, err := paidTotal(tx, inv.ID)
		if err != nil {
			return err
		}
		status := inv.Status
		if paid >= inv.Total {
			status = models.InvoicePaid
		} else if inv.Status == models.InvoiceDraft {
			status = models.InvoiceSent
		}
		if status != inv.Status {
			if err := tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).Update("status", status).Error; err != nil {
				return err
			}
		}
		tag := models.StudentPending
		if paid >= inv.Total {
			tag = models.StudentPaid
		}
		return tx.Model(&models.Student{}).Where("id = ?", inv.StudentID).
			Updates(map[string]any{"payment_status": tag, "last_payment_at": date}).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UndoLast deletes the most recent payment (payment date descending, id
// descending as tie-break) and recomputes the status. Dropping below
// the total reverts a paid invoice to sent; a still-covered total stays
// paid. No payments to undo is ErrNoPayments, not a store failure.
func (s *PaymentService) UndoLast(teacherID, invoiceID uint) error {
	inv, err := ownedInvoice(s.DB, teacherID, invoiceID)
	if err != nil {
		return err
	}
	var last models.Payment
	err = s.DB.Where("invoice_id = ?", inv.ID).Order("payment_date desc, id desc").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoPayments
	}
	if err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Payment{}, last.ID).Error; err != nil {
			return err
		}
		remaining, err := paidTotal(tx, inv.ID)
		if err != nil {
			return err
		}
		var status string
		switch {
		case remaining <= 0 && inv.Status == models.InvoicePaid:
			status = models.InvoiceSent
		case remaining >= inv.Total:
			status = models.InvoicePaid
		default:
			status = models.InvoiceSent
		}
		if status != inv.Status {
			if err := tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).Update("status", status).Error; err != nil {
				return err
			}
		}
		if remaining < inv.Total {
			return tx.Model(&models.Student{}).Where("id = ?", inv.StudentID).
				Update("payment_status", models.StudentPending).Error
		}
		return nil
	})
}

// ListForInvoice returns the ledger rows, newest first.
func (s *PaymentService) ListForInvoice(teacherID, invoiceID uint) ([]models.Payment, error) {
	if _, err := ownedInvoice(s.DB, teacherID, invoiceID); err != nil {
		return nil, err
	}
	var ps []models.Payment
	if err := s.DB.Where("invoice_id = ?", invoiceID).Order("payment_date desc, id desc").Find(&ps).Error; err != nil {
		return nil, err
	}
	return ps, nil
}

// DeleteInvoices removes invoices with their line items and payments in
// one transaction (application-level cascade). Ids not owned by the
// caller are ignored; none owned at all is ErrNotFound.
func (s *PaymentService) DeleteInvoices(teacherID uint, ids []uint) error {
	if len(ids) == 0 {
		return &ValidationError{Fields: map[string]string{"ids": "required"}}
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var owned []uint
		if err := tx.Model(&models.Invoice{}).Where("id IN ? AND teacher_id = ?", ids, teacherID).Pluck("id", &owned).Error; err != nil {
			return err
		}
		if len(owned) == 0 {
			return ErrNotFound
		}
		if err := tx.Where("invoice_id IN ?", owned).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id IN ?", owned).Delete(&models.InvoiceLineItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", owned).Delete(&models.Invoice{}).Error
	})
}
