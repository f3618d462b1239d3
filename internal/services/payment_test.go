package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorledger/internal/models"
	"tutorledger/internal/money"
)

// seedInvoice writes an invoice directly; payment tests do not need the
// attendance pipeline behind Generate.
func seedInvoice(t *testing.T, f *fixture, total int64) models.Invoice {
	t.Helper()
	inv := models.Invoice{
		Number: "INV-2026-9999", TeacherID: f.teacher.ID, StudentID: f.student.ID, ClassID: f.class.ID,
		PeriodYear: 2026, PeriodMonth: 3, InvoiceDate: day(2026, time.April, 1), DueDate: day(2026, time.April, 15),
		Total: money.Cents(total), Status: models.InvoiceDraft,
		Items: []models.InvoiceLineItem{{Description: "Attended sessions", Quantity: 3, UnitPrice: money.Cents(total / 3), Total: money.Cents(total)}},
	}
	require.NoError(t, f.db.Create(&inv).Error)
	return inv
}

func TestRecordRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(t, 2000)
	inv := seedInvoice(t, f, 10000)
	svc := NewPaymentService(f.db)

	for _, amount := range []money.Cents{0, -500} {
		_, err := svc.Record(f.teacher.ID, inv.ID, amount, day(2026, time.April, 2), "cash", "")
		fields, ok := AsValidation(err)
		require.True(t, ok, "expected validation error for %d, got %v", amount, err)
		assert.Contains(t, fields, "amount")
	}
	var count int64
	require.NoError(t, f.db.Model(&models.Payment{}).Count(&count).Error)
	assert.Zero(t, count, "no write on validation failure")
}

func TestLedgerSumAfterInsertsAndUndo(t *testing.T) {
	f := newFixture(t, 2000)
	inv := seedInvoice(t, f, 10000)
	svc := NewPaymentService(f.db)

	amounts := []money.Cents{3000, 5000, 2000}
	for i, a := range amounts {
		_, err := svc.Record(f.teacher.ID, inv.ID, a, day(2026, time.April, 2+i), "transfer", "")
		require.NoError(t, err)
	}
	paid, err := svc.PaidTotal(f.teacher.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(10000), paid)

	require.NoError(t, svc.UndoLast(f.teacher.ID, inv.ID))
	paid, err = svc.PaidTotal(f.teacher.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(8000), paid, "sum of the first N-1 amounts")
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture(t, 2000)
	inv := seedInvoice(t, f, 10000)
	svc := NewPaymentService(f.db)

	// partial payment on a draft moves it to sent
	_, err := svc.Record(f.teacher.ID, inv.ID, 4000, day(2026, time.April, 2), "cash", "")
	require.NoError(t, err)
	var got models.Invoice
	require.NoError(t, f.db.First(&got, inv.ID).Error)
	assert.Equal(t, models.InvoiceSent, got.Status)

	// covering the total moves it to paid
	_, err = svc.Record(f.teacher.ID, inv.ID, 6000, day(2026, time.April, 3), "cash", "")
	require.NoError(t, err)
	require.NoError(t, f.db.First(&got, inv.ID).Error)
	assert.Equal(t, models.InvoicePaid, got.Status)

	// student tag follows the ledger
	var student models.Student
	require.NoError(t, f.db.First(&student, f.student.ID).Error)
	assert.Equal(t, models.StudentPaid, student.PaymentStatus)
	require.NotNil(t, student.LastPaymentAt)

	// undo drops below the total again
	require.NoError(t, svc.UndoLast(f.teacher.ID, inv.ID))
	require.NoError(t, f.db.First(&got, inv.ID).Error)
	assert.Equal(t, models.InvoiceSent, got.Status)
	require.NoError(t, f.db.First(&student, f.student.ID).Error)
	assert.Equal(t, models.StudentPending, student.PaymentStatus)
}

func TestFullPaymentThenUndoRevertsToSent(t *testing.T) {
	f := newFixture(t, 2000)
	inv := seedInvoice(t, f, 10000)
	svc := NewPaymentService(f.db)

	_, err := svc.Record(f.teacher.ID, inv.ID, 10000, day(2026, time.April, 2), "transfer", "")
	require.NoError(t, err)
	var got models.Invoice
	require.NoError(t, f.db.First(&got, inv.ID).Error)
	require.Equal(t, models.InvoicePaid, got.Status)

	require.NoError(t, svc.UndoLast(f.teacher.ID, inv.ID))
	require.NoError(t, f.db.First(&got, inv.ID).Error)
	assert.Equal(t, models.InvoiceSent, got.Status, "paid with empty ledger reverts to sent")
}

func TestUndoPicksMostRecentPayment(t *testing.T) {
	f := newFixture(t, 2000)
	inv := seedInvoice(t, f, 10000)
	svc := NewPaymentService(f.db)

	_, err := svc.Record(f.teacher.ID, inv.ID, 3000, day(2026, time.April, 5), "cash", "")
	require.NoError(t, err)
	// earlier date, inserted later: undo must still remove the April 5 one
	_, err = svc.Record(f.teacher.ID, inv.ID, 2000, day(2026, time.April, 1), "cash", "")
	require.NoError(t, err)

	require.NoError(t, svc.UndoLast(f.teacher.ID, inv.ID))
	var remaining []models.Payment
	require.NoError(t, f.db.Where("invoice_id = ?", inv.ID).Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, money.Cents(2000), remaining[0].Amount)
}

func TestUndoWithoutPayments(t *testing.T) {
	f := newFixture(t, 2000)
	inv := seedInvoice(t, f, 10000)
	err := NewPaymentService(f.db).UndoLast(f.teacher.ID, inv.ID)
	assert.ErrorIs(t, err, ErrNoPayments)
}

func TestPaymentReferencesSequential(t *testing.T) {
	f := newFixture(t, 2000)
	inv := seedInvoice(t, f, 10000)
	svc := NewPaymentService(f.db)

	p1, err := svc.Record(f.teacher.ID, inv.ID, 1000, day(2026, time.April, 2), "cash", "")
	require.NoError(t, err)
	p2, err := svc.Record(f.teacher.ID, inv.ID, 1000, day(2026, time.April, 3), "cash", "")
	require.NoError(t, err)
	assert.Equal(t, "PAY-2026-0001", p1.Reference)
	assert.Equal(t, "PAY-2026-0002", p2.Reference)
	assert.True(t, strings.HasPrefix(p2.Reference, "PAY-2026-"))
}

func TestDeleteInvoiceCascades(t *testing.T) {
	f := newFixture(t, 2000)
	inv := seedInvoice(t, f, 10000)
	svc := NewPaymentService(f.db)

	_, err := svc.Record(f.teacher.ID, inv.ID, 3000, day(2026, time.April, 2), "cash", "")
	require.NoError(t, err)
	_, err = svc.Record(f.teacher.ID, inv.ID, 2000, day(2026, time.April, 3), "cash", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteInvoices(f.teacher.ID, []uint{inv.ID}))

	var invCount, itemCount, payCount int64
	require.NoError(t, f.db.Model(&models.Invoice{}).Where("id = ?", inv.ID).Count(&invCount).Error)
	require.NoError(t, f.db.Model(&models.InvoiceLineItem{}).Where("invoice_id = ?", inv.ID).Count(&itemCount).Error)
	require.NoError(t, f.db.Model(&models.Payment{}).Where("invoice_id = ?", inv.ID).Count(&payCount).Error)
	assert.Zero(t, invCount)
	assert.Zero(t, itemCount)
	assert.Zero(t, payCount)
}

func TestDeleteInvoicesScopedToOwner(t *testing.T) {
	f := newFixture(t, 2000)
	inv := seedInvoice(t, f, 10000)
	other := models.Teacher{Email: "other@test", Password: "x"}
	require.NoError(t, f.db.Create(&other).Error)

	err := NewPaymentService(f.db).DeleteInvoices(other.ID, []uint{inv.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, f.db.Model(&models.Invoice{}).Where("id = ?", inv.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
