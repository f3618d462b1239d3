package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"tutorledger/internal/models"
	"tutorledger/internal/money"
)

// InvoiceService computes month rollups and writes invoices from them.
type InvoiceService struct {
	DB *gorm.DB
}

func NewInvoiceService(db *gorm.DB) *InvoiceService { return &InvoiceService{DB: db} }

// MonthTotals is the calculator result for one (class, student, month).
type MonthTotals struct {
	Scheduled int         `json:"scheduled"` // schedule rows with a date inside the month
	Attended  int         `json:"attended"`  // of those, marked attended
	Unit      money.Cents `json:"unit"`      // resolved per-session rate
	Subtotal  money.Cents `json:"subtotal"`  // Attended times Unit
}

// CalculateMonth counts scheduled and attended sessions in the calendar
// month and resolves the unit rate by precedence: positive manual
// override, else the first positive per-lesson rate among the month's
// schedule rows in date order, else the class default, else zero.
// Any read failure aborts; there is no partial result.
func (s *InvoiceService) CalculateMonth(teacherID, classID, studentID uint, year int, month time.Month, override money.Cents) (*MonthTotals, error) {
	class, err := ownedClass(s.DB, teacherID, classID)
	if err != nil {
		return nil, err
	}
	if _, err := ownedStudent(s.DB, teacherID, studentID); err != nil {
		return nil, err
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	var scheds []models.LessonSchedule
	if err := s.DB.Where("class_id = ? AND student_id = ? AND lesson_date >= ? AND lesson_date < ?", classID, studentID, from, to).
		Order("lesson_date asc").Find(&scheds).Error; err != nil {
		return nil, err
	}

	attended := int64(0)
	if len(scheds) > 0 {
		ids := make([]uint, 0, len(scheds))
		for _, row := range scheds {
			ids = append(ids, row.ID)
		}
		if err := s.DB.Model(&models.AttendanceRecord{}).
			Where("lesson_schedule_id IN ? AND student_id = ? AND attended = ?", ids, studentID, true).
			Count(&attended).Error; err != nil {
			return nil, err
		}
	}

	unit := money.Cents(0)
	switch {
	case override > 0:
		unit = override
	default:
		for _, row := range scheds {
			if row.RateOverride > 0 {
				unit = row.RateOverride
				break
			}
		}
		if unit == 0 && class.DefaultRate > 0 {
			unit = class.DefaultRate
		}
	}

	return &MonthTotals{
		Scheduled: len(scheds),
		Attended:  int(attended),
		Unit:      unit,
		Subtotal:  unit.MulInt(int(attended)),
	}, nil
}

// GenerateOptions tune invoice creation; zero values pick defaults from
// the teacher profile.
type GenerateOptions struct {
	InvoiceDate  time.Time   // default: today
	RateOverride money.Cents // manual unit rate, 0 = resolve by precedence
}

// Generate runs the calculator and, in one transaction, allocates the
// next invoice number and writes the invoice with one consolidated line
// item. A month with zero attended sessions is a validation error, not a
// zero invoice.
func (s *InvoiceService) Generate(teacherID, classID, studentID uint, year int, month time.Month, opts GenerateOptions) (*models.Invoice, error) {
	totals, err := s.CalculateMonth(teacherID, classID, studentID, year, month, opts.RateOverride)
	if err != nil {
		return nil, err
	}
	if totals.Attended == 0 {
		return nil, &ValidationError{Fields: map[string]string{"month": "no_attended_sessions"}}
	}
	var teacher models.Teacher
	if err := s.DB.First(&teacher, teacherID).Error; err != nil {
		return nil, err
	}
	class, err := ownedClass(s.DB, teacherID, classID)
	if err != nil {
		return nil, err
	}

	invoiceDate := opts.InvoiceDate
	if invoiceDate.IsZero() {
		invoiceDate = time.Now().UTC()
	}
	invoiceDate = DateOnly(invoiceDate)
	tax := money.Cents(int64(totals.Subtotal) * int64(teacher.TaxBasisPoints) / 10000)

	var inv models.Invoice
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		number := reference(tx, scopeInvoice, "INV", invoiceDate.Year())
		desc := fmt.Sprintf("Attended sessions - %s, %s %d", class.Name, month.String(), year)
		inv = models.Invoice{
			Number:      number,
			TeacherID:   teacherID,
			StudentID:   studentID,
			ClassID:     classID,
			PeriodYear:  year,
			PeriodMonth: int(month),
			InvoiceDate: invoiceDate,
			DueDate:     invoiceDate.AddDate(0, 0, teacher.InvoiceNetDays),
			Total:       totals.Subtotal + tax,
			Tax:         tax,
			Status:      models.InvoiceDraft,
			Items: []models.InvoiceLineItem{{
				Description: desc,
				Quantity:    totals.Attended,
				UnitPrice:   totals.Unit,
				Total:       totals.Subtotal,
			}},
		}
		return tx.Create(&inv).Error
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Get loads one invoice with its line items, scoped to the owner.
func (s *InvoiceService) Get(teacherID, invoiceID uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.DB.Preload("Items").Where("id = ? AND teacher_id = ?", invoiceID, teacherID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// List returns the teacher's invoices, newest first, optionally filtered
// by student.
func (s *InvoiceService) List(teacherID, studentID uint) ([]models.Invoice, error) {
	q := s.DB.Preload("Items").Where("teacher_id = ?", teacherID)
	if studentID != 0 {
		q = q.Where("student_id = ?", studentID)
	}
	var invs []models.Invoice
	if err := q.Order("id desc").Find(&invs).Error; err != nil {
		return nil, err
	}
	return invs, nil
}
