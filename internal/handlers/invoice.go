package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"tutorledger/internal/auth"
	"tutorledger/internal/httpx"
	"tutorledger/internal/money"
	"tutorledger/internal/services"
	"tutorledger/internal/validation"
)

type InvoiceHandler struct {
	Svc      *services.InvoiceService
	Payments *services.PaymentService
}

func NewInvoiceHandler(svc *services.InvoiceService, payments *services.PaymentService) *InvoiceHandler {
	return &InvoiceHandler{Svc: svc, Payments: payments}
}

// Preview: GET /invoices/preview?class_id=&student_id=&year=&month=&rate=
// Runs the calculator without writing anything.
func (h *InvoiceHandler) Preview(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	classID := uintQuery(r, "class_id")
	studentID := uintQuery(r, "student_id")
	year := intQuery(r, "year")
	month := intQuery(r, "month")
	v := validation.Violations{}
	if classID == 0 {
		v["class_id"] = "required"
	}
	if studentID == 0 {
		v["student_id"] = "required"
	}
	if year == 0 {
		v["year"] = "required"
	}
	validation.MonthInRange("month", month, v)
	var rate money.Cents
	if s := r.URL.Query().Get("rate"); s != "" {
		parsed, err := money.Parse(s)
		if err != nil || parsed < 0 {
			v["rate"] = "invalid_amount"
		}
		rate = parsed
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	totals, err := h.Svc.CalculateMonth(teacherID, classID, studentID, year, time.Month(month), rate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, totals)
}

// Generate: POST /invoices/generate
func (h *InvoiceHandler) Generate(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	var req struct {
		ClassID     uint        `json:"class_id"`
		StudentID   uint        `json:"student_id"`
		Year        int         `json:"year"`
		Month       int         `json:"month"`
		Rate        money.Cents `json:"rate"`
		InvoiceDate string      `json:"invoice_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	if req.ClassID == 0 {
		v["class_id"] = "required"
	}
	if req.StudentID == 0 {
		v["student_id"] = "required"
	}
	if req.Year == 0 {
		v["year"] = "required"
	}
	validation.MonthInRange("month", req.Month, v)
	validation.NonNegativeCents("rate", req.Rate, v)
	opts := services.GenerateOptions{RateOverride: req.Rate}
	if req.InvoiceDate != "" {
		d, err := parseDate(req.InvoiceDate)
		if err != nil {
			v["invoice_date"] = "invalid_date"
		}
		opts.InvoiceDate = d
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	inv, err := h.Svc.Generate(teacherID, req.ClassID, req.StudentID, req.Year, time.Month(req.Month), opts)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

// List: GET /invoices?student_id=
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	invs, err := h.Svc.List(teacherID, uintQuery(r, "student_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invs, "total": len(invs)})
}

// Get: GET /invoices/get?id= – invoice with items and the derived paid sum.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	id := uintQuery(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"id": "required"})
		return
	}
	inv, err := h.Svc.Get(teacherID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	paid, err := h.Payments.PaidTotal(teacherID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoice": inv, "paid_total": paid, "balance": inv.Total - paid})
}

// Delete: POST /invoices/delete – bulk, cascades to items and payments.
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	var req struct {
		IDs []uint `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := h.Payments.DeleteInvoices(teacherID, req.IDs); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
