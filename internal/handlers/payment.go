package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"tutorledger/internal/auth"
	"tutorledger/internal/httpx"
	"tutorledger/internal/money"
	"tutorledger/internal/services"
	"tutorledger/internal/validation"
)

type PaymentHandler struct{ Svc *services.PaymentService }

func NewPaymentHandler(svc *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{Svc: svc}
}

var paymentMethods = []string{"cash", "transfer", "card", "other"}

// Create: POST /payments
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	var req struct {
		InvoiceID   uint        `json:"invoice_id"`
		Amount      money.Cents `json:"amount"`
		PaymentDate string      `json:"payment_date"`
		Method      string      `json:"method"`
		Notes       string      `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.Method == "" {
		req.Method = "other"
	}
	v := validation.Violations{}
	if req.InvoiceID == 0 {
		v["invoice_id"] = "required"
	}
	validation.PositiveCents("amount", req.Amount, v)
	validation.OneOf("method", strings.ToLower(req.Method), paymentMethods, v)
	var date time.Time
	if req.PaymentDate != "" {
		d, err := parseDate(req.PaymentDate)
		if err != nil {
			v["payment_date"] = "invalid_date"
		}
		date = d
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	p, err := h.Svc.Record(teacherID, req.InvoiceID, req.Amount, date, strings.ToLower(req.Method), req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// Undo: POST /payments/undo – removes the most recent payment for the
// invoice and re-derives the status.
func (h *PaymentHandler) Undo(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	var req struct {
		InvoiceID uint `json:"invoice_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.InvoiceID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"invoice_id": "required"})
		return
	}
	if err := h.Svc.UndoLast(teacherID, req.InvoiceID); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "reverted"})
}

// List: GET /payments?invoice_id=
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	invoiceID := uintQuery(r, "invoice_id")
	if invoiceID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"invoice_id": "required"})
		return
	}
	ps, err := h.Svc.ListForInvoice(teacherID, invoiceID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	paid, err := h.Svc.PaidTotal(teacherID, invoiceID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": ps, "total": len(ps), "paid_total": paid})
}
