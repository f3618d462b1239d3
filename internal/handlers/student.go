package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"tutorledger/internal/auth"
	"tutorledger/internal/httpx"
	"tutorledger/internal/models"
	"tutorledger/internal/money"
	"tutorledger/internal/validation"
)

type StudentHandler struct{ DB *gorm.DB }

func NewStudentHandler(db *gorm.DB) *StudentHandler { return &StudentHandler{DB: db} }

var studentStatuses = []string{models.StudentPaid, models.StudentPending, models.StudentOverdue}

// List: GET /students – optional ?q= name filter
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	dbq := h.DB.Where("teacher_id = ?", teacherID)
	if q != "" {
		dbq = dbq.Where("lower(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	var students []models.Student
	if err := dbq.Order("name asc").Find(&students).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_students", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": students, "total": len(students)})
}

// Create: POST /students
func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	var req struct {
		Name          string      `json:"name"`
		ParentEmail   string      `json:"parent_email"`
		PaymentStatus string      `json:"payment_status"`
		AmountHint    money.Cents `json:"amount_hint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.PaymentStatus == "" {
		req.PaymentStatus = models.StudentPending
	}
	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	validation.OneOf("payment_status", req.PaymentStatus, studentStatuses, v)
	validation.NonNegativeCents("amount_hint", req.AmountHint, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	student := models.Student{
		TeacherID:     teacherID,
		Name:          strings.TrimSpace(req.Name),
		ParentEmail:   strings.TrimSpace(req.ParentEmail),
		PaymentStatus: req.PaymentStatus,
		AmountHint:    req.AmountHint,
	}
	if err := h.DB.Create(&student).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "could_not_create_student", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, student)
}

// Update: POST /students/update
func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	var req struct {
		ID            uint         `json:"id"`
		Name          *string      `json:"name"`
		ParentEmail   *string      `json:"parent_email"`
		PaymentStatus *string      `json:"payment_status"`
		AmountHint    *money.Cents `json:"amount_hint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	var student models.Student
	if err := h.DB.Where("id = ? AND teacher_id = ?", req.ID, teacherID).First(&student).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	updates := map[string]any{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"name": "required"})
			return
		}
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.ParentEmail != nil {
		updates["parent_email"] = strings.TrimSpace(*req.ParentEmail)
	}
	if req.PaymentStatus != nil {
		v := validation.Violations{}
		validation.OneOf("payment_status", *req.PaymentStatus, studentStatuses, v)
		if !v.Empty() {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		updates["payment_status"] = *req.PaymentStatus
	}
	if req.AmountHint != nil {
		if *req.AmountHint < 0 {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"amount_hint": "must_not_be_negative"})
			return
		}
		updates["amount_hint"] = *req.AmountHint
	}
	if len(updates) > 0 {
		if err := h.DB.Model(&student).Updates(updates).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "could_not_update_student", nil)
			return
		}
	}
	httpx.JSON(w, http.StatusOK, student)
}

// Delete: POST /students/delete
func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	var req struct {
		ID uint `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	res := h.DB.Where("id = ? AND teacher_id = ?", req.ID, teacherID).Delete(&models.Student{})
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "could_not_delete_student", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
