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
	"tutorledger/internal/services"
	"tutorledger/internal/validation"
)

type ClassHandler struct {
	DB  *gorm.DB
	Enr *services.EnrollmentService
}

func NewClassHandler(db *gorm.DB, enr *services.EnrollmentService) *ClassHandler {
	return &ClassHandler{DB: db, Enr: enr}
}

// List: GET /classes
func (h *ClassHandler) List(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	var classes []models.Class
	if err := h.DB.Where("teacher_id = ?", teacherID).Order("name asc").Find(&classes).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_classes", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": classes, "total": len(classes)})
}

// Create: POST /classes
func (h *ClassHandler) Create(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	var req struct {
		Name        string      `json:"name"`
		Subject     string      `json:"subject"`
		DefaultRate money.Cents `json:"default_rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	validation.NonNegativeCents("default_rate", req.DefaultRate, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	class := models.Class{TeacherID: teacherID, Name: strings.TrimSpace(req.Name), Subject: strings.TrimSpace(req.Subject), DefaultRate: req.DefaultRate}
	if err := h.DB.Create(&class).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "could_not_create_class", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, class)
}

// Update: POST /classes/update. TeacherID is immutable; only name,
// subject and rate may change.
func (h *ClassHandler) Update(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	var req struct {
		ID          uint         `json:"id"`
		Name        *string      `json:"name"`
		Subject     *string      `json:"subject"`
		DefaultRate *money.Cents `json:"default_rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	var class models.Class
	if err := h.DB.Where("id = ? AND teacher_id = ?", req.ID, teacherID).First(&class).Error; err != nil {
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
	if req.Subject != nil {
		updates["subject"] = strings.TrimSpace(*req.Subject)
	}
	if req.DefaultRate != nil {
		if *req.DefaultRate < 0 {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"default_rate": "must_not_be_negative"})
			return
		}
		updates["default_rate"] = *req.DefaultRate
	}
	if len(updates) > 0 {
		if err := h.DB.Model(&class).Updates(updates).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "could_not_update_class", nil)
			return
		}
	}
	httpx.JSON(w, http.StatusOK, class)
}

// Delete: POST /classes/delete
func (h *ClassHandler) Delete(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	var req struct {
		ID uint `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	res := h.DB.Where("id = ? AND teacher_id = ?", req.ID, teacherID).Delete(&models.Class{})
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "could_not_delete_class", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Roster: GET /classes/roster?class_id=
func (h *ClassHandler) Roster(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	classID := uintQuery(r, "class_id")
	if classID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"class_id": "required"})
		return
	}
	students, err := h.Enr.Roster(teacherID, classID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": students, "total": len(students)})
}

// Enroll: POST /classes/enroll
func (h *ClassHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, h.Enr.Enroll)
}

// Unenroll: POST /classes/unenroll
func (h *ClassHandler) Unenroll(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, h.Enr.Unenroll)
}

func (h *ClassHandler) membership(w http.ResponseWriter, r *http.Request, op func(teacherID, classID, studentID uint) error) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	var req struct {
		ClassID   uint `json:"class_id"`
		StudentID uint `json:"student_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.ClassID == 0 || req.StudentID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"class_id": "required", "student_id": "required"})
		return
	}
	if err := op(teacherID, req.ClassID, req.StudentID); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
