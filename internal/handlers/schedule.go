package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"tutorledger/internal/auth"
	"tutorledger/internal/httpx"
	"tutorledger/internal/money"
	"tutorledger/internal/services"
)

type ScheduleHandler struct{ Svc *services.ScheduleService }

func NewScheduleHandler(svc *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{Svc: svc}
}

// Materialize: POST /schedule/materialize – ensure a lesson row exists
// for every given date. Safe to repeat; reports how many were new.
func (h *ScheduleHandler) Materialize(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	var req struct {
		ClassID   uint     `json:"class_id"`
		StudentID uint     `json:"student_id"`
		Dates     []string `json:"dates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.ClassID == 0 || req.StudentID == 0 || len(req.Dates) == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"class_id": "required", "student_id": "required", "dates": "required"})
		return
	}
	dates := make([]time.Time, 0, len(req.Dates))
	for _, s := range req.Dates {
		d, err := parseDate(s)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"dates": "invalid_date: " + s})
			return
		}
		dates = append(dates, d)
	}
	created, err := h.Svc.Materialize(teacherID, req.ClassID, req.StudentID, dates)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"created": created, "requested": len(dates)})
}

// List: GET /schedule?class_id=&from=&to= – rows for the attendance grid.
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	classID := uintQuery(r, "class_id")
	if classID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"class_id": "required"})
		return
	}
	var from, to time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		d, err := parseDate(v)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"from": "invalid_date"})
			return
		}
		from = d
	}
	if v := r.URL.Query().Get("to"); v != "" {
		d, err := parseDate(v)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"to": "invalid_date"})
			return
		}
		to = d
	}
	rows, err := h.Svc.ListForClass(teacherID, classID, from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": rows, "total": len(rows)})
}

// SetRate: POST /schedule/rate – per-lesson rate override (0 clears).
func (h *ScheduleHandler) SetRate(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	var req struct {
		ScheduleID uint        `json:"schedule_id"`
		Rate       money.Cents `json:"rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.ScheduleID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"schedule_id": "required"})
		return
	}
	if err := h.Svc.SetRateOverride(teacherID, req.ScheduleID, req.Rate); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
