package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"tutorledger/internal/auth"
	"tutorledger/internal/httpx"
	"tutorledger/internal/services"
)

type AttendanceHandler struct{ Svc *services.AttendanceService }

func NewAttendanceHandler(svc *services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{Svc: svc}
}

// Mark: POST /attendance/mark – the grid toggle. Upserts the single
// outcome row; response carries no row, matching the fire-and-refetch
// flow of the grid.
func (h *AttendanceHandler) Mark(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	var req struct {
		ScheduleID uint   `json:"schedule_id"`
		StudentID  uint   `json:"student_id"`
		Attended   bool   `json:"attended"`
		Notes      string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.ScheduleID == 0 || req.StudentID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"schedule_id": "required", "student_id": "required"})
		return
	}
	if err := h.Svc.Mark(teacherID, req.ScheduleID, req.StudentID, req.Attended, req.Notes); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// List: GET /attendance?schedule_ids=1,2,3
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	raw := strings.TrimSpace(r.URL.Query().Get("schedule_ids"))
	if raw == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"schedule_ids": "required"})
		return
	}
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"schedule_ids": "invalid_id: " + part})
			return
		}
		ids = append(ids, uint(n))
	}
	recs, err := h.Svc.ListForSchedules(teacherID, ids)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": recs, "total": len(recs)})
}
