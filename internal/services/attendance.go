package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tutorledger/internal/models"
)

// AttendanceService records lesson outcomes. One row per schedule row;
// repeated toggles converge on the last value written.
type AttendanceService struct {
	DB *gorm.DB
}

func NewAttendanceService(db *gorm.DB) *AttendanceService { return &AttendanceService{DB: db} }

// Mark upserts the outcome for a schedule row. The student id must
// match the schedule row's student; ownership is checked through the
// class join. Returns only success or failure, not the resulting row.
func (s *AttendanceService) Mark(teacherID, scheduleID, studentID uint, attended bool, notes string) error {
	var sched models.LessonSchedule
	err := s.DB.Select("lesson_schedules.*").
		Joins("JOIN classes ON classes.id = lesson_schedules.class_id").
		Where("lesson_schedules.id = ? AND classes.teacher_id = ?", scheduleID, teacherID).
		First(&sched).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if sched.StudentID != studentID {
		return &ValidationError{Fields: map[string]string{"student_id": "does_not_match_schedule"}}
	}
	rec := models.AttendanceRecord{
		LessonScheduleID: sched.ID,
		StudentID:        studentID,
		Attended:         attended,
		Notes:            notes,
		RecordedAt:       time.Now().UTC(),
		RecordedBy:       teacherID,
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "lesson_schedule_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"attended", "notes", "recorded_at", "recorded_by", "updated_at"}),
	}).Create(&rec).Error
}

// ListForSchedules returns the outcomes for a set of schedule rows,
// scoped to the teacher through the class join.
func (s *AttendanceService) ListForSchedules(teacherID uint, scheduleIDs []uint) ([]models.AttendanceRecord, error) {
	if len(scheduleIDs) == 0 {
		return []models.AttendanceRecord{}, nil
	}
	var recs []models.AttendanceRecord
	err := s.DB.Select("attendance_records.*").
		Joins("JOIN lesson_schedules ON lesson_schedules.id = attendance_records.lesson_schedule_id").
		Joins("JOIN classes ON classes.id = lesson_schedules.class_id").
		Where("attendance_records.lesson_schedule_id IN ? AND classes.teacher_id = ?", scheduleIDs, teacherID).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}
