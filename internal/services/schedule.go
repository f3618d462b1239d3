package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tutorledger/internal/models"
	"tutorledger/internal/money"
)

// ScheduleService materializes planned lessons. The unique
// (class, student, date) index plus ON CONFLICT DO NOTHING makes
// materialization idempotent and safe under concurrent calls; two tabs
// materializing the same triple converge on one row.
type ScheduleService struct {
	DB *gorm.DB
}

func NewScheduleService(db *gorm.DB) *ScheduleService { return &ScheduleService{DB: db} }

// Materialize ensures a LessonSchedule row exists for every given date.
// Dates are taken as given at day granularity; callers pre-filter month
// membership. Returns the number of rows actually created. Also records
// the explicit enrollment so the roster reflects the student even before
// any lesson is marked.
func (s *ScheduleService) Materialize(teacherID, classID, studentID uint, dates []time.Time) (int, error) {
	if _, err := ownedClass(s.DB, teacherID, classID); err != nil {
		return 0, err
	}
	if _, err := ownedStudent(s.DB, teacherID, studentID); err != nil {
		return 0, err
	}
	enr := models.Enrollment{ClassID: classID, StudentID: studentID, JoinedAt: time.Now().UTC()}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "class_id"}, {Name: "student_id"}},
		DoNothing: true,
	}).Create(&enr).Error; err != nil {
		return 0, err
	}
	created := 0
	for _, d := range dates {
		row := models.LessonSchedule{ClassID: classID, StudentID: studentID, LessonDate: DateOnly(d)}
		res := s.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "class_id"}, {Name: "student_id"}, {Name: "lesson_date"}},
			DoNothing: true,
		}).Create(&row)
		if res.Error != nil {
			return created, res.Error
		}
		created += int(res.RowsAffected)
	}
	return created, nil
}

// SetRateOverride sets or clears (0) the per-lesson rate on one row.
func (s *ScheduleService) SetRateOverride(teacherID, scheduleID uint, rate money.Cents) error {
	if rate < 0 {
		return &ValidationError{Fields: map[string]string{"rate": "must_not_be_negative"}}
	}
	sched, err := s.ownedSchedule(teacherID, scheduleID)
	if err != nil {
		return err
	}
	return s.DB.Model(&models.LessonSchedule{}).Where("id = ?", sched.ID).Update("rate_override", rate).Error
}

// ListForClass returns the schedule rows for the grid, date then student order.
func (s *ScheduleService) ListForClass(teacherID, classID uint, from, to time.Time) ([]models.LessonSchedule, error) {
	if _, err := ownedClass(s.DB, teacherID, classID); err != nil {
		return nil, err
	}
	q := s.DB.Where("class_id = ?", classID)
	if !from.IsZero() {
		q = q.Where("lesson_date >= ?", DateOnly(from))
	}
	if !to.IsZero() {
		q = q.Where("lesson_date < ?", DateOnly(to))
	}
	var rows []models.LessonSchedule
	if err := q.Order("lesson_date asc, student_id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ownedSchedule loads a schedule row and checks, through the class join,
// that it belongs to the teacher.
func (s *ScheduleService) ownedSchedule(teacherID, scheduleID uint) (*models.LessonSchedule, error) {
	var sched models.LessonSchedule
	err := s.DB.Select("lesson_schedules.*").
		Joins("JOIN classes ON classes.id = lesson_schedules.class_id").
		Where("lesson_schedules.id = ? AND classes.teacher_id = ?", scheduleID, teacherID).
		First(&sched).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sched, nil
}
