package models

import (
	"time"

	"tutorledger/internal/money"
)

// Enrollment is the explicit class-membership row. The composite unique
// index makes enroll idempotent.
type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClassID   uint      `gorm:"not null;index:idx_enroll_class_student,unique,priority:1" json:"class_id"`
	StudentID uint      `gorm:"not null;index:idx_enroll_class_student,unique,priority:2" json:"student_id"`
	JoinedAt  time.Time `gorm:"not null" json:"joined_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LessonSchedule is one planned session for one student. The unique
// (class, student, date) index turns materialization into a single
// conflict-ignoring insert instead of a racy find-or-create.
type LessonSchedule struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ClassID     uint      `gorm:"not null;index:idx_sched_class_student_date,unique,priority:1" json:"class_id"`
	StudentID   uint      `gorm:"not null;index:idx_sched_class_student_date,unique,priority:2" json:"student_id"`
	LessonDate  time.Time `gorm:"not null;index:idx_sched_class_student_date,unique,priority:3" json:"lesson_date"` // date-only, UTC midnight
	DurationMin int       `gorm:"not null;default:0" json:"duration_min"`
	// Per-lesson rate in cents; 0 means fall back to the class default.
	RateOverride money.Cents `gorm:"not null;default:0" json:"rate_override"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// AttendanceRecord holds at most one outcome per schedule row, enforced
// by the unique index rather than by lookup-then-insert.
type AttendanceRecord struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	LessonScheduleID uint   `gorm:"not null;index:idx_att_schedule_student,unique,priority:1" json:"lesson_schedule_id"`
	StudentID        uint   `gorm:"not null;index:idx_att_schedule_student,unique,priority:2" json:"student_id"` // denormalized from the schedule row
	Attended         bool   `gorm:"not null" json:"attended"`
	Notes            string `json:"notes"`
	RecordedAt       time.Time `gorm:"not null" json:"recorded_at"`
	RecordedBy       uint      `gorm:"not null" json:"recorded_by"` // teacher id
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
