package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorledger/internal/models"
)

func materializeOne(t *testing.T, svc *ScheduleService, teacherID, classID, studentID uint, d time.Time) models.LessonSchedule {
	t.Helper()
	_, err := svc.Materialize(teacherID, classID, studentID, []time.Time{d})
	require.NoError(t, err)
	var row models.LessonSchedule
	require.NoError(t, svc.DB.Where("class_id = ? AND student_id = ? AND lesson_date = ?", classID, studentID, DateOnly(d)).First(&row).Error)
	return row
}

func TestMarkConvergesToLastWrite(t *testing.T) {
	conn := newTestDB(t)
	teacher := seedTeacher(t, conn)
	class := seedClass(t, conn, teacher.ID, 2000)
	student := seedStudent(t, conn, teacher.ID, "S1")
	sched := materializeOne(t, NewScheduleService(conn), teacher.ID, class.ID, student.ID, day(2026, time.March, 2))
	svc := NewAttendanceService(conn)

	// toggle several times; the single row must hold the last value
	for _, attended := range []bool{true, false, true, false} {
		require.NoError(t, svc.Mark(teacher.ID, sched.ID, student.ID, attended, ""))
	}

	var recs []models.AttendanceRecord
	require.NoError(t, conn.Where("lesson_schedule_id = ?", sched.ID).Find(&recs).Error)
	require.Len(t, recs, 1)
	assert.False(t, recs[0].Attended)
	assert.Equal(t, teacher.ID, recs[0].RecordedBy)
}

func TestMarkUpdatesNotes(t *testing.T) {
	conn := newTestDB(t)
	teacher := seedTeacher(t, conn)
	class := seedClass(t, conn, teacher.ID, 2000)
	student := seedStudent(t, conn, teacher.ID, "S1")
	sched := materializeOne(t, NewScheduleService(conn), teacher.ID, class.ID, student.ID, day(2026, time.March, 2))
	svc := NewAttendanceService(conn)

	require.NoError(t, svc.Mark(teacher.ID, sched.ID, student.ID, true, "came late"))
	require.NoError(t, svc.Mark(teacher.ID, sched.ID, student.ID, true, "made up the time"))

	var rec models.AttendanceRecord
	require.NoError(t, conn.Where("lesson_schedule_id = ?", sched.ID).First(&rec).Error)
	assert.Equal(t, "made up the time", rec.Notes)
}

func TestMarkStudentMismatch(t *testing.T) {
	conn := newTestDB(t)
	teacher := seedTeacher(t, conn)
	class := seedClass(t, conn, teacher.ID, 2000)
	s1 := seedStudent(t, conn, teacher.ID, "S1")
	s2 := seedStudent(t, conn, teacher.ID, "S2")
	sched := materializeOne(t, NewScheduleService(conn), teacher.ID, class.ID, s1.ID, day(2026, time.March, 2))

	err := NewAttendanceService(conn).Mark(teacher.ID, sched.ID, s2.ID, true, "")
	fields, ok := AsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Contains(t, fields, "student_id")
}

func TestMarkForeignScheduleNotFound(t *testing.T) {
	conn := newTestDB(t)
	owner := seedTeacher(t, conn)
	class := seedClass(t, conn, owner.ID, 2000)
	student := seedStudent(t, conn, owner.ID, "S1")
	sched := materializeOne(t, NewScheduleService(conn), owner.ID, class.ID, student.ID, day(2026, time.March, 2))
	other := models.Teacher{Email: "other@test", Password: "x"}
	require.NoError(t, conn.Create(&other).Error)

	err := NewAttendanceService(conn).Mark(other.ID, sched.ID, student.ID, true, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListForSchedules(t *testing.T) {
	conn := newTestDB(t)
	teacher := seedTeacher(t, conn)
	class := seedClass(t, conn, teacher.ID, 2000)
	student := seedStudent(t, conn, teacher.ID, "S1")
	schedSvc := NewScheduleService(conn)
	svc := NewAttendanceService(conn)

	a := materializeOne(t, schedSvc, teacher.ID, class.ID, student.ID, day(2026, time.March, 2))
	b := materializeOne(t, schedSvc, teacher.ID, class.ID, student.ID, day(2026, time.March, 9))
	require.NoError(t, svc.Mark(teacher.ID, a.ID, student.ID, true, ""))

	recs, err := svc.ListForSchedules(teacher.ID, []uint{a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, recs, 1, "unmarked rows have no record; absent by default")
	assert.Equal(t, a.ID, recs[0].LessonScheduleID)
}
