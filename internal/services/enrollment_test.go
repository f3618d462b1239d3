package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorledger/internal/models"
)

func TestEnrollIdempotentAndRosterWithoutLessons(t *testing.T) {
	conn := newTestDB(t)
	teacher := seedTeacher(t, conn)
	class := seedClass(t, conn, teacher.ID, 2000)
	student := seedStudent(t, conn, teacher.ID, "S1")
	svc := NewEnrollmentService(conn)

	require.NoError(t, svc.Enroll(teacher.ID, class.ID, student.ID))
	require.NoError(t, svc.Enroll(teacher.ID, class.ID, student.ID))

	var count int64
	require.NoError(t, conn.Model(&models.Enrollment{}).Where("class_id = ?", class.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// enrolled even though no lesson was ever scheduled
	roster, err := svc.Roster(teacher.ID, class.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, student.ID, roster[0].ID)
}

func TestEnrolledStudentsIncludeScheduleDerived(t *testing.T) {
	conn := newTestDB(t)
	teacher := seedTeacher(t, conn)
	class := seedClass(t, conn, teacher.ID, 2000)
	explicit := seedStudent(t, conn, teacher.ID, "Explicit")
	legacy := seedStudent(t, conn, teacher.ID, "Legacy")
	svc := NewEnrollmentService(conn)

	require.NoError(t, svc.Enroll(teacher.ID, class.ID, explicit.ID))
	// legacy data: schedule row without an enrollment row
	require.NoError(t, conn.Create(&models.LessonSchedule{ClassID: class.ID, StudentID: legacy.ID, LessonDate: day(2026, time.March, 2)}).Error)

	ids, err := svc.EnrolledStudentIDs(teacher.ID, class.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{explicit.ID, legacy.ID}, ids)
}

func TestEmptyClassHasNoStudents(t *testing.T) {
	conn := newTestDB(t)
	teacher := seedTeacher(t, conn)
	class := seedClass(t, conn, teacher.ID, 2000)
	svc := NewEnrollmentService(conn)

	ids, err := svc.EnrolledStudentIDs(teacher.ID, class.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestUnenrollKeepsScheduleHistory(t *testing.T) {
	conn := newTestDB(t)
	teacher := seedTeacher(t, conn)
	class := seedClass(t, conn, teacher.ID, 2000)
	student := seedStudent(t, conn, teacher.ID, "S1")
	enrSvc := NewEnrollmentService(conn)
	schedSvc := NewScheduleService(conn)

	_, err := schedSvc.Materialize(teacher.ID, class.ID, student.ID, []time.Time{day(2026, time.March, 2)})
	require.NoError(t, err)
	require.NoError(t, enrSvc.Unenroll(teacher.ID, class.ID, student.ID))

	var schedCount int64
	require.NoError(t, conn.Model(&models.LessonSchedule{}).Where("class_id = ?", class.ID).Count(&schedCount).Error)
	assert.EqualValues(t, 1, schedCount, "schedule history survives unenroll")

	// the schedule row still implies membership for billing purposes
	ids, err := enrSvc.EnrolledStudentIDs(teacher.ID, class.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{student.ID}, ids)
}
