package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorledger/internal/models"
)

func TestMaterializeIdempotent(t *testing.T) {
	conn := newTestDB(t)
	teacher := seedTeacher(t, conn)
	class := seedClass(t, conn, teacher.ID, 2000)
	student := seedStudent(t, conn, teacher.ID, "S1")
	svc := NewScheduleService(conn)

	dates := []time.Time{day(2026, time.March, 2), day(2026, time.March, 9)}
	created, err := svc.Materialize(teacher.ID, class.ID, student.ID, dates)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	// materializing the same dates again must not add rows
	created, err = svc.Materialize(teacher.ID, class.ID, student.ID, dates)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	var count int64
	require.NoError(t, conn.Model(&models.LessonSchedule{}).Where("class_id = ? AND student_id = ?", class.ID, student.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestMaterializeNormalizesToDayGranularity(t *testing.T) {
	conn := newTestDB(t)
	teacher := seedTeacher(t, conn)
	class := seedClass(t, conn, teacher.ID, 2000)
	student := seedStudent(t, conn, teacher.ID, "S1")
	svc := NewScheduleService(conn)

	morning := time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC)
	evening := time.Date(2026, time.March, 2, 18, 0, 0, 0, time.UTC)
	created, err := svc.Materialize(teacher.ID, class.ID, student.ID, []time.Time{morning, evening})
	require.NoError(t, err)
	assert.Equal(t, 1, created, "two times on the same day are one lesson row")
}

func TestMaterializeRejectsForeignClass(t *testing.T) {
	conn := newTestDB(t)
	owner := seedTeacher(t, conn)
	class := seedClass(t, conn, owner.ID, 2000)
	student := seedStudent(t, conn, owner.ID, "S1")
	other := models.Teacher{Email: "other@test", Password: "x"}
	require.NoError(t, conn.Create(&other).Error)

	svc := NewScheduleService(conn)
	_, err := svc.Materialize(other.ID, class.ID, student.ID, []time.Time{day(2026, time.March, 2)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListForClassRange(t *testing.T) {
	conn := newTestDB(t)
	teacher := seedTeacher(t, conn)
	class := seedClass(t, conn, teacher.ID, 2000)
	student := seedStudent(t, conn, teacher.ID, "S1")
	svc := NewScheduleService(conn)

	_, err := svc.Materialize(teacher.ID, class.ID, student.ID, []time.Time{
		day(2026, time.February, 23), day(2026, time.March, 2), day(2026, time.March, 30), day(2026, time.April, 6),
	})
	require.NoError(t, err)

	rows, err := svc.ListForClass(teacher.ID, class.ID, day(2026, time.March, 1), day(2026, time.April, 1))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].LessonDate.Before(rows[1].LessonDate))
}
