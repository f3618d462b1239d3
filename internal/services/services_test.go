package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tutorledger/internal/db"
	"tutorledger/internal/models"
	"tutorledger/internal/money"
)

// unique in-memory DB per test name to avoid leakage via shared cache
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open db")
	require.NoError(t, conn.AutoMigrate(db.AllModels()...), "migrate")
	return conn
}

func seedTeacher(t *testing.T, conn *gorm.DB) models.Teacher {
	t.Helper()
	teacher := models.Teacher{Email: t.Name() + "@test", Password: "x", DisplayName: "T", SchoolName: "Test Tutoring", Currency: "USD", InvoiceNetDays: 14}
	require.NoError(t, conn.Create(&teacher).Error)
	return teacher
}

func seedClass(t *testing.T, conn *gorm.DB, teacherID uint, rate int64) models.Class {
	t.Helper()
	class := models.Class{TeacherID: teacherID, Name: "Math A", Subject: "Math", DefaultRate: money.Cents(rate)}
	require.NoError(t, conn.Create(&class).Error)
	return class
}

func seedStudent(t *testing.T, conn *gorm.DB, teacherID uint, name string) models.Student {
	t.Helper()
	student := models.Student{TeacherID: teacherID, Name: name, PaymentStatus: models.StudentPending}
	require.NoError(t, conn.Create(&student).Error)
	return student
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fixture bundles the common teacher/class/student trio.
type fixture struct {
	db      *gorm.DB
	teacher models.Teacher
	class   models.Class
	student models.Student
}

func newFixture(t *testing.T, classRate int64) *fixture {
	t.Helper()
	conn := newTestDB(t)
	teacher := seedTeacher(t, conn)
	return &fixture{
		db:      conn,
		teacher: teacher,
		class:   seedClass(t, conn, teacher.ID, classRate),
		student: seedStudent(t, conn, teacher.ID, "S1"),
	}
}
