package services

import (
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tutorledger/internal/models"
)

// EnrollmentService resolves class membership. Membership is the union
// of explicit Enrollment rows and students with at least one scheduled
// lesson, so data created before explicit enrollment existed still
// resolves correctly.
type EnrollmentService struct {
	DB *gorm.DB
}

func NewEnrollmentService(db *gorm.DB) *EnrollmentService { return &EnrollmentService{DB: db} }

// ownedClass loads the class if it belongs to the teacher.
func ownedClass(db *gorm.DB, teacherID, classID uint) (*models.Class, error) {
	var c models.Class
	err := db.Where("id = ? AND teacher_id = ?", classID, teacherID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ownedStudent loads the student if it belongs to the teacher.
func ownedStudent(db *gorm.DB, teacherID, studentID uint) (*models.Student, error) {
	var s models.Student
	err := db.Where("id = ? AND teacher_id = ?", studentID, teacherID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Enroll records explicit membership; repeat calls are no-ops thanks to
// the unique (class, student) index.
func (s *EnrollmentService) Enroll(teacherID, classID, studentID uint) error {
	if _, err := ownedClass(s.DB, teacherID, classID); err != nil {
		return err
	}
	if _, err := ownedStudent(s.DB, teacherID, studentID); err != nil {
		return err
	}
	enr := models.Enrollment{ClassID: classID, StudentID: studentID, JoinedAt: time.Now().UTC()}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "class_id"}, {Name: "student_id"}},
		DoNothing: true,
	}).Create(&enr).Error
}

// Unenroll removes the explicit membership row only; schedule and
// attendance history is billing evidence and stays.
func (s *EnrollmentService) Unenroll(teacherID, classID, studentID uint) error {
	if _, err := ownedClass(s.DB, teacherID, classID); err != nil {
		return err
	}
	return s.DB.Where("class_id = ? AND student_id = ?", classID, studentID).Delete(&models.Enrollment{}).Error
}

// EnrolledStudentIDs returns the distinct ids considered enrolled, in
// ascending order. A class with neither enrollment nor schedule rows has
// zero enrolled students.
func (s *EnrollmentService) EnrolledStudentIDs(teacherID, classID uint) ([]uint, error) {
	if _, err := ownedClass(s.DB, teacherID, classID); err != nil {
		return nil, err
	}
	var explicit []uint
	if err := s.DB.Model(&models.Enrollment{}).Where("class_id = ?", classID).Pluck("student_id", &explicit).Error; err != nil {
		return nil, err
	}
	var scheduled []uint
	if err := s.DB.Model(&models.LessonSchedule{}).Where("class_id = ?", classID).Distinct().Pluck("student_id", &scheduled).Error; err != nil {
		return nil, err
	}
	seen := make(map[uint]struct{}, len(explicit)+len(scheduled))
	ids := make([]uint, 0, len(explicit)+len(scheduled))
	for _, id := range append(explicit, scheduled...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Roster returns the enrolled students as full rows, name order.
func (s *EnrollmentService) Roster(teacherID, classID uint) ([]models.Student, error) {
	ids, err := s.EnrolledStudentIDs(teacherID, classID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Student{}, nil
	}
	var students []models.Student
	if err := s.DB.Where("teacher_id = ? AND id IN ?", teacherID, ids).Order("name asc").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}
