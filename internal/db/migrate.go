package db

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// blank imports register the postgres driver and file source for golang-migrate
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tutorledger/internal/models"
)

// AllModels lists every persisted entity, in a dependency-friendly
// AutoMigrate order. Shared with the test helpers.
func AllModels() []interface{} {
	return []interface{}{
		&models.Teacher{}, &models.Class{}, &models.Student{},
		&models.Enrollment{}, &models.LessonSchedule{}, &models.AttendanceRecord{},
		&models.Invoice{}, &models.InvoiceLineItem{}, &models.Payment{},
		&models.ReferenceCounter{},
	}
}

func ConnectAndMigrate() (*gorm.DB, error) {
	dsn := GetNormalizedDSN()
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty, check environment configuration")
	}
	var db *gorm.DB
	var err error
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		slog.Warn("retrying DB connection", "attempt", i+1, "err", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	slog.Info("database connected", "dsn", maskDSN(dsn))

	// MIGRATIONS=1 runs the SQL files (which carry the unique indexes the
	// upserts rely on); otherwise AutoMigrate as a dev convenience;
	// GORM creates the same unique indexes from the struct tags.
	if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range AllModels() {
			if migErr := db.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	// sanity check: ensure required core tables exist
	for _, table := range []string{"teachers", "classes", "students", "lesson_schedules", "invoices"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" || v == "yes" {
		seed(db)
	}
	return db, nil
}

func maskDSN(dsn string) string {
	masked := dsn
	if strings.Contains(masked, "password=") {
		re := regexp.MustCompile(`(password=)(\S+)`)
		masked = re.ReplaceAllString(masked, `${1}***`)
	}
	if re := regexp.MustCompile(`(://[^:/@]+:)[^@]+@`); re.MatchString(masked) {
		masked = re.ReplaceAllString(masked, `${1}***@`)
	}
	return masked
}

// seed creates a demo teacher with a class and a couple of students so
// a fresh development database has something to click on.
func seed(db *gorm.DB) {
	var existing models.Teacher
	if err := db.Where("email = ?", "demo@tutorledger.local").First(&existing).Error; err != gorm.ErrRecordNotFound {
		return
	}
	teacher := models.Teacher{Email: "demo@tutorledger.local", Password: "$2a$10$seededhashnotloginable000000000000000000000000000000", DisplayName: "Demo Teacher", SchoolName: "Demo Tutoring", Currency: "USD", InvoiceNetDays: 14}
	if err := db.Create(&teacher).Error; err != nil {
		slog.Warn("seed teacher failed", "err", err)
		return
	}
	class := models.Class{TeacherID: teacher.ID, Name: "Math A", Subject: "Mathematics", DefaultRate: 2000}
	db.Create(&class)
	for _, name := range []string{"S1", "S2"} {
		db.Create(&models.Student{TeacherID: teacher.ID, Name: name, PaymentStatus: models.StudentPending})
	}
}

// runSQLMigrations executes migrations in ./migrations using golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
