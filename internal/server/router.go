package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"gorm.io/gorm"

	"tutorledger/internal/auth"
	"tutorledger/internal/handlers"
	"tutorledger/internal/httpx"
	"tutorledger/internal/models"
	"tutorledger/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// Configure a verifier so RequireAuth can ensure the teacher still exists.
	auth.SetTeacherVerifier(func(_ context.Context, id uint) bool {
		var count int64
		if err := db.Model(&models.Teacher{}).Where("id = ?", id).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	// --- Health endpoints ---
	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		// Lightweight DB check (SELECT 1); detailed errors stay out of the body.
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth endpoints register themselves (mixed public/protected).
	authHandler := handlers.NewAuthHandler(db)
	authHandler.Register(mux)

	protected := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(h))
	}

	// Settings
	sh := handlers.NewSettingsHandler(db)
	mux.Handle("/settings", protected(sh.Handle))

	// Classes and enrollment
	enrSvc := services.NewEnrollmentService(db)
	ch := handlers.NewClassHandler(db, enrSvc)
	mux.Handle("/classes", protected(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ch.List(w, r)
		case http.MethodPost:
			ch.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}))
	mux.Handle("/classes/update", protected(ch.Update))
	mux.Handle("/classes/delete", protected(ch.Delete))
	mux.Handle("/classes/roster", protected(ch.Roster))
	mux.Handle("/classes/enroll", protected(ch.Enroll))
	mux.Handle("/classes/unenroll", protected(ch.Unenroll))

	// Students
	stu := handlers.NewStudentHandler(db)
	mux.Handle("/students", protected(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			stu.List(w, r)
		case http.MethodPost:
			stu.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}))
	mux.Handle("/students/update", protected(stu.Update))
	mux.Handle("/students/delete", protected(stu.Delete))

	// Lesson schedule
	schedSvc := services.NewScheduleService(db)
	sched := handlers.NewScheduleHandler(schedSvc)
	mux.Handle("/schedule", protected(sched.List))
	mux.Handle("/schedule/materialize", protected(sched.Materialize))
	mux.Handle("/schedule/rate", protected(sched.SetRate))

	// Attendance
	attSvc := services.NewAttendanceService(db)
	att := handlers.NewAttendanceHandler(attSvc)
	mux.Handle("/attendance", protected(att.List))
	mux.Handle("/attendance/mark", protected(att.Mark))

	// Invoices and payments
	paySvc := services.NewPaymentService(db)
	invSvc := services.NewInvoiceService(db)
	ih := handlers.NewInvoiceHandler(invSvc, paySvc)
	mux.Handle("/invoices", protected(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			return
		}
		ih.List(w, r)
	}))
	mux.Handle("/invoices/preview", protected(ih.Preview))
	mux.Handle("/invoices/generate", protected(ih.Generate))
	mux.Handle("/invoices/get", protected(ih.Get))
	mux.Handle("/invoices/delete", protected(ih.Delete))

	pay := handlers.NewPaymentHandler(paySvc)
	mux.Handle("/payments", protected(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			pay.List(w, r)
		case http.MethodPost:
			pay.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}))
	mux.Handle("/payments/undo", protected(pay.Undo))
	//revive:enable:unused-parameter

	return withRecover(withLogging(mux))
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start).Round(time.Microsecond))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered", "path", r.URL.Path, "panic", rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
