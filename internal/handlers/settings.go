package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"tutorledger/internal/auth"
	"tutorledger/internal/httpx"
	"tutorledger/internal/models"
)

// SettingsHandler exposes the teacher profile and invoice/branding
// defaults. The logo itself lives in blob storage; only its URL is kept.
type SettingsHandler struct{ DB *gorm.DB }

func NewSettingsHandler(db *gorm.DB) *SettingsHandler { return &SettingsHandler{DB: db} }

func (h *SettingsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := auth.TeacherIDFromContext(r.Context())
	switch r.Method {
	case http.MethodGet:
		var teacher models.Teacher
		if err := h.DB.First(&teacher, teacherID).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, teacher)
	case http.MethodPut, http.MethodPost:
		var req struct {
			DisplayName    *string `json:"display_name"`
			SchoolName     *string `json:"school_name"`
			LogoURL        *string `json:"logo_url"`
			ThemeColor     *string `json:"theme_color"`
			Currency       *string `json:"currency"`
			InvoiceNetDays *int    `json:"invoice_net_days"`
			TaxBasisPoints *int    `json:"tax_basis_points"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		updates := map[string]any{}
		if req.DisplayName != nil {
			updates["display_name"] = strings.TrimSpace(*req.DisplayName)
		}
		if req.SchoolName != nil {
			updates["school_name"] = strings.TrimSpace(*req.SchoolName)
		}
		if req.LogoURL != nil {
			updates["logo_url"] = strings.TrimSpace(*req.LogoURL)
		}
		if req.ThemeColor != nil {
			updates["theme_color"] = strings.TrimSpace(*req.ThemeColor)
		}
		if req.Currency != nil {
			c := strings.ToUpper(strings.TrimSpace(*req.Currency))
			if len(c) != 3 {
				httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"currency": "must_be_iso_4217"})
				return
			}
			updates["currency"] = c
		}
		if req.InvoiceNetDays != nil {
			if *req.InvoiceNetDays < 0 {
				httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"invoice_net_days": "must_not_be_negative"})
				return
			}
			updates["invoice_net_days"] = *req.InvoiceNetDays
		}
		if req.TaxBasisPoints != nil {
			if *req.TaxBasisPoints < 0 || *req.TaxBasisPoints > 10000 {
				httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"tax_basis_points": "out_of_range"})
				return
			}
			updates["tax_basis_points"] = *req.TaxBasisPoints
		}
		if len(updates) == 0 {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"body": "no_fields"})
			return
		}
		if err := h.DB.Model(&models.Teacher{}).Where("id = ?", teacherID).Updates(updates).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "could_not_update_settings", nil)
			return
		}
		var teacher models.Teacher
		if err := h.DB.First(&teacher, teacherID).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, teacher)
	default:
		methodNotAllowed(w, "GET,PUT")
	}
}
