package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/stockmind/internal/models"
	"github.com/bobmcallan/stockmind/internal/services/alert"
)

// maxFormBytes bounds the alert form body
const maxFormBytes = 64 << 10

// handleAnalyzeCompany handles GET /analyze_company?company_name=.
// Failures are reported in the body with success=false and status 200.
func (s *Server) handleAnalyzeCompany(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	name := r.URL.Query().Get("company_name")
	resp := s.app.AnalyzeService.AnalyzeCompany(r.Context(), name)
	s.writeJSON(w, r, http.StatusOK, resp)
}

// handleCreateAlert handles the POST /create_alert form and redirects home.
func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, "Invalid form: "+err.Error(), "invalid_form")
		return
	}

	target, err := FormFloat(r, "target")
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation_error", Field: "target"})
		return
	}
	threshold, err := FormFloat(r, "threshold")
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation_error", Field: "threshold"})
		return
	}

	spec := models.AlertSpec{
		Kind:      models.AlertKind(r.PostFormValue("type")),
		Ticker:    r.PostFormValue("ticker"),
		Target:    target,
		Threshold: threshold,
		Direction: models.AlertDirection(r.PostFormValue("direction")),
		Email:     r.PostFormValue("email"),
	}

	if _, err := s.app.AlertService.CreateAlert(r.Context(), spec); err != nil {
		var vErr *alert.ValidationError
		if errors.As(err, &vErr) {
			WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: vErr.Message, Code: "validation_error", Field: vErr.Field})
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleListAlerts handles GET /api/alerts.
func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	alerts := s.app.AlertService.ListAlerts(r.Context())
	if alerts == nil {
		alerts = []models.AlertSpec{}
	}
	s.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// handleCheckAlerts handles POST /api/alerts/check, running one pass now.
func (s *Server) handleCheckAlerts(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	results := s.app.AlertService.CheckAlerts(r.Context())
	if results == nil {
		results = []models.AlertEvaluation{}
	}

	triggered := 0
	for _, res := range results {
		if res.Triggered {
			triggered++
		}
	}
	s.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"results":   results,
		"checked":   len(results),
		"triggered": triggered,
	})
}

// handleChart handles GET /api/chart?ticker= and returns a PNG.
// X-Data-Source reports whether the plotted prices are real or mock.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("ticker")))
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	png, status, err := s.app.ChartService.PriceChart(r.Context(), ticker)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Chart rendering failed")
		WriteError(w, http.StatusInternalServerError, "Failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Data-Source", string(status))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// writeJSON writes data with WriteJSON and logs encoding failures.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	if err := WriteJSON(w, statusCode, data); err != nil {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Failed to write JSON response")
	}
}
