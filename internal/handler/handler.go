package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"attendance-backend/internal/attendance"
	"attendance-backend/internal/config"
	"attendance-backend/internal/store"
)

// Service runs the submission pipeline.
type Service interface {
	Submit(ctx context.Context, sub attendance.Submission) (attendance.Outcome, error)
}

// RecordLister reads back persisted records.
type RecordLister interface {
	List(ctx context.Context, limit, offset int) ([]store.StoredRecord, error)
}

// Handler holds the HTTP endpoints.
type Handler struct {
	svc    Service
	lister RecordLister
	cfg    config.App
}

// New creates a handler.
func New(svc Service, lister RecordLister, cfg config.App) *Handler {
	return &Handler{svc: svc, lister: lister, cfg: cfg}
}

// Root is the service banner.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Employee Attendance Backend running"})
}

// Hello is a trivial reachability probe for frontends.
func (h *Handler) Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello from the backend API!"})
}

// Info reports the effective runtime configuration. Geofence values are
// echoed raw; whether they parse is the evaluator's business.
func (h *Handler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":                "attendance-backend",
		"apps_script_configured": h.cfg.AppsScriptURL != "",
		"sheets_dashboard_url":   nullable(h.cfg.DashboardURL),
		"geofence": gin.H{
			"lat":      nullable(h.cfg.OfficeLat),
			"lng":      nullable(h.cfg.OfficeLng),
			"radius_m": nullable(h.cfg.OfficeRadiusM),
		},
	})
}

type submitRequest struct {
	Name        string   `json:"name" binding:"required"`
	Email       string   `json:"email" binding:"required"`
	Latitude    *float64 `json:"latitude" binding:"required"`
	Longitude   *float64 `json:"longitude" binding:"required"`
	AccuracyM   *float64 `json:"accuracy_m" binding:"required,gte=0"`
	PhotoBase64 string   `json:"photo_base64"`
}

type submissionData struct {
	ID                  *string `json:"id"`
	Date                string  `json:"date"`
	Time                string  `json:"time"`
	Latitude            float64 `json:"latitude"`
	Longitude           float64 `json:"longitude"`
	AccuracyM           float64 `json:"accuracy_m"`
	GeofenceOK          *bool   `json:"geofence_ok"`
	PhotoURL            *string `json:"photo_url"`
	AppsScriptForwarded bool    `json:"apps_script_forwarded"`
	AppsScriptError     *string `json:"apps_script_error"`
}

type submissionResponse struct {
	Success      bool           `json:"success"`
	Message      string         `json:"message"`
	Data         submissionData `json:"data"`
	DashboardURL *string        `json:"dashboard_url"`
}

// Submit handles an attendance check-in.
func (h *Handler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	out, err := h.svc.Submit(c.Request.Context(), attendance.Submission{
		Name:        req.Name,
		Email:       req.Email,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		AccuracyM:   *req.AccuracyM,
		PhotoBase64: req.PhotoBase64,
	})
	if err != nil {
		var accErr *attendance.AccuracyError
		var gfErr *attendance.GeofenceError
		if errors.As(err, &accErr) || errors.As(err, &gfErr) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	rec := out.Record
	c.JSON(http.StatusOK, submissionResponse{
		Success: true,
		Message: "Attendance marked successfully!",
		Data: submissionData{
			ID:                  out.ID,
			Date:                rec.Date,
			Time:                rec.Time,
			Latitude:            rec.Latitude,
			Longitude:           rec.Longitude,
			AccuracyM:           rec.AccuracyM,
			GeofenceOK:          rec.Geofence.OK(),
			PhotoURL:            out.PhotoURL,
			AppsScriptForwarded: out.Forwarded,
			AppsScriptError:     out.ForwardErr,
		},
		DashboardURL: nullable(h.cfg.DashboardURL),
	})
}

// ListRecords returns recent persisted records for audit read-back.
func (h *Handler) ListRecords(c *gin.Context) {
	limit, offset := 50, 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	records, err := h.lister.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
