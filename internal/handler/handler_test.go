package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"attendance-backend/internal/attendance"
	"attendance-backend/internal/config"
	"attendance-backend/internal/geofence"
	"attendance-backend/internal/handler"
	"attendance-backend/internal/store"
)

type fakeService struct {
	submitFn func(ctx context.Context, sub attendance.Submission) (attendance.Outcome, error)
}

func (f *fakeService) Submit(ctx context.Context, sub attendance.Submission) (attendance.Outcome, error) {
	return f.submitFn(ctx, sub)
}

type fakeLister struct {
	records []store.StoredRecord
	err     error
}

func (f *fakeLister) List(ctx context.Context, limit, offset int) ([]store.StoredRecord, error) {
	return f.records, f.err
}

func postJSON(t *testing.T, h gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/attendance", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h(c)
	return w
}

func TestSubmitSuccess(t *testing.T) {
	id := "rec-1"
	url := "https://drive.example/p.jpg"
	svc := &fakeService{submitFn: func(ctx context.Context, sub attendance.Submission) (attendance.Outcome, error) {
		assert.Equal(t, "Asha", sub.Name)
		assert.Equal(t, 10.0, sub.AccuracyM)
		rec := attendance.NewRecord(sub, fixedTime(), geofence.Result{Verdict: geofence.Inside, Distance: 5, Radius: 100})
		return attendance.Outcome{ID: &id, Record: rec, Forwarded: true, PhotoURL: &url}, nil
	}}
	h := handler.New(svc, &fakeLister{}, config.App{DashboardURL: "https://sheets.example/dash"})

	w := postJSON(t, h.Submit, `{"name":"Asha","email":"asha@example.com","latitude":12.9716,"longitude":77.5946,"accuracy_m":10}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			ID                  *string `json:"id"`
			Date                string  `json:"date"`
			GeofenceOK          *bool   `json:"geofence_ok"`
			PhotoURL            *string `json:"photo_url"`
			AppsScriptForwarded bool    `json:"apps_script_forwarded"`
			AppsScriptError     *string `json:"apps_script_error"`
		} `json:"data"`
		DashboardURL *string `json:"dashboard_url"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Attendance marked successfully!", resp.Message)
	assert.Equal(t, "rec-1", *resp.Data.ID)
	assert.True(t, *resp.Data.GeofenceOK)
	assert.True(t, resp.Data.AppsScriptForwarded)
	assert.Nil(t, resp.Data.AppsScriptError)
	assert.Equal(t, "https://sheets.example/dash", *resp.DashboardURL)
}

func TestSubmitZeroCoordinatesBind(t *testing.T) {
	var got attendance.Submission
	svc := &fakeService{submitFn: func(ctx context.Context, sub attendance.Submission) (attendance.Outcome, error) {
		got = sub
		return attendance.Outcome{Record: attendance.NewRecord(sub, fixedTime(), geofence.Result{})}, nil
	}}
	h := handler.New(svc, &fakeLister{}, config.App{})

	w := postJSON(t, h.Submit, `{"name":"Asha","email":"a@b.c","latitude":0,"longitude":0,"accuracy_m":0}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, got.Latitude)
	assert.Equal(t, 0.0, got.AccuracyM)
}

func TestSubmitMissingFields(t *testing.T) {
	svc := &fakeService{submitFn: func(ctx context.Context, sub attendance.Submission) (attendance.Outcome, error) {
		t.Fatal("service must not be called on bind failure")
		return attendance.Outcome{}, nil
	}}
	h := handler.New(svc, &fakeLister{}, config.App{})

	w := postJSON(t, h.Submit, `{"email":"a@b.c","latitude":1,"longitude":2,"accuracy_m":3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitNegativeAccuracyRejectedAtBoundary(t *testing.T) {
	svc := &fakeService{submitFn: func(ctx context.Context, sub attendance.Submission) (attendance.Outcome, error) {
		t.Fatal("service must not be called on bind failure")
		return attendance.Outcome{}, nil
	}}
	h := handler.New(svc, &fakeLister{}, config.App{})

	w := postJSON(t, h.Submit, `{"name":"Asha","email":"a@b.c","latitude":1,"longitude":2,"accuracy_m":-4}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitAccuracyRejection(t *testing.T) {
	svc := &fakeService{submitFn: func(ctx context.Context, sub attendance.Submission) (attendance.Outcome, error) {
		return attendance.Outcome{}, &attendance.AccuracyError{Max: 50}
	}}
	h := handler.New(svc, &fakeLister{}, config.App{})

	w := postJSON(t, h.Submit, `{"name":"Asha","email":"a@b.c","latitude":1,"longitude":2,"accuracy_m":90}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Location accuracy too low (> 50 m)")
}

func TestSubmitGeofenceRejection(t *testing.T) {
	svc := &fakeService{submitFn: func(ctx context.Context, sub attendance.Submission) (attendance.Outcome, error) {
		return attendance.Outcome{}, &attendance.GeofenceError{Distance: 1113.2, Radius: 100}
	}}
	h := handler.New(svc, &fakeLister{}, config.App{})

	w := postJSON(t, h.Submit, `{"name":"Asha","email":"a@b.c","latitude":0,"longitude":0.01,"accuracy_m":10}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Outside geofence (distance 1113.2 m > 100 m)")
}

func TestInfoReportsConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := handler.New(&fakeService{}, &fakeLister{}, config.App{
		AppsScriptURL: "https://script.example/exec",
		OfficeLat:     "12.9716",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/info", nil)
	h.Info(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["apps_script_configured"])
	assert.Nil(t, resp["sheets_dashboard_url"])
	gf := resp["geofence"].(map[string]any)
	assert.Equal(t, "12.9716", gf["lat"])
	assert.Nil(t, gf["lng"])
}

func TestListRecords(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := handler.New(&fakeService{}, &fakeLister{records: []store.StoredRecord{{ID: "a"}, {ID: "b"}}}, config.App{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/records?limit=2", nil)
	h.ListRecords(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"records"`)
	assert.Contains(t, w.Body.String(), `"a"`)
}

func fixedTime() time.Time {
	return time.Date(2025, time.November, 14, 9, 30, 15, 0, time.UTC)
}
