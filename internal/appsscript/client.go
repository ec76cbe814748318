// Package appsscript forwards attendance records to a Google Apps Script
// web app that appends them to a spreadsheet.
package appsscript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"attendance-backend/internal/attendance"
)

const maxErrBody = 200

// Client posts records to the configured Apps Script endpoint.
type Client struct {
	URL  string
	HTTP *http.Client
}

// New creates a client with the given dispatch timeout.
func New(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		URL:  url,
		HTTP: &http.Client{Timeout: timeout},
	}
}

type forwardPayload struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	AccuracyM   float64 `json:"accuracy_m"`
	MonthTab    string  `json:"month_tab"`
	PhotoBase64 *string `json:"photo_base64"`
	GeofenceOK  *bool   `json:"geofence_ok"`
}

// Forward sends the record as a single blocking call. Failures are
// captured in the result, never returned as errors: a bad forward must
// not abort the submission.
func (c *Client) Forward(ctx context.Context, rec attendance.Record) attendance.ForwardResult {
	payload := forwardPayload{
		Name:       rec.Name,
		Email:      rec.Email,
		Date:       rec.Date,
		Time:       rec.Time,
		Latitude:   rec.Latitude,
		Longitude:  rec.Longitude,
		AccuracyM:  rec.AccuracyM,
		MonthTab:   rec.MonthTab,
		GeofenceOK: rec.Geofence.OK(),
	}
	if rec.PhotoBase64 != "" {
		photo := rec.PhotoBase64
		payload.PhotoBase64 = &photo
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return attendance.ForwardResult{Err: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return attendance.ForwardResult{Err: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		excerpt := string(respBody)
		if len(excerpt) > maxErrBody {
			excerpt = excerpt[:maxErrBody]
		}
		return attendance.ForwardResult{Err: fmt.Sprintf("Apps Script HTTP %d: %s", resp.StatusCode, excerpt)}
	}

	// The script reports the stored photo URL under either field name.
	// A body that isn't JSON is fine; the forward still counts.
	var out struct {
		PhotoURL    string `json:"photoUrl"`
		PhotoURLAlt string `json:"photo_url"`
	}
	result := attendance.ForwardResult{Forwarded: true}
	if err := json.Unmarshal(respBody, &out); err == nil {
		if out.PhotoURL != "" {
			result.PhotoURL = out.PhotoURL
		} else if out.PhotoURLAlt != "" {
			result.PhotoURL = out.PhotoURLAlt
		}
	}
	return result
}
