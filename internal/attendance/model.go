package attendance

import (
	"fmt"
	"time"

	"attendance-backend/internal/geofence"
)

// Submission is a validated check-in as received at the boundary. Field
// presence and accuracy_m >= 0 are enforced by the request decoder.
type Submission struct {
	Name        string
	Email       string
	Latitude    float64
	Longitude   float64
	AccuracyM   float64
	PhotoBase64 string
}

// Record is the canonical attendance record. It is built once from a
// validated submission and read-only afterwards; the forwarder and the
// store each consume their own copy.
type Record struct {
	Name        string
	Email       string
	Date        string // YYYY-MM-DD, server clock
	Time        string // HH:MM:SS, server clock
	Latitude    float64
	Longitude   float64
	AccuracyM   float64
	Geofence    geofence.Result
	PhotoBase64 string
	MonthTab    string // e.g. "Nov-2025", the spreadsheet tab the record lands in
}

// NewRecord builds a record from a submission using a single timestamp
// for the date, time and month-tab fields. Pure, no I/O.
func NewRecord(sub Submission, now time.Time, gf geofence.Result) Record {
	return Record{
		Name:        sub.Name,
		Email:       sub.Email,
		Date:        now.Format("2006-01-02"),
		Time:        now.Format("15:04:05"),
		Latitude:    sub.Latitude,
		Longitude:   sub.Longitude,
		AccuracyM:   sub.AccuracyM,
		Geofence:    gf,
		PhotoBase64: sub.PhotoBase64,
		MonthTab:    now.Format("Jan-2006"),
	}
}

// Outcome describes a completed pipeline run. Forward and persist
// failures live here as data; they never fail the submission itself.
type Outcome struct {
	ID         *string // persisted identifier, nil when the store write failed
	Record     Record
	Forwarded  bool
	ForwardErr *string
	PhotoURL   *string // assigned by the external sink on a successful forward
}

// AccuracyError rejects a submission whose reported GPS accuracy is
// worse than the configured ceiling.
type AccuracyError struct {
	Max float64
}

func (e *AccuracyError) Error() string {
	return fmt.Sprintf("Location accuracy too low (> %g m)", e.Max)
}

// GeofenceError rejects a submission outside the office fence.
type GeofenceError struct {
	Distance float64
	Radius   float64
}

func (e *GeofenceError) Error() string {
	return fmt.Sprintf("Outside geofence (distance %.1f m > %.0f m)", e.Distance, e.Radius)
}
