package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"attendance-backend/internal/attendance"
)

// StoredRecord is a persisted record as read back from a store.
type StoredRecord struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	AccuracyM  float64   `json:"accuracy_m"`
	GeofenceOK *bool     `json:"geofence_ok"`
	MonthTab   string    `json:"month_tab"`
	CreatedAt  time.Time `json:"created_at"`
}

// Repository persists attendance records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts a record and returns its identifier.
func (r *Repository) Save(ctx context.Context, rec attendance.Record) (string, error) {
	id := uuid.NewString()
	var photo *string
	if rec.PhotoBase64 != "" {
		p := rec.PhotoBase64
		photo = &p
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_records (id, name, email, date, time, latitude, longitude, accuracy_m, geofence_ok, photo_base64, month_tab)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, id, rec.Name, rec.Email, rec.Date, rec.Time, rec.Latitude, rec.Longitude, rec.AccuracyM, rec.Geofence.OK(), photo, rec.MonthTab)
	if err != nil {
		return "", err
	}
	return id, nil
}

// List returns recent records, newest first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]StoredRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, date, time, latitude, longitude, accuracy_m, geofence_ok, month_tab, created_at
		FROM attendance_records
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []StoredRecord
	for rows.Next() {
		var rec StoredRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Email, &rec.Date, &rec.Time, &rec.Latitude, &rec.Longitude, &rec.AccuracyM, &rec.GeofenceOK, &rec.MonthTab, &rec.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}
