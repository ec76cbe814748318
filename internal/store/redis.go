package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"attendance-backend/internal/attendance"
)

// Redis wraps redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis with short timeouts.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// DocumentStore keeps records as JSON documents in Redis. It is the
// lighter STORE_BACKEND for deployments without Postgres.
type DocumentStore struct {
	client *redis.Client
	prefix string
}

// NewDocumentStore builds a store keyed under prefix.
func NewDocumentStore(client *redis.Client, prefix string) *DocumentStore {
	if prefix == "" {
		prefix = "attendance:records"
	}
	return &DocumentStore{client: client, prefix: prefix}
}

// Save writes the record as a JSON document and indexes its id.
func (s *DocumentStore) Save(ctx context.Context, rec attendance.Record) (string, error) {
	doc := StoredRecord{
		ID:         uuid.NewString(),
		Name:       rec.Name,
		Email:      rec.Email,
		Date:       rec.Date,
		Time:       rec.Time,
		Latitude:   rec.Latitude,
		Longitude:  rec.Longitude,
		AccuracyM:  rec.AccuracyM,
		GeofenceOK: rec.Geofence.OK(),
		MonthTab:   rec.MonthTab,
		CreatedAt:  time.Now().UTC(),
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, s.prefix+":"+doc.ID, body, 0).Err(); err != nil {
		return "", err
	}
	if err := s.client.LPush(ctx, s.prefix, doc.ID).Err(); err != nil {
		return "", err
	}
	return doc.ID, nil
}

// List returns recent records, newest first.
func (s *DocumentStore) List(ctx context.Context, limit, offset int) ([]StoredRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	ids, err := s.client.LRange(ctx, s.prefix, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, err
	}
	var res []StoredRecord
	for _, id := range ids {
		body, err := s.client.Get(ctx, s.prefix+":"+id).Bytes()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, err
		}
		var rec StoredRecord
		if err := json.Unmarshal(body, &rec); err != nil {
			continue
		}
		res = append(res, rec)
	}
	return res, nil
}
