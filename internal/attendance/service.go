package attendance

import (
	"context"
	"log"
	"time"

	"attendance-backend/internal/geofence"
)

// ForwardResult is the outcome of one forwarder dispatch.
type ForwardResult struct {
	Forwarded bool
	PhotoURL  string
	Err       string
}

// Forwarder sends a record to the external spreadsheet service.
type Forwarder interface {
	Forward(ctx context.Context, rec Record) ForwardResult
}

// Sink persists a record locally and returns its identifier.
type Sink interface {
	Save(ctx context.Context, rec Record) (string, error)
}

// Service runs the submission pipeline: accuracy gate, geofence check,
// record construction, then dispatch to the forwarder and the store.
// The two dispatches are independent; either may fail without affecting
// the other or the overall result.
type Service struct {
	fwd         Forwarder // nil when no forwarder endpoint is configured
	sink        Sink
	office      geofence.Config
	maxAccuracy float64
	now         func() time.Time
}

// NewService creates the pipeline. fwd may be nil to disable forwarding.
func NewService(fwd Forwarder, sink Sink, office geofence.Config, maxAccuracy float64) *Service {
	if maxAccuracy <= 0 {
		maxAccuracy = 50
	}
	return &Service{fwd: fwd, sink: sink, office: office, maxAccuracy: maxAccuracy, now: time.Now}
}

// Submit runs one check-in through the pipeline. A returned error is
// always an *AccuracyError or *GeofenceError and means nothing was
// forwarded or persisted. Any other failure is folded into the Outcome.
func (s *Service) Submit(ctx context.Context, sub Submission) (Outcome, error) {
	if sub.AccuracyM > s.maxAccuracy {
		submissionsTotal.WithLabelValues("rejected_accuracy").Inc()
		return Outcome{}, &AccuracyError{Max: s.maxAccuracy}
	}

	gf := geofence.Evaluate(sub.Latitude, sub.Longitude, s.office)
	if gf.Verdict == geofence.Outside {
		submissionsTotal.WithLabelValues("rejected_geofence").Inc()
		return Outcome{}, &GeofenceError{Distance: gf.Distance, Radius: gf.Radius}
	}

	rec := NewRecord(sub, s.now(), gf)
	out := Outcome{Record: rec}

	if s.fwd != nil {
		fr := s.fwd.Forward(ctx, rec)
		out.Forwarded = fr.Forwarded
		if fr.Err != "" {
			err := fr.Err
			out.ForwardErr = &err
			forwardFailures.Inc()
			log.Printf("apps script forward failed: %s", fr.Err)
		}
		if fr.PhotoURL != "" {
			url := fr.PhotoURL
			out.PhotoURL = &url
		}
	}

	// Persist regardless of forwarder outcome, for audit/fallback.
	if id, err := s.sink.Save(ctx, rec); err != nil {
		persistFailures.Inc()
		log.Printf("persist failed: %v", err)
	} else {
		out.ID = &id
	}

	submissionsTotal.WithLabelValues("accepted").Inc()
	return out, nil
}
