package attendance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_submissions_total",
		Help: "Check-in submissions by pipeline result.",
	}, []string{"result"})

	forwardFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendance_forward_failures_total",
		Help: "Failed dispatches to the Apps Script forwarder.",
	})

	persistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendance_persist_failures_total",
		Help: "Failed writes to the local store.",
	})
)
