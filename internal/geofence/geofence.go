package geofence

import (
	"math"
	"strconv"
)

const earthRadiusM = 6371000

// Verdict is the outcome of a geofence evaluation.
type Verdict int

const (
	// Unconfigured means no check was performed: the office location is
	// unset, partially set, or malformed.
	Unconfigured Verdict = iota
	Inside
	Outside
)

// Config carries the office location as raw environment values.
// Parsing is deferred to Evaluate so that a malformed value degrades to
// Unconfigured instead of blocking every submission.
type Config struct {
	Lat     string
	Lng     string
	RadiusM string
}

// Result pairs the verdict with the numbers behind it. Distance and
// Radius are only meaningful when Verdict is Inside or Outside.
type Result struct {
	Verdict  Verdict
	Distance float64
	Radius   float64
}

// OK flattens the verdict for response payloads: nil when no check was
// performed, otherwise whether the position was inside the fence.
func (r Result) OK() *bool {
	switch r.Verdict {
	case Inside:
		v := true
		return &v
	case Outside:
		v := false
		return &v
	}
	return nil
}

// Evaluate checks the submitted position against the configured office
// geofence. It never fails: missing or unparseable config yields an
// Unconfigured result.
func Evaluate(lat, lng float64, cfg Config) Result {
	officeLat, ok1 := parseFloat(cfg.Lat)
	officeLng, ok2 := parseFloat(cfg.Lng)
	radius, ok3 := parseFloat(cfg.RadiusM)
	if !ok1 || !ok2 || !ok3 {
		return Result{Verdict: Unconfigured}
	}

	dist := Haversine(officeLat, officeLng, lat, lng)
	verdict := Inside
	if dist > radius {
		verdict = Outside
	}
	return Result{Verdict: verdict, Distance: dist, Radius: radius}
}

// Haversine returns the great-circle distance in meters between two
// points given in decimal degrees. Accurate enough for building-scale
// fences without pulling in a geodesic library.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dlat := radians(lat2 - lat1)
	dlon := radians(lon2 - lon1)
	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
