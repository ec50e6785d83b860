package telemetry

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// sentinelFloor marks the NASA POWER missing-data sentinel. Any daily value at
// or below this is absent, not zero.
const sentinelFloor = -900

// ErrDataUnavailable indicates an empty or malformed telemetry payload. A
// series is never synthesized from absent data.
var ErrDataUnavailable = errors.New("telemetry data unavailable")

// StatusError is a non-success HTTP status from a telemetry provider.
type StatusError struct {
	Source string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Source, e.Status)
}

// Point is one observation in a series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Series is a normalized, unit-tagged, time-ordered sequence of observations
// with derived summary statistics over the full point set.
type Series struct {
	Points   []Point  `json:"series"`
	Unit     string   `json:"unit"`
	Timezone string   `json:"timezone,omitempty"`
	Latest   *float64 `json:"latest"`
	Average  float64  `json:"average"`
	High     float64  `json:"high"`
	Low      float64  `json:"low"`
}

// NormalizeHourly converts parallel timestamp/value arrays from an hourly
// payload into a Series. Points are labeled by hour-of-day.
func NormalizeHourly(times []string, values []float64, unit, timezone string) (Series, error) {
	if len(times) == 0 || len(values) == 0 {
		return Series{}, fmt.Errorf("%w: empty hourly payload", ErrDataUnavailable)
	}

	n := len(times)
	if len(values) < n {
		n = len(values)
	}

	points := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		points = append(points, Point{
			Label: hourLabel(times[i]),
			Value: values[i],
		})
	}

	return summarize(points, unit, timezone, 2), nil
}

// NormalizeDaily converts a date-keyed single-variable payload into a Series.
// Sentinel values are dropped before aggregation. Points are labeled by
// month-day and ordered by date ascending.
func NormalizeDaily(byDate map[string]float64, unit string) (Series, error) {
	dates := make([]string, 0, len(byDate))
	for date, value := range byDate {
		if value <= sentinelFloor {
			continue
		}
		dates = append(dates, date)
	}
	if len(dates) == 0 {
		return Series{}, fmt.Errorf("%w: no valid daily values", ErrDataUnavailable)
	}
	sort.Strings(dates)

	points := make([]Point, 0, len(dates))
	for _, date := range dates {
		points = append(points, Point{
			Label: dayLabel(date),
			Value: byDate[date],
		})
	}

	return summarize(points, unit, "", 1), nil
}

func summarize(points []Point, unit, timezone string, precision int) Series {
	sum := 0.0
	high := points[0].Value
	low := points[0].Value
	for _, p := range points {
		sum += p.Value
		if p.Value > high {
			high = p.Value
		}
		if p.Value < low {
			low = p.Value
		}
	}

	latest := points[len(points)-1].Value

	return Series{
		Points:   points,
		Unit:     unit,
		Timezone: timezone,
		Latest:   &latest,
		Average:  roundTo(sum/float64(len(points)), precision),
		High:     high,
		Low:      low,
	}
}

func roundTo(v float64, precision int) float64 {
	scale := math.Pow(10, float64(precision))
	return math.Round(v*scale) / scale
}

// hourLabel extracts the hour-of-day from an ISO-8601 hourly timestamp like
// "2025-09-01T13:00".
func hourLabel(raw string) string {
	if t, err := time.Parse("2006-01-02T15:04", raw); err == nil {
		return t.Format("15")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Format("15")
	}
	return raw
}

// dayLabel extracts month-day from a compact date like "20250901".
func dayLabel(raw string) string {
	if len(raw) != 8 {
		return raw
	}
	return raw[4:6] + "-" + raw[6:8]
}
