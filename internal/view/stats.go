package view

import (
	"fmt"
	"math"
	"sort"
	"time"

	"academic-dashboard/internal/domain"
)

// NewWindow is the trailing window in which content counts as new.
const NewWindow = 7 * 24 * time.Hour

// Average is the mean of the finite values; NaN and ±Inf are excluded from
// both sum and count. An empty eligible set yields 0.
func Average(values []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// FormatAverage renders an average with one decimal place.
func FormatAverage(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return fmt.Sprintf("%.1f", v)
}

// SubjectAverage is one partition of a grade set.
type SubjectAverage struct {
	Subject string  `json:"subject" yaml:"subject"`
	Count   int     `json:"count" yaml:"count"`
	Value   float64 `json:"value" yaml:"value"`
	Display string  `json:"display" yaml:"display"`
}

// GradeSummary is the overall average plus one entry per subject.
type GradeSummary struct {
	Count    int              `json:"count" yaml:"count"`
	Value    float64          `json:"value" yaml:"value"`
	Display  string           `json:"display" yaml:"display"`
	Subjects []SubjectAverage `json:"subjects" yaml:"subjects"`
}

func gradeValues(grades []domain.Grade) []float64 {
	vs := make([]float64, len(grades))
	for i, g := range grades {
		vs[i] = g.Value
	}
	return vs
}

// SubjectAverages partitions grades by subject, sorted by subject.
func SubjectAverages(grades []domain.Grade) []SubjectAverage {
	bySubject := map[string][]float64{}
	for _, g := range grades {
		bySubject[g.Subject] = append(bySubject[g.Subject], g.Value)
	}
	out := make([]SubjectAverage, 0, len(bySubject))
	for subject, vs := range bySubject {
		avg := Average(vs)
		out = append(out, SubjectAverage{
			Subject: subject,
			Count:   finiteCount(vs),
			Value:   avg,
			Display: FormatAverage(avg),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subject < out[j].Subject })
	return out
}

// WeightedAverage combines partition averages weighted by their counts.
// For any partition with non-empty parts it equals Average over the union.
func WeightedAverage(parts []SubjectAverage) float64 {
	sum, n := 0.0, 0
	for _, p := range parts {
		if p.Count == 0 {
			continue
		}
		sum += p.Value * float64(p.Count)
		n += p.Count
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Summarize computes the overall and per-subject averages of grades.
func Summarize(grades []domain.Grade) GradeSummary {
	vs := gradeValues(grades)
	avg := Average(vs)
	return GradeSummary{
		Count:    finiteCount(vs),
		Value:    avg,
		Display:  FormatAverage(avg),
		Subjects: SubjectAverages(grades),
	}
}

func finiteCount(vs []float64) int {
	n := 0
	for _, v := range vs {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			n++
		}
	}
	return n
}

// ContentCounts counts a course's content relative to now: pending items
// are created strictly after now, new items within [now-NewWindow, now].
// An empty courseID matches nothing.
func ContentCounts(contents []domain.Content, courseID string, now time.Time) (pending, fresh int) {
	if courseID == "" {
		return 0, 0
	}
	from := now.Add(-NewWindow)
	for _, c := range contents {
		if c.CourseID != courseID {
			continue
		}
		switch {
		case c.CreatedAt.After(now):
			pending++
		case !c.CreatedAt.Before(from):
			fresh++
		}
	}
	return pending, fresh
}
