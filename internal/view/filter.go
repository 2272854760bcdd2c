// Package view turns normalized collections plus the current filter state
// into render-ready rows. Everything here is pure: same input, same output,
// no I/O.
package view

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"academic-dashboard/internal/domain"
)

// CategoryAll is the category value that disables the category filter.
const CategoryAll = "all"

// Filter is the user-entered search text and selected category. The zero
// value matches everything.
type Filter struct {
	Search   string `json:"search" yaml:"search"`
	Category string `json:"category" yaml:"category"`
}

func (f Filter) match(category string, fields ...string) bool {
	if f.Category != "" && f.Category != CategoryAll && f.Category != category {
		return false
	}
	term := strings.TrimSpace(f.Search)
	if term == "" {
		return true
	}
	// Caser is stateful, one per call
	fold := cases.Fold()
	term = fold.String(term)
	for _, field := range fields {
		if strings.Contains(fold.String(field), term) {
			return true
		}
	}
	return false
}

// Enrollments match on student name, student email and course name;
// category is the course name.
func (f Filter) Enrollments(in []domain.Enrollment) []domain.Enrollment {
	return filter(in, func(e domain.Enrollment) bool {
		return f.match(e.Course.Name, e.Student.Name, e.Student.Email, e.Course.Name)
	})
}

// Grades match on subject and type; category is the subject.
func (f Filter) Grades(in []domain.Grade) []domain.Grade {
	return filter(in, func(g domain.Grade) bool {
		return f.match(g.Subject, g.Subject, g.Type)
	})
}

// Courses match on name, subject and code; category is the subject.
func (f Filter) Courses(in []domain.Course) []domain.Course {
	return filter(in, func(c domain.Course) bool {
		return f.match(c.Subject, c.Name, c.Subject, c.Code)
	})
}

// Contents match on title and type; category is the type.
func (f Filter) Contents(in []domain.Content) []domain.Content {
	return filter(in, func(c domain.Content) bool {
		return f.match(c.Type, c.Title, c.Type)
	})
}

// VisibleEnrollments keeps enrollments whose semester is active.
func VisibleEnrollments(in []domain.Enrollment) []domain.Enrollment {
	return filter(in, func(e domain.Enrollment) bool { return e.Semester.IsActive })
}

// ActiveCourses keeps courses whose own status is "active".
func ActiveCourses(in []domain.Course) []domain.Course {
	return filter(in, func(c domain.Course) bool { return c.Status == domain.DefaultCourseStatus })
}

// Distinct returns the unique non-empty keys of items, sorted. Callers pass
// the full unfiltered collection so choices don't vanish while filtering.
func Distinct[T any](items []T, key func(T) string) []string {
	seen := make(map[string]struct{}, len(items))
	out := []string{}
	for _, it := range items {
		k := key(it)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
