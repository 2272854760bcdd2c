package devutil

import (
	"reflect"
	"testing"

	"academic-dashboard/internal/view"
)

const testCourse = "Mathematics I"

func TestPick(t *testing.T) {
	testCases := []struct {
		name     string
		input    any
		keys     []string
		expected map[string]any
	}{
		{
			name:     "Pick from struct",
			input:    view.EnrollmentRow{ID: "e1", StudentName: "Grace Hopper", CourseName: testCourse, Status: "enrolled"},
			keys:     []string{"student_name", "course_name"},
			expected: map[string]any{"student_name": "Grace Hopper", "course_name": testCourse},
		},
		{
			name:     "Pick from map",
			input:    map[string]any{"name": "Art", "contents": 2},
			keys:     []string{"contents"},
			expected: map[string]any{"contents": float64(2)}, // JSON numbers come back as float64
		},
		{
			name:     "Pick from nil",
			input:    nil,
			keys:     []string{"name"},
			expected: map[string]any{},
		},
		{
			name:     "Pick with no keys",
			input:    view.CourseRow{Name: testCourse},
			keys:     []string{},
			expected: map[string]any{},
		},
		{
			name:     "Pick non-existent keys",
			input:    view.CourseRow{Name: testCourse},
			keys:     []string{"nonexistent"},
			expected: map[string]any{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Pick(tc.input, tc.keys...)
			if !reflect.DeepEqual(result, tc.expected) {
				t.Errorf("Pick() = %v, want %v", result, tc.expected)
			}
		})
	}
}

func TestPickAll(t *testing.T) {
	rows := []view.GradeRow{
		{ID: "g1", Subject: "Mathematics", Display: "8.0"},
		{ID: "g2", Subject: "Art", Display: "6.0"},
	}
	got, err := PickAll(rows, "subject", "display")
	if err != nil {
		t.Fatal(err)
	}
	want := []map[string]any{
		{"subject": "Mathematics", "display": "8.0"},
		{"subject": "Art", "display": "6.0"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PickAll() = %v, want %v", got, want)
	}

	if _, err := PickAll(view.GradeRow{}, "id"); err == nil {
		t.Error("expected error for a non-slice value")
	}
	if got, err := PickAll([]view.GradeRow{}, "id"); err != nil || len(got) != 0 {
		t.Errorf("empty slice: %v %v", got, err)
	}
}
