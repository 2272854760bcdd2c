package view

import (
	"math"
	"reflect"
	"testing"
	"time"

	"academic-dashboard/internal/domain"
)

func TestGradeAverages(t *testing.T) {
	grades := []domain.Grade{
		{Subject: "Math", Value: 8},
		{Subject: "Math", Value: 10},
		{Subject: "Art", Value: 6},
	}

	s := Summarize(grades)
	if s.Display != "8.0" {
		t.Errorf("overall = %q, want 8.0", s.Display)
	}
	want := map[string]string{"Math": "9.0", "Art": "6.0"}
	if len(s.Subjects) != len(want) {
		t.Fatalf("got %d subjects, want %d", len(s.Subjects), len(want))
	}
	for _, sa := range s.Subjects {
		if want[sa.Subject] != sa.Display {
			t.Errorf("%s average = %q, want %q", sa.Subject, sa.Display, want[sa.Subject])
		}
	}
	if s.Subjects[0].Subject != "Art" {
		t.Errorf("subjects should be sorted, got %+v", s.Subjects)
	}
}

func TestAverage(t *testing.T) {
	testCases := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"only non finite", []float64{math.NaN(), math.Inf(1)}, 0},
		{"skips nan", []float64{4, math.NaN(), 6}, 5},
		{"single", []float64{7.25}, 7.25},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Average(tc.values); got != tc.want {
				t.Errorf("Average(%v) = %v, want %v", tc.values, got, tc.want)
			}
		})
	}

	if got := FormatAverage(Average(nil)); got != "0.0" {
		t.Errorf("empty average renders %q, want 0.0", got)
	}
	if got := FormatAverage(8.25); got != "8.2" && got != "8.3" {
		t.Errorf("FormatAverage(8.25) = %q", got)
	}
}

func TestAverageAssociativeUnderPartition(t *testing.T) {
	grades := []domain.Grade{
		{Subject: "Math", Value: 7.5}, {Subject: "Math", Value: 9.1}, {Subject: "Math", Value: 3},
		{Subject: "Art", Value: 6}, {Subject: "Art", Value: 8.8},
		{Subject: "History", Value: 10},
		{Subject: "Physics", Value: 4.4}, {Subject: "Physics", Value: 5.6}, {Subject: "Physics", Value: 9.9}, {Subject: "Physics", Value: 1},
	}

	overall := Average(gradeValues(grades))
	weighted := WeightedAverage(SubjectAverages(grades))
	if math.Abs(overall-weighted) > 1e-9 {
		t.Errorf("overall %v != weighted %v", overall, weighted)
	}

	// partition by grade type as well
	for i := range grades {
		if i%2 == 0 {
			grades[i].Type = "exam"
		} else {
			grades[i].Type = "quiz"
		}
	}
	var parts []SubjectAverage
	for _, typ := range []string{"exam", "quiz"} {
		subset := Filter{Search: typ}.Grades(grades)
		vs := gradeValues(subset)
		parts = append(parts, SubjectAverage{Count: len(vs), Value: Average(vs)})
	}
	if got := WeightedAverage(parts); math.Abs(overall-got) > 1e-9 {
		t.Errorf("overall %v != weighted by type %v", overall, got)
	}
}

func TestEnrollmentRowsOnlyActiveSemester(t *testing.T) {
	enrollments := []domain.Enrollment{
		{ID: "1", Course: domain.CourseRef{Name: "X"}, Semester: domain.Semester{IsActive: true}},
		{ID: "2", Course: domain.CourseRef{Name: "X"}, Semester: domain.Semester{IsActive: false}},
	}

	rows := EnrollmentRows(enrollments, Filter{Search: "", Category: CategoryAll})
	if len(rows) != 1 || rows[0].ID != "1" {
		t.Errorf("expected only the active enrollment, got %+v", rows)
	}
}

func TestFilterEnrollments(t *testing.T) {
	enrollments := []domain.Enrollment{
		{ID: "1", Student: domain.StudentRef{Name: "Ana Pérez", Email: "ana@uni.edu"}, Course: domain.CourseRef{Name: "Algebra"}},
		{ID: "2", Student: domain.StudentRef{Name: "Bruno", Email: "bruno@uni.edu"}, Course: domain.CourseRef{Name: "Art History"}},
		{ID: "3", Student: domain.StudentRef{Name: "Chen", Email: "CHEN@UNI.EDU"}, Course: domain.CourseRef{Name: "Algebra"}},
	}

	testCases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"zero filter", Filter{}, []string{"1", "2", "3"}},
		{"by student name", Filter{Search: "PÉREZ"}, []string{"1"}},
		{"by email case insensitive", Filter{Search: "chen@"}, []string{"3"}},
		{"by course name", Filter{Search: "history"}, []string{"2"}},
		{"category only", Filter{Category: "Algebra"}, []string{"1", "3"}},
		{"search and category", Filter{Search: "bruno", Category: "Algebra"}, nil},
		{"category all", Filter{Search: "uni.edu", Category: CategoryAll}, []string{"1", "2", "3"}},
		{"no match", Filter{Search: "zzz"}, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			for _, e := range tc.filter.Enrollments(enrollments) {
				got = append(got, e.ID)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFilterCoursesSearch(t *testing.T) {
	courses := []domain.Course{
		{ID: "m", Name: "Mathematics", Subject: "Science", Code: "SCI-1"},
		{ID: "a", Name: "Art", Subject: "Humanities", Code: "HUM-2"},
	}

	got := Filter{Search: "mat"}.Courses(courses)
	if len(got) != 1 || got[0].Name != "Mathematics" {
		t.Errorf("expected only Mathematics, got %+v", got)
	}
	if got := (Filter{Search: "hum-"}).Courses(courses); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("code search failed: %+v", got)
	}
}

func TestFilterGradesAndContents(t *testing.T) {
	grades := []domain.Grade{{ID: "1", Subject: "Math", Type: "exam"}, {ID: "2", Subject: "Art", Type: "project"}}
	if got := (Filter{Search: "PROJ"}).Grades(grades); len(got) != 1 || got[0].ID != "2" {
		t.Errorf("grade type search failed: %+v", got)
	}
	if got := (Filter{Category: "Math"}).Grades(grades); len(got) != 1 || got[0].ID != "1" {
		t.Errorf("grade category failed: %+v", got)
	}

	contents := []domain.Content{{ID: "1", Title: "Week 1 slides", Type: "material"}, {ID: "2", Title: "Essay", Type: "assignment"}}
	if got := (Filter{Search: "slides"}).Contents(contents); len(got) != 1 || got[0].ID != "1" {
		t.Errorf("content title search failed: %+v", got)
	}
	if got := (Filter{Category: "assignment"}).Contents(contents); len(got) != 1 || got[0].ID != "2" {
		t.Errorf("content category failed: %+v", got)
	}
}

func TestActiveCourses(t *testing.T) {
	courses := []domain.Course{
		{ID: "1", Status: "active"},
		{ID: "2", Status: "archived"},
		{ID: "3", Status: "Active"},
	}
	got := ActiveCourses(courses)
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("expected only course 1, got %+v", got)
	}
}

func TestContentCounts(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	contents := []domain.Content{
		{ID: "future", CourseID: "c1", CreatedAt: now.Add(time.Second)},
		{ID: "now", CourseID: "c1", CreatedAt: now},
		{ID: "edge", CourseID: "c1", CreatedAt: now.Add(-NewWindow)},
		{ID: "3d", CourseID: "c1", CreatedAt: now.Add(-72 * time.Hour)},
		{ID: "8d", CourseID: "c1", CreatedAt: now.Add(-8 * 24 * time.Hour)},
		{ID: "other", CourseID: "c2", CreatedAt: now.Add(time.Hour)},
	}

	pending, fresh := ContentCounts(contents, "c1", now)
	if pending != 1 {
		t.Errorf("pending = %d, want 1", pending)
	}
	if fresh != 3 {
		t.Errorf("new = %d, want 3", fresh)
	}

	// evaluated one second before creation the item is still pending
	created := now
	p, _ := ContentCounts([]domain.Content{{CourseID: "c", CreatedAt: created}}, "c", created.Add(-time.Second))
	if p != 1 {
		t.Errorf("item at T evaluated at T-1s should be pending")
	}
}

func TestDistinct(t *testing.T) {
	courses := []domain.Course{{Subject: "Math"}, {Subject: "Art"}, {Subject: "Math"}, {Subject: ""}}
	got := Distinct(courses, func(c domain.Course) string { return c.Subject })
	if want := []string{"Art", "Math"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got := Distinct([]domain.Course{}, func(c domain.Course) string { return c.Subject }); got == nil || len(got) != 0 {
		t.Errorf("empty input should give an empty, non-nil slice")
	}
}

func TestJoinGrades(t *testing.T) {
	courses := []domain.Course{{ID: "c1", Name: "Calculus", Subject: "Math"}}
	enrollments := []domain.Enrollment{{ID: "e1", CourseID: "c1", Course: domain.CourseRef{Name: "Calc (old name)"}}}
	grades := []domain.Grade{
		{ID: "g1", EnrollmentID: "e1", Subject: domain.DefaultSubject, Value: 9.5},
		{ID: "g2", CourseID: "c1", Subject: "Limits", Value: 7},
		{ID: "g3", CourseID: "missing", Subject: "Chem", Value: 5},
	}

	rows := JoinGrades(grades, enrollments, courses)
	if len(rows) != 3 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0].CourseID != "c1" || rows[0].CourseName != "Calculus" || rows[0].Subject != "Math" || rows[0].Display != "9.5" {
		t.Errorf("grade via enrollment: %+v", rows[0])
	}
	if rows[1].CourseName != "Calculus" || rows[1].Subject != "Limits" {
		t.Errorf("grade via course id: %+v", rows[1])
	}
	if rows[2].CourseName != "" || rows[2].Subject != "Chem" {
		t.Errorf("unresolved grade: %+v", rows[2])
	}
}

func TestResolveGradeSubjects(t *testing.T) {
	courses := []domain.Course{
		{ID: "c1", Name: "Calculus", Subject: "Math"},
		{ID: "c2", Name: "Drawing", Subject: "Art"},
	}
	enrollments := []domain.Enrollment{{ID: "e2", CourseID: "c2"}}
	grades := []domain.Grade{
		{ID: "g1", CourseID: "c1", Subject: domain.DefaultSubject, Value: 8},
		{ID: "g2", EnrollmentID: "e2", Subject: "", Value: 6},
		{ID: "g3", CourseID: "c1", Subject: "Limits", Value: 10},
		{ID: "g4", Subject: domain.DefaultSubject, Value: 4},
	}

	resolved := ResolveGradeSubjects(grades, enrollments, courses)
	got := []string{resolved[0].Subject, resolved[1].Subject, resolved[2].Subject, resolved[3].Subject}
	if want := []string{"Math", "Art", "Limits", domain.DefaultSubject}; !reflect.DeepEqual(got, want) {
		t.Errorf("subjects = %v, want %v", got, want)
	}
	if resolved[1].CourseID != "c2" {
		t.Errorf("course id not taken from enrollment: %+v", resolved[1])
	}
	if grades[0].Subject != domain.DefaultSubject {
		t.Errorf("input slice was modified")
	}

	byCategory := Filter{Category: "Math"}.Grades(resolved)
	if len(byCategory) != 1 || byCategory[0].ID != "g1" {
		t.Errorf("category Math: %+v", byCategory)
	}
	bySearch := Filter{Search: "math"}.Grades(resolved)
	if len(bySearch) != 1 || bySearch[0].ID != "g1" {
		t.Errorf("search math: %+v", bySearch)
	}

	cats := Distinct(resolved, func(g domain.Grade) string { return g.Subject })
	if want := []string{"Art", "Limits", "Math", domain.DefaultSubject}; !reflect.DeepEqual(cats, want) {
		t.Errorf("categories = %v, want %v", cats, want)
	}

	subjects := map[string]string{}
	for _, s := range Summarize(resolved).Subjects {
		subjects[s.Subject] = s.Display
	}
	if subjects["Math"] != "8.0" || subjects["Art"] != "6.0" {
		t.Errorf("subject averages: %v", subjects)
	}

	rows := JoinGrades(byCategory, enrollments, courses)
	if rows[0].Subject != "Math" || rows[0].CourseName != "Calculus" {
		t.Errorf("row disagrees with the filter: %+v", rows[0])
	}
}

func TestContentWithoutCourseIDIsNotCounted(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	courses := []domain.Course{{Name: "No id", Status: domain.DefaultCourseStatus}}
	contents := []domain.Content{
		{ID: "orphan", CreatedAt: now.Add(-time.Hour)},
		{ID: "later", CreatedAt: now.Add(time.Hour)},
	}

	pending, fresh := ContentCounts(contents, "", now)
	if pending != 0 || fresh != 0 {
		t.Errorf("ContentCounts with empty id = %d, %d", pending, fresh)
	}
	cards := ActiveCourseCards(courses, contents, Filter{}, now)
	if len(cards) != 1 || cards[0].Contents != 0 || cards[0].New != 0 || cards[0].Pending != 0 {
		t.Errorf("orphaned content attributed to course: %+v", cards)
	}
	stats := ContentStats(courses, contents, now)
	if stats[0].Total != 0 {
		t.Errorf("stats total = %d", stats[0].Total)
	}
	rows := CourseRows(courses, contents, Filter{})
	if rows[0].Contents != 0 {
		t.Errorf("row contents = %d", rows[0].Contents)
	}
}

func TestActiveCourseCards(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	courses := []domain.Course{
		{ID: "c1", Name: "Calculus", Subject: "Math", Status: "active", Semester: domain.Semester{Name: "2024-1"}},
		{ID: "c2", Name: "Drawing", Subject: "Art", Status: "inactive"},
	}
	contents := []domain.Content{
		{CourseID: "c1", CreatedAt: now.Add(time.Hour)},
		{CourseID: "c1", CreatedAt: now.Add(-time.Hour)},
		{CourseID: "c1", CreatedAt: now.Add(-30 * 24 * time.Hour)},
	}

	cards := ActiveCourseCards(courses, contents, Filter{}, now)
	if len(cards) != 1 {
		t.Fatalf("expected one card, got %+v", cards)
	}
	c := cards[0]
	if c.Contents != 3 || c.Pending != 1 || c.New != 1 || c.Semester != "2024-1" {
		t.Errorf("unexpected card %+v", c)
	}

	stats := ContentStats(courses, contents, now)
	if len(stats) != 2 || stats[1].Total != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestCourseRows(t *testing.T) {
	courses := []domain.Course{
		{ID: "1", Name: "Calculus", Subject: "Math", Status: "active"},
		{ID: "2", Name: "Drawing", Subject: "Art", Status: "archived"},
	}
	rows := CourseRows(courses, []domain.Content{{CourseID: "2"}}, Filter{Category: CategoryAll})
	if len(rows) != 2 || rows[1].Status != "archived" || rows[1].Contents != 1 {
		t.Errorf("unexpected rows %+v", rows)
	}
	if rows := CourseRows(courses, nil, Filter{Category: "Art"}); len(rows) != 1 || rows[0].ID != "2" {
		t.Errorf("category filter failed: %+v", rows)
	}
}
