package view

import (
	"time"

	"academic-dashboard/internal/domain"
)

type ActiveCourseCard struct {
	ID            string   `json:"id" yaml:"id"`
	Code          string   `json:"code" yaml:"code"`
	Name          string   `json:"name" yaml:"name"`
	Subject       string   `json:"subject" yaml:"subject"`
	ProfessorName string   `json:"professor_name" yaml:"professor_name"`
	Semester      string   `json:"semester" yaml:"semester"`
	Schedule      []string `json:"schedule" yaml:"schedule"`
	Contents      int      `json:"contents" yaml:"contents"`
	Pending       int      `json:"pending" yaml:"pending"`
	New           int      `json:"new" yaml:"new"`
}

type EnrollmentRow struct {
	ID           string `json:"id" yaml:"id"`
	StudentName  string `json:"student_name" yaml:"student_name"`
	StudentEmail string `json:"student_email" yaml:"student_email"`
	CourseName   string `json:"course_name" yaml:"course_name"`
	Status       string `json:"status" yaml:"status"`
	Semester     string `json:"semester" yaml:"semester"`
}

type GradeRow struct {
	ID         string    `json:"id" yaml:"id"`
	CourseID   string    `json:"course_id" yaml:"course_id"`
	CourseName string    `json:"course_name" yaml:"course_name"`
	Subject    string    `json:"subject" yaml:"subject"`
	Type       string    `json:"type" yaml:"type"`
	Value      float64   `json:"value" yaml:"value"`
	MaxValue   float64   `json:"max_value" yaml:"max_value"`
	Display    string    `json:"display" yaml:"display"`
	GradedAt   time.Time `json:"graded_at" yaml:"graded_at"`
}

// CourseRow is the admin listing entry; unlike ActiveCourseCard it covers
// every course regardless of status.
type CourseRow struct {
	ID            string `json:"id" yaml:"id"`
	Code          string `json:"code" yaml:"code"`
	Name          string `json:"name" yaml:"name"`
	Subject       string `json:"subject" yaml:"subject"`
	Status        string `json:"status" yaml:"status"`
	ProfessorName string `json:"professor_name" yaml:"professor_name"`
	Semester      string `json:"semester" yaml:"semester"`
	Contents      int    `json:"contents" yaml:"contents"`
}

type CourseContentStats struct {
	CourseID   string `json:"course_id" yaml:"course_id"`
	CourseName string `json:"course_name" yaml:"course_name"`
	Total      int    `json:"total" yaml:"total"`
	Pending    int    `json:"pending" yaml:"pending"`
	New        int    `json:"new" yaml:"new"`
}

// EnrollmentRows is the roster: active-semester enrollments that pass f.
func EnrollmentRows(enrollments []domain.Enrollment, f Filter) []EnrollmentRow {
	visible := f.Enrollments(VisibleEnrollments(enrollments))
	rows := make([]EnrollmentRow, len(visible))
	for i, e := range visible {
		rows[i] = EnrollmentRow{
			ID:           e.ID,
			StudentName:  e.Student.Name,
			StudentEmail: e.Student.Email,
			CourseName:   e.Course.Name,
			Status:       e.Status,
			Semester:     e.Semester.Name,
		}
	}
	return rows
}

// ActiveCourseCards builds one card per active course passing f, with its
// content counts evaluated at now.
func ActiveCourseCards(courses []domain.Course, contents []domain.Content, f Filter, now time.Time) []ActiveCourseCard {
	active := f.Courses(ActiveCourses(courses))
	cards := make([]ActiveCourseCard, len(active))
	for i, c := range active {
		pending, fresh := ContentCounts(contents, c.ID, now)
		cards[i] = ActiveCourseCard{
			ID:            c.ID,
			Code:          c.Code,
			Name:          c.Name,
			Subject:       c.Subject,
			ProfessorName: c.ProfessorName,
			Semester:      c.Semester.Name,
			Schedule:      c.Schedule,
			Contents:      countFor(contents, c.ID),
			Pending:       pending,
			New:           fresh,
		}
	}
	return cards
}

// CourseRows lists every course passing f.
func CourseRows(courses []domain.Course, contents []domain.Content, f Filter) []CourseRow {
	matched := f.Courses(courses)
	rows := make([]CourseRow, len(matched))
	for i, c := range matched {
		rows[i] = CourseRow{
			ID:            c.ID,
			Code:          c.Code,
			Name:          c.Name,
			Subject:       c.Subject,
			Status:        c.Status,
			ProfessorName: c.ProfessorName,
			Semester:      c.Semester.Name,
			Contents:      countFor(contents, c.ID),
		}
	}
	return rows
}

// ContentStats is ContentCounts for every course passed in.
func ContentStats(courses []domain.Course, contents []domain.Content, now time.Time) []CourseContentStats {
	out := make([]CourseContentStats, len(courses))
	for i, c := range courses {
		pending, fresh := ContentCounts(contents, c.ID, now)
		out[i] = CourseContentStats{
			CourseID:   c.ID,
			CourseName: c.Name,
			Total:      countFor(contents, c.ID),
			Pending:    pending,
			New:        fresh,
		}
	}
	return out
}

// ResolveGradeSubjects fills each grade's course id from its enrollment
// when missing, and replaces a missing or "unknown subject" subject with the
// course's. Grade filters, averages and category lists take its output.
func ResolveGradeSubjects(grades []domain.Grade, enrollments []domain.Enrollment, courses []domain.Course) []domain.Grade {
	courseByID, enrollmentByID := joinMaps(enrollments, courses)
	out := make([]domain.Grade, len(grades))
	for i, g := range grades {
		if e, ok := enrollmentByID[g.EnrollmentID]; ok && g.CourseID == "" {
			g.CourseID = e.CourseID
		}
		if c, ok := courseByID[g.CourseID]; ok && (g.Subject == "" || g.Subject == domain.DefaultSubject) && c.Subject != "" {
			g.Subject = c.Subject
		}
		out[i] = g
	}
	return out
}

// JoinGrades resolves each grade's course, directly by course_id or through
// its enrollment. Grades whose course can't be found keep their own
// subject and an empty course name.
func JoinGrades(grades []domain.Grade, enrollments []domain.Enrollment, courses []domain.Course) []GradeRow {
	courseByID, enrollmentByID := joinMaps(enrollments, courses)

	rows := make([]GradeRow, len(grades))
	for i, g := range ResolveGradeSubjects(grades, enrollments, courses) {
		courseName := ""
		if e, ok := enrollmentByID[g.EnrollmentID]; ok {
			courseName = e.Course.Name
		}
		if c, ok := courseByID[g.CourseID]; ok {
			courseName = c.Name
		}
		rows[i] = GradeRow{
			ID:         g.ID,
			CourseID:   g.CourseID,
			CourseName: courseName,
			Subject:    g.Subject,
			Type:       g.Type,
			Value:      g.Value,
			MaxValue:   g.MaxValue,
			Display:    FormatAverage(g.Value),
			GradedAt:   g.GradedAt,
		}
	}
	return rows
}

func joinMaps(enrollments []domain.Enrollment, courses []domain.Course) (map[string]domain.Course, map[string]domain.Enrollment) {
	courseByID := make(map[string]domain.Course, len(courses))
	for _, c := range courses {
		if c.ID != "" {
			courseByID[c.ID] = c
		}
	}
	enrollmentByID := make(map[string]domain.Enrollment, len(enrollments))
	for _, e := range enrollments {
		if e.ID != "" {
			enrollmentByID[e.ID] = e
		}
	}
	return courseByID, enrollmentByID
}

// countFor matches nothing for an empty course id.
func countFor(contents []domain.Content, courseID string) int {
	if courseID == "" {
		return 0
	}
	n := 0
	for _, c := range contents {
		if c.CourseID == courseID {
			n++
		}
	}
	return n
}
