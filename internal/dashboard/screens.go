package dashboard

import (
	"fmt"
	"sort"
	"time"

	"academic-dashboard/internal/domain"
	"academic-dashboard/internal/export"
	"academic-dashboard/internal/fetch"
	"academic-dashboard/internal/view"
)

// Screen is one guarded view: who may see it, what it loads and how the
// loaded collections become rows.
type Screen struct {
	Name      string
	Title     string
	Role      domain.Role
	Resources []fetch.Resource
	Build     func(data fetch.Collections, f view.Filter, now time.Time) View
}

// View is the render-ready output of a screen.
type View struct {
	Screen     string                    `json:"screen" yaml:"screen"`
	Title      string                    `json:"title" yaml:"title"`
	User       domain.UserProfile        `json:"user" yaml:"user"`
	Filter     view.Filter               `json:"filter" yaml:"filter"`
	Categories []string                  `json:"categories" yaml:"categories"`
	Rows       any                       `json:"rows" yaml:"rows"`
	Summary    *view.GradeSummary        `json:"summary,omitempty" yaml:"summary,omitempty"`
	Stats      []view.CourseContentStats `json:"stats,omitempty" yaml:"stats,omitempty"`
	Dropped    int                       `json:"dropped" yaml:"dropped"`
	Table      export.Table              `json:"-" yaml:"-"`
}

var screens = map[string]Screen{}

func register(s Screen) {
	screens[s.Name] = s
}

// Lookup returns the screen registered under name.
func Lookup(name string) (Screen, error) {
	s, ok := screens[name]
	if !ok {
		return Screen{}, fmt.Errorf("dashboard: unknown screen %q (known: %v)", name, Names())
	}
	return s, nil
}

// Names lists the registered screens, sorted.
func Names() []string {
	out := make([]string, 0, len(screens))
	for name := range screens {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func init() {
	register(Screen{
		Name:      "student-courses",
		Title:     "My courses",
		Role:      domain.RoleStudent,
		Resources: []fetch.Resource{fetch.Enrollments, fetch.Courses, fetch.Contents},
		Build:     buildStudentCourses,
	})
	register(Screen{
		Name:      "student-grades",
		Title:     "My grades",
		Role:      domain.RoleStudent,
		Resources: []fetch.Resource{fetch.Grades, fetch.Enrollments, fetch.Courses},
		Build:     buildStudentGrades,
	})
	register(Screen{
		Name:      "professor-courses",
		Title:     "Courses I teach",
		Role:      domain.RoleProfessor,
		Resources: []fetch.Resource{fetch.Courses, fetch.Contents},
		Build:     buildProfessorCourses,
	})
	register(Screen{
		Name:      "admin-enrollments",
		Title:     "Enrollments",
		Role:      domain.RoleAdmin,
		Resources: []fetch.Resource{fetch.Enrollments},
		Build:     buildAdminEnrollments,
	})
	register(Screen{
		Name:      "admin-courses",
		Title:     "All courses",
		Role:      domain.RoleAdmin,
		Resources: []fetch.Resource{fetch.Courses, fetch.Contents},
		Build:     buildAdminCourses,
	})
}

func courseSubject(c domain.Course) string { return c.Subject }

func buildStudentCourses(data fetch.Collections, f view.Filter, now time.Time) View {
	enrolled := map[string]bool{}
	for _, e := range view.VisibleEnrollments(data.Enrollments) {
		enrolled[e.CourseID] = true
	}
	var mine []domain.Course
	for _, c := range data.Courses {
		if enrolled[c.ID] {
			mine = append(mine, c)
		}
	}

	cards := view.ActiveCourseCards(mine, data.Contents, f, now)
	return View{
		Categories: view.Distinct(mine, courseSubject),
		Rows:       cards,
		Table:      cardTable(cards),
	}
}

func buildStudentGrades(data fetch.Collections, f view.Filter, _ time.Time) View {
	grades := view.ResolveGradeSubjects(data.Grades, data.Enrollments, data.Courses)
	filtered := f.Grades(grades)
	rows := view.JoinGrades(filtered, data.Enrollments, data.Courses)
	summary := view.Summarize(filtered)

	t := export.Table{Columns: []string{"COURSE", "SUBJECT", "TYPE", "GRADE", "MAX", "GRADED_AT"}}
	for _, r := range rows {
		graded := ""
		if !r.GradedAt.IsZero() {
			graded = r.GradedAt.Format("2006-01-02")
		}
		t.Rows = append(t.Rows, []string{r.CourseName, r.Subject, r.Type, r.Display, export.FloatToString(r.MaxValue), graded})
	}
	return View{
		Categories: view.Distinct(grades, func(g domain.Grade) string { return g.Subject }),
		Rows:       rows,
		Summary:    &summary,
		Table:      t,
	}
}

func buildProfessorCourses(data fetch.Collections, f view.Filter, now time.Time) View {
	cards := view.ActiveCourseCards(data.Courses, data.Contents, f, now)
	return View{
		Categories: view.Distinct(data.Courses, courseSubject),
		Rows:       cards,
		Stats:      view.ContentStats(f.Courses(view.ActiveCourses(data.Courses)), data.Contents, now),
		Table:      cardTable(cards),
	}
}

func buildAdminEnrollments(data fetch.Collections, f view.Filter, _ time.Time) View {
	rows := view.EnrollmentRows(data.Enrollments, f)
	t := export.Table{Columns: []string{"STUDENT", "EMAIL", "COURSE", "STATUS", "SEMESTER"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.StudentName, r.StudentEmail, r.CourseName, r.Status, r.Semester})
	}
	return View{
		Categories: view.Distinct(data.Enrollments, func(e domain.Enrollment) string { return e.Course.Name }),
		Rows:       rows,
		Table:      t,
	}
}

func buildAdminCourses(data fetch.Collections, f view.Filter, _ time.Time) View {
	rows := view.CourseRows(data.Courses, data.Contents, f)
	t := export.Table{Columns: []string{"CODE", "COURSE", "SUBJECT", "STATUS", "PROFESSOR", "SEMESTER", "CONTENTS"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Code, r.Name, r.Subject, r.Status, r.ProfessorName, r.Semester, fmt.Sprint(r.Contents)})
	}
	return View{
		Categories: view.Distinct(data.Courses, courseSubject),
		Rows:       rows,
		Table:      t,
	}
}

func cardTable(cards []view.ActiveCourseCard) export.Table {
	t := export.Table{Columns: []string{"CODE", "COURSE", "SUBJECT", "PROFESSOR", "SEMESTER", "SCHEDULE", "CONTENTS", "PENDING", "NEW"}}
	for _, c := range cards {
		t.Rows = append(t.Rows, []string{
			c.Code, c.Name, c.Subject, c.ProfessorName, c.Semester, export.JoinList(c.Schedule),
			fmt.Sprint(c.Contents), fmt.Sprint(c.Pending), fmt.Sprint(c.New),
		})
	}
	return t
}
