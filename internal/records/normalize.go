package records

import (
	"fmt"
	"time"

	"academic-dashboard/internal/domain"
	"academic-dashboard/internal/logx"
)

// DataShapeError describes a record dropped during normalization. It is
// reported for logging only; normalization itself never fails.
type DataShapeError struct {
	Resource string
	ID       string
	Field    string
	Value    any
}

func (e *DataShapeError) Error() string {
	id := e.ID
	if id == "" {
		id = "?"
	}
	return fmt.Sprintf("records: %s %s: field %q is not a finite number (got %v)", e.Resource, id, e.Field, e.Value)
}

func semester(m Raw) domain.Semester {
	s := getMap(m, "semester")
	return domain.Semester{
		ID:       getString(s, "id"),
		Name:     getString(s, "name"),
		IsActive: getBool(s, "is_active", "isActive", "active"),
	}
}

func NormalizeCourse(m Raw) domain.Course {
	prof := getMap(m, "professor")
	return domain.Course{
		ID:            getString(m, "id", "course_id"),
		Code:          getString(m, "code"),
		Name:          getString(m, "name", "title"),
		Description:   getString(m, "description"),
		Subject:       firstNonEmpty(getString(m, "subject", "category"), domain.DefaultSubject),
		Status:        firstNonEmpty(getString(m, "status"), domain.DefaultCourseStatus),
		ProfessorID:   firstNonEmpty(getString(m, "professor_id", "professorId"), getString(prof, "id")),
		ProfessorName: firstNonEmpty(getString(m, "professor_name", "professorName"), getString(prof, "name")),
		Credits:       floatOrZero(m, "credits"),
		Schedule:      getStrings(m, "schedule"),
		Semester:      semester(m),
	}
}

func NormalizeEnrollment(m Raw) domain.Enrollment {
	course := getMap(m, "course")
	student := getMap(m, "student")
	return domain.Enrollment{
		ID:       getString(m, "id"),
		CourseID: firstNonEmpty(getString(m, "course_id", "courseId"), getString(course, "id")),
		Course: domain.CourseRef{
			ID:      firstNonEmpty(getString(course, "id"), getString(m, "course_id", "courseId")),
			Name:    firstNonEmpty(getString(course, "name", "title"), getString(m, "course_name", "courseName")),
			Subject: firstNonEmpty(getString(course, "subject", "category"), domain.DefaultSubject),
		},
		Student: domain.StudentRef{
			ID:    firstNonEmpty(getString(student, "id"), getString(m, "student_id", "studentId")),
			Name:  firstNonEmpty(getString(student, "name"), getString(m, "student_name", "studentName")),
			Email: firstNonEmpty(getString(student, "email"), getString(m, "student_email", "studentEmail")),
		},
		Status:     firstNonEmpty(getString(m, "status"), domain.DefaultEnrollmentStatus),
		Semester:   semester(m),
		EnrolledAt: getTime(m, "enrolled_at", "enrolledAt", "created_at"),
	}
}

// NormalizeGrade fails when value is missing or not a finite number.
func NormalizeGrade(m Raw) (domain.Grade, error) {
	course := getMap(m, "course")
	g := domain.Grade{
		ID:           getString(m, "id"),
		EnrollmentID: getString(m, "enrollment_id", "enrollmentId"),
		CourseID:     firstNonEmpty(getString(m, "course_id", "courseId"), getString(course, "id")),
		StudentID:    getString(m, "student_id", "studentId"),
		Subject:      firstNonEmpty(getString(m, "subject"), getString(course, "name", "subject"), domain.DefaultSubject),
		Type:         firstNonEmpty(getString(m, "type", "grade_type"), domain.DefaultGradeType),
		MaxValue:     floatOrZero(m, "max_value", "maxValue"),
		Comments:     getString(m, "comments", "comment"),
		GradedAt:     getTime(m, "graded_at", "gradedAt", "created_at"),
	}
	v, ok := getFloat(m, "value", "grade", "score")
	if !ok {
		return domain.Grade{}, &DataShapeError{Resource: "grade", ID: g.ID, Field: "value", Value: firstPresent(m, "value", "grade", "score")}
	}
	g.Value = v
	return g, nil
}

func NormalizeContent(m Raw) domain.Content {
	return domain.Content{
		ID:          getString(m, "id"),
		CourseID:    firstNonEmpty(getString(m, "course_id", "courseId"), getString(getMap(m, "course"), "id")),
		Title:       getString(m, "title", "name"),
		Description: getString(m, "description"),
		Type:        firstNonEmpty(getString(m, "type", "content_type"), domain.DefaultContentType),
		FileURL:     getString(m, "file_url", "fileUrl", "url"),
		Tags:        getStrings(m, "tags"),
		CreatedAt:   getTime(m, "created_at", "createdAt"),
	}
}

func NormalizeCourses(raws []Raw) []domain.Course {
	start := time.Now()
	out := make([]domain.Course, 0, len(raws))
	for _, r := range raws {
		out = append(out, NormalizeCourse(r))
	}
	logx.LogTransform("records/courses", len(raws), len(out), time.Since(start))
	return out
}

func NormalizeEnrollments(raws []Raw) []domain.Enrollment {
	start := time.Now()
	out := make([]domain.Enrollment, 0, len(raws))
	for _, r := range raws {
		out = append(out, NormalizeEnrollment(r))
	}
	logx.LogTransform("records/enrollments", len(raws), len(out), time.Since(start))
	return out
}

// NormalizeGrades drops every record whose value is not a finite number and
// returns the reasons alongside the kept records.
func NormalizeGrades(raws []Raw) ([]domain.Grade, []error) {
	start := time.Now()
	out := make([]domain.Grade, 0, len(raws))
	var dropped []error
	for _, r := range raws {
		g, err := NormalizeGrade(r)
		if err != nil {
			dropped = append(dropped, err)
			continue
		}
		out = append(out, g)
	}
	for _, err := range dropped {
		logx.LogError("records/grades", "normalize", err)
	}
	logx.LogTransform("records/grades", len(raws), len(out), time.Since(start))
	return out, dropped
}

func NormalizeContents(raws []Raw) []domain.Content {
	start := time.Now()
	out := make([]domain.Content, 0, len(raws))
	for _, r := range raws {
		out = append(out, NormalizeContent(r))
	}
	logx.LogTransform("records/contents", len(raws), len(out), time.Since(start))
	return out
}

func floatOrZero(m Raw, keys ...string) float64 {
	f, _ := getFloat(m, keys...)
	return f
}

func firstPresent(m Raw, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}
