package domain

import "time"

// Fallback values used when the API omits an enum/status field.
const (
	DefaultCourseStatus     = "active"
	DefaultSubject          = "unknown subject"
	DefaultContentType      = "material"
	DefaultEnrollmentStatus = "enrolled"
	DefaultGradeType        = "exam"
)

// Semester is embedded in courses and enrollments. The zero value is the
// "empty" semester: inactive, so it never gates anything into view.
type Semester struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	IsActive bool   `json:"is_active" yaml:"is_active"`
}

// CourseRef is the denormalized course summary some collections embed.
type CourseRef struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Subject string `json:"subject" yaml:"subject"`
}

type StudentRef struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

type Course struct {
	ID            string   `json:"id" yaml:"id"`
	Code          string   `json:"code" yaml:"code"`
	Name          string   `json:"name" yaml:"name"`
	Description   string   `json:"description" yaml:"description"`
	Subject       string   `json:"subject" yaml:"subject"`
	Status        string   `json:"status" yaml:"status"`
	ProfessorID   string   `json:"professor_id" yaml:"professor_id"`
	ProfessorName string   `json:"professor_name" yaml:"professor_name"`
	Credits       float64  `json:"credits" yaml:"credits"`
	Schedule      []string `json:"schedule" yaml:"schedule"`
	Semester      Semester `json:"semester" yaml:"semester"`
}

type Enrollment struct {
	ID         string     `json:"id" yaml:"id"`
	CourseID   string     `json:"course_id" yaml:"course_id"`
	Course     CourseRef  `json:"course" yaml:"course"`
	Student    StudentRef `json:"student" yaml:"student"`
	Status     string     `json:"status" yaml:"status"`
	Semester   Semester   `json:"semester" yaml:"semester"`
	EnrolledAt time.Time  `json:"enrolled_at" yaml:"enrolled_at"`
}

type Grade struct {
	ID           string    `json:"id" yaml:"id"`
	EnrollmentID string    `json:"enrollment_id" yaml:"enrollment_id"`
	CourseID     string    `json:"course_id" yaml:"course_id"`
	StudentID    string    `json:"student_id" yaml:"student_id"`
	Subject      string    `json:"subject" yaml:"subject"`
	Type         string    `json:"type" yaml:"type"`
	Value        float64   `json:"value" yaml:"value"`
	MaxValue     float64   `json:"max_value" yaml:"max_value"`
	Comments     string    `json:"comments" yaml:"comments"`
	GradedAt     time.Time `json:"graded_at" yaml:"graded_at"`
}

type Content struct {
	ID          string    `json:"id" yaml:"id"`
	CourseID    string    `json:"course_id" yaml:"course_id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Type        string    `json:"type" yaml:"type"`
	FileURL     string    `json:"file_url" yaml:"file_url"`
	Tags        []string  `json:"tags" yaml:"tags"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}
