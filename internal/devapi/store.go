package devapi

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// seedNS makes seeded ids stable across restarts.
var seedNS = uuid.MustParse("6f1c3a52-7d0e-4d8b-9d43-2f6f0c1e7a10")

func seedID(kind, name string) string {
	return uuid.NewSHA1(seedNS, []byte(kind+"/"+name)).String()
}

type User struct {
	ID       string
	Name     string
	Email    string
	Role     string
	PhotoURL string
	Hash     []byte
}

// Store is the in-memory dataset. Collection records are kept as loose maps
// on purpose: numbers as text, missing fields and broken values all occur
// the way they do on the real API.
type Store struct {
	mu          sync.RWMutex
	users       map[string]*User // by email
	revoked     map[string]time.Time
	photos      map[string][]byte
	courses     []map[string]any
	enrollments []map[string]any
	grades      []map[string]any
	contents    []map[string]any
}

// SeedUser describes an account created by NewStore. Password is hashed
// on the way in.
type SeedUser struct {
	Name     string
	Email    string
	Role     string
	Password string
}

// DefaultUsers are the accounts of the seeded dataset.
var DefaultUsers = []SeedUser{
	{Name: "Margaret Admin", Email: "admin@school.test", Role: "admin", Password: "admin123"},
	{Name: "Ada Lovelace", Email: "ada@school.test", Role: "professor", Password: "prof123"},
	{Name: "Alan Turing", Email: "alan@school.test", Role: "professor", Password: "prof123"},
	{Name: "Grace Hopper", Email: "grace@school.test", Role: "student", Password: "student123"},
	{Email: "linus@school.test", Role: "student", Password: "student123"},
	{Name: "Dean Nobody", Email: "dean@school.test", Role: "dean", Password: "dean123"},
}

// NewStore seeds users and collections. Content timestamps are relative
// to now so pending/new counts stay meaningful.
func NewStore(users []SeedUser, now time.Time) (*Store, error) {
	s := &Store{
		users:   map[string]*User{},
		revoked: map[string]time.Time{},
		photos:  map[string][]byte{},
	}
	for _, u := range users {
		hash, err := HashPassword(u.Password)
		if err != nil {
			return nil, fmt.Errorf("devapi: hash password for %s: %w", u.Email, err)
		}
		email := strings.ToLower(u.Email)
		s.users[email] = &User{
			ID:    seedID("user", email),
			Name:  u.Name,
			Email: email,
			Role:  u.Role,
			Hash:  hash,
		}
	}
	s.seedCollections(now)
	return s, nil
}

func (s *Store) userID(email string) string {
	if u, ok := s.users[email]; ok {
		return u.ID
	}
	return ""
}

func (s *Store) seedCollections(now time.Time) {
	active := map[string]any{"id": seedID("semester", "2024-2"), "name": "2024-2", "is_active": true}
	past := map[string]any{"id": seedID("semester", "2024-1"), "name": "2024-1", "is_active": "false"}

	ada, alan := s.userID("ada@school.test"), s.userID("alan@school.test")
	grace, linus := s.userID("grace@school.test"), s.userID("linus@school.test")

	calc, art, phys, hist := seedID("course", "calc"), seedID("course", "art"), seedID("course", "phys"), seedID("course", "hist")
	s.courses = []map[string]any{
		{"id": calc, "code": "MAT-101", "name": "Mathematics I", "subject": "Mathematics", "status": "active",
			"professor": map[string]any{"id": ada, "name": "Ada Lovelace"}, "credits": "6", "schedule": []any{"Mon 09:00", "Wed 09:00"}, "semester": active},
		{"id": art, "code": "ART-110", "name": "Drawing Fundamentals", "subject": "Art", "status": "active",
			"professor_id": alan, "professor_name": "Alan Turing", "credits": 4, "semester": active},
		{"id": phys, "code": "PHY-200", "name": "Classical Mechanics", "subject": "Science", "status": "archived",
			"professor_id": ada, "professor_name": "Ada Lovelace", "credits": 6, "semester": past},
		// no status or subject: exercises the client defaults
		{"id": hist, "code": "HIS-120", "name": "Modern History", "professor_id": alan, "professor_name": "Alan Turing", "schedule": nil},
	}

	type enr struct{ key, course, courseName, student, studentName, studentEmail string }
	rows := []enr{
		{"grace-calc", calc, "Mathematics I", grace, "Grace Hopper", "grace@school.test"},
		{"grace-art", art, "Drawing Fundamentals", grace, "Grace Hopper", "grace@school.test"},
		{"grace-phys", phys, "Classical Mechanics", grace, "Grace Hopper", "grace@school.test"},
		{"linus-calc", calc, "Mathematics I", linus, "", "linus@school.test"},
		{"linus-hist", hist, "Modern History", linus, "", "linus@school.test"},
	}
	for i, e := range rows {
		sem := active
		if e.course == phys {
			sem = past
		}
		rec := map[string]any{
			"id":          seedID("enrollment", e.key),
			"course_id":   e.course,
			"course":      map[string]any{"id": e.course, "name": e.courseName},
			"student":     map[string]any{"id": e.student, "name": e.studentName, "email": e.studentEmail},
			"semester":    sem,
			"enrolled_at": now.AddDate(0, -2, -i).UTC().Format(time.RFC3339),
		}
		if e.key == "linus-hist" {
			// flat student fields, no status, no semester
			delete(rec, "student")
			delete(rec, "semester")
			rec["student_id"] = e.student
			rec["student_email"] = e.studentEmail
		} else {
			rec["status"] = "enrolled"
		}
		s.enrollments = append(s.enrollments, rec)
	}

	s.grades = []map[string]any{
		{"id": seedID("grade", "g1"), "enrollment_id": seedID("enrollment", "grace-calc"), "course_id": calc, "student_id": grace,
			"subject": "Mathematics", "type": "exam", "value": 8, "max_value": 10, "graded_at": now.AddDate(0, 0, -20).UTC().Format(time.RFC3339)},
		{"id": seedID("grade", "g2"), "enrollment_id": seedID("enrollment", "grace-calc"), "course_id": calc, "student_id": grace,
			"subject": "Mathematics", "type": "quiz", "value": "10", "max_value": "10"},
		{"id": seedID("grade", "g3"), "enrollment_id": seedID("enrollment", "grace-art"), "course_id": art, "student_id": grace,
			"subject": "Art", "type": "project", "value": "6,0", "max_value": 10},
		{"id": seedID("grade", "g4"), "enrollment_id": seedID("enrollment", "linus-calc"), "course_id": calc, "student_id": linus,
			"subject": "Mathematics", "type": "exam", "value": 7.5},
		{"id": seedID("grade", "g5"), "enrollment_id": seedID("enrollment", "linus-hist"), "course_id": hist, "student_id": linus,
			"subject": "Modern History", "value": "abc", "comments": "pending review"},
	}

	day := 24 * time.Hour
	content := func(key, course, title, typ string, at time.Duration) map[string]any {
		rec := map[string]any{
			"id":         seedID("content", key),
			"course_id":  course,
			"title":      title,
			"created_at": now.Add(at).UTC().Format(time.RFC3339),
		}
		if typ != "" {
			rec["type"] = typ
		}
		return rec
	}
	s.contents = []map[string]any{
		content("calc-exam", calc, "Midterm exam", "assignment", 2*day),
		content("calc-week5", calc, "Week 5 slides", "material", -1*day),
		content("calc-week1", calc, "Week 1 slides", "", -10*day),
		content("art-brief", art, "Portfolio brief", "assignment", -3*day),
		content("hist-reading", hist, "Reading list", "material", -40*day),
	}
}

// Account lookups and token revocation.

func (s *Store) Authenticate(email, password string) (User, bool) {
	s.mu.RLock()
	u, ok := s.users[strings.ToLower(strings.TrimSpace(email))]
	var cp User
	if ok {
		cp = *u
	}
	s.mu.RUnlock()
	if !ok || CheckPassword(cp.Hash, password) != nil {
		return User{}, false
	}
	return cp, true
}

func (s *Store) UserByID(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return *u, true
		}
	}
	return User{}, false
}

func (s *Store) Revoke(jti string, exp time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = exp
}

func (s *Store) Revoked(jti string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[jti]
	return ok
}

func (s *Store) SavePhoto(userID, name string, data []byte, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photos[name] = data
	for _, u := range s.users {
		if u.ID == userID {
			u.PhotoURL = url
		}
	}
}

func (s *Store) Photo(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.photos[name]
	return b, ok
}

// Scoped collection reads. Admins see everything, professors what belongs
// to their courses, students what they are enrolled in.

func (s *Store) Courses(userID, role string) []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch role {
	case "admin":
		return s.courses
	case "professor":
		return filterRecords(s.courses, func(c map[string]any) bool { return courseProfessor(c) == userID })
	}
	ids := s.enrolledCourses(userID)
	return filterRecords(s.courses, func(c map[string]any) bool { return ids[str(c, "id")] })
}

func (s *Store) Enrollments(userID, role string) []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch role {
	case "admin":
		return s.enrollments
	case "professor":
		ids := s.taughtCourses(userID)
		return filterRecords(s.enrollments, func(e map[string]any) bool { return ids[str(e, "course_id")] })
	}
	return filterRecords(s.enrollments, func(e map[string]any) bool { return enrollmentStudent(e) == userID })
}

func (s *Store) Grades(userID, role string) []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch role {
	case "admin":
		return s.grades
	case "professor":
		ids := s.taughtCourses(userID)
		return filterRecords(s.grades, func(g map[string]any) bool { return ids[str(g, "course_id")] })
	}
	return filterRecords(s.grades, func(g map[string]any) bool { return str(g, "student_id") == userID })
}

func (s *Store) Contents(userID, role string) []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch role {
	case "admin":
		return s.contents
	case "professor":
		ids := s.taughtCourses(userID)
		return filterRecords(s.contents, func(c map[string]any) bool { return ids[str(c, "course_id")] })
	}
	ids := s.enrolledCourses(userID)
	return filterRecords(s.contents, func(c map[string]any) bool { return ids[str(c, "course_id")] })
}

func (s *Store) taughtCourses(userID string) map[string]bool {
	ids := map[string]bool{}
	for _, c := range s.courses {
		if courseProfessor(c) == userID {
			ids[str(c, "id")] = true
		}
	}
	return ids
}

func (s *Store) enrolledCourses(userID string) map[string]bool {
	ids := map[string]bool{}
	for _, e := range s.enrollments {
		if enrollmentStudent(e) == userID {
			ids[str(e, "course_id")] = true
		}
	}
	return ids
}

func courseProfessor(c map[string]any) string {
	if p, ok := c["professor"].(map[string]any); ok {
		return str(p, "id")
	}
	return str(c, "professor_id")
}

func enrollmentStudent(e map[string]any) string {
	if st, ok := e["student"].(map[string]any); ok {
		return str(st, "id")
	}
	return str(e, "student_id")
}

func str(m map[string]any, k string) string {
	s, _ := m[k].(string)
	return s
}

func filterRecords(in []map[string]any, keep func(map[string]any) bool) []map[string]any {
	out := []map[string]any{}
	for _, r := range in {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
