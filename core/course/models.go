package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/madrasa/core"
)

// Enrollment statuses
const (
	EnrollmentActive  = "active"
	EnrollmentRevoked = "revoked"
)

type Course struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	ThumbnailURL string    `json:"thumbnail_url"`
	SyllabusURL  string    `json:"syllabus_url"`
	Active       *bool     `json:"active"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (c *Course) IsActive() bool {
	return c.Active == nil || *c.Active
}

// Lesson belongs to a Course; listings are ordered by Order.
// VideoFileID is an opaque reference into the file store; delivery is not
// handled here.
type Lesson struct {
	ID           string    `json:"id"`
	CourseID     string    `json:"course_id"`
	Title        string    `json:"title"`
	Order        int       `json:"order"`
	DurationMins int       `json:"duration_mins"`
	VideoFileID  string    `json:"video_file_id"`
	Active       *bool     `json:"active"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (l *Lesson) IsActive() bool {
	return l.Active == nil || *l.Active
}

// Enrollment grants a student access to a Course. Its id is the composite
// "{studentID}_{courseID}" so a re-grant upserts instead of duplicating.
type Enrollment struct {
	ID           string    `json:"id"`
	CourseID     string    `json:"course_id"`
	StudentID    string    `json:"student_id"`
	StudentEmail string    `json:"student_email"`
	Status       string    `json:"status"`
	GrantedBy    string    `json:"granted_by"`
	GrantedAt    time.Time `json:"granted_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (e *Enrollment) IsActive() bool {
	return e.Status == EnrollmentActive
}

// EnrollmentID builds the composite enrollment id.
func EnrollmentID(studentID, courseID string) string {
	return studentID + "_" + courseID
}

// NewCourse contains information needed to add a Course to the catalog.
type NewCourse struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	ThumbnailURL string `json:"thumbnail_url" validate:"omitempty,url"`
	SyllabusURL  string `json:"syllabus_url" validate:"omitempty,url"`
	Active       *bool  `json:"active"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Category = core.CleanString(nc.Category)
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify a Course.
type UpdateCourse struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	ThumbnailURL string `json:"thumbnail_url" validate:"omitempty,url"`
	SyllabusURL  string `json:"syllabus_url" validate:"omitempty,url"`
	Active       *bool  `json:"active"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Title = core.CleanString(uc.Title)
	uc.Description = core.CleanString(uc.Description)
	uc.Category = core.CleanString(uc.Category)
	return validate.Struct(uc)
}

// NewLesson contains information needed to add a Lesson to a Course.
type NewLesson struct {
	Title        string `json:"title" validate:"required"`
	Order        int    `json:"order" validate:"gte=0"`
	DurationMins int    `json:"duration_mins" validate:"gte=0"`
	VideoFileID  string `json:"video_file_id"`
	Active       *bool  `json:"active"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Title = core.CleanString(nl.Title)
	nl.VideoFileID = core.CleanString(nl.VideoFileID)
	return validate.Struct(nl)
}

// UpdateLesson defines what information may be provided to modify a Lesson.
type UpdateLesson struct {
	Title        string `json:"title"`
	Order        *int   `json:"order" validate:"omitempty,gte=0"`
	DurationMins *int   `json:"duration_mins" validate:"omitempty,gte=0"`
	VideoFileID  string `json:"video_file_id"`
	Active       *bool  `json:"active"`
}

func (ul *UpdateLesson) Validate(validate *validator.Validate) error {
	ul.Title = core.CleanString(ul.Title)
	ul.VideoFileID = core.CleanString(ul.VideoFileID)
	return validate.Struct(ul)
}

// GrantEnrollment enrolls a student into a Course.
type GrantEnrollment struct {
	StudentID string `json:"student_id" validate:"required"`
}

func (ge *GrantEnrollment) Validate(validate *validator.Validate) error {
	ge.StudentID = core.CleanString(ge.StudentID)
	return validate.Struct(ge)
}

// UpdateEnrollment revokes or restores an Enrollment.
type UpdateEnrollment struct {
	Status string `json:"status" validate:"required,oneof=active revoked"`
}

func (ue *UpdateEnrollment) Validate(validate *validator.Validate) error {
	ue.Status = core.CleanString(ue.Status, true /* lower */)
	return validate.Struct(ue)
}

// EnrollmentFilter fetches enrollments by exact fields.
type EnrollmentFilter struct {
	CourseID     string
	StudentID    string
	StudentEmail string
}
