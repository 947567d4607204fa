package booking

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/madrasa/core"
)

// Statuses
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var AllStatuses = []string{StatusScheduled, StatusCompleted, StatusCancelled}

// Booking window: a slot must be strictly after now and at most 7 days out
// (boundary inclusive).
const bookingWindow = 7 * 24 * time.Hour

// Appointment snapshots both parties' contact details at booking time so the
// calendar stays readable after profile edits.
type Appointment struct {
	ID            string        `json:"id"`
	StudentID     string        `json:"student_id"`
	StudentName   string        `json:"student_name"`
	StudentEmail  string        `json:"student_email"`
	StudentPhone  string        `json:"student_phone"`
	TeacherName   string        `json:"teacher_name"`
	TeacherEmail  string        `json:"teacher_email"`
	TeacherPhone  string        `json:"teacher_phone"`
	StartsAt      time.Time     `json:"starts_at"` // UTC
	DurationHours float64       `json:"duration_hours"`
	Status        string        `json:"status"`
	MeetingLink   string        `json:"meeting_link"`
	CreatedAt     time.Time     `json:"created_at"` // UTC
	UpdatedAt     time.Time     `json:"updated_at"` // UTC
}

func (a *Appointment) Duration() time.Duration {
	return time.Duration(a.DurationHours * float64(time.Hour))
}

// NewAppointment contains information needed to book an Appointment.
type NewAppointment struct {
	StartsAt      time.Time `json:"starts_at" validate:"required"`
	DurationHours float64   `json:"duration_hours" validate:"required,gte=1,lte=3"`
}

func (na *NewAppointment) Validate(validate *validator.Validate) error {
	return validate.Struct(na)
}

// UpdateAppointmentStatus defines a status transition on an Appointment.
type UpdateAppointmentStatus struct {
	Status string `json:"status" validate:"required,oneof=scheduled completed cancelled"`
}

func (us *UpdateAppointmentStatus) Validate(validate *validator.Validate) error {
	us.Status = core.CleanString(us.Status, true /* lower */)
	return validate.Struct(us)
}

type QueryFilter struct {
	StudentID string    `query:"student_id"`
	Status    string    `query:"status"`
	From      time.Time `query:"from"`
	To        time.Time `query:"to"`
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}
