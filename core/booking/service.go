package booking

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/user"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrNotFound     = errors.New("appointment not found")
	ErrPastStart    = errors.New("appointment time must be in the future")
	ErrBeyondWindow = errors.New("appointment time must be within the next 7 days")
	ErrSlotTaken    = errors.New("this time slot is already booked")
	ErrNoTeacher    = errors.New("no teacher account configured")
)

type (
	Repository interface {
		CreateAppointment(ctx context.Context, appt Appointment) (Appointment, error)
		// QueryAppointments applies AND operation on available QueryFilter fields.
		QueryAppointments(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Appointment, error)
		GetAppointment(ctx context.Context, id string) (Appointment, error)
		UpdateAppointment(ctx context.Context, appt Appointment) (Appointment, error)
		DeleteAppointmentsByID(ctx context.Context, ids ...string) (int, error)
	}

	Service interface {
		Book(ctx context.Context, na NewAppointment, student user.User) (Appointment, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Appointment, error)
		GetByID(ctx context.Context, id string) (Appointment, error)
		UpdateStatus(ctx context.Context, id string, us UpdateAppointmentStatus) (Appointment, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo    Repository
		usrRepo user.Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:    repo,
		usrRepo: usrRepo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

// Book validates the requested slot, snapshots both parties and fires the two
// confirmation emails. The duplicate-slot check scans the day's appointments
// in memory; two concurrent bookings of the same slot may still both land.
func (svc *service) Book(ctx context.Context, na NewAppointment, student user.User) (Appointment, error) {
	startsAt := na.StartsAt.UTC()
	now := nowFunc().UTC()

	if !startsAt.After(now) {
		return Appointment{}, core.NewValidationError(ErrPastStart, core.FieldError{Field: "starts_at", Error: ErrPastStart.Error()})
	}
	if startsAt.After(now.Add(bookingWindow)) {
		return Appointment{}, core.NewValidationError(ErrBeyondWindow, core.FieldError{Field: "starts_at", Error: ErrBeyondWindow.Error()})
	}

	dayStart := time.Date(startsAt.Year(), startsAt.Month(), startsAt.Day(), 0, 0, 0, 0, time.UTC)
	sameDay, err := svc.repo.QueryAppointments(ctx, &QueryFilter{From: dayStart, To: dayStart.Add(24 * time.Hour)}, nil)
	if err != nil {
		return Appointment{}, pkgerrors.Wrap(err, "querying same-day appointments")
	}
	for _, appt := range sameDay {
		if appt.Status == StatusScheduled && appt.StartsAt.Equal(startsAt) {
			return Appointment{}, core.NewValidationError(ErrSlotTaken, core.FieldError{Field: "starts_at", Error: ErrSlotTaken.Error()})
		}
	}

	teacher, err := svc.teacher(ctx)
	if err != nil {
		return Appointment{}, err
	}

	tstamp := time.Now().UTC()
	appt := Appointment{
		StudentID:     student.ID,
		StudentName:   student.FullName(),
		StudentEmail:  student.Email,
		StudentPhone:  student.PhoneNumber,
		TeacherName:   teacher.FullName(),
		TeacherEmail:  teacher.Email,
		TeacherPhone:  teacher.PhoneNumber,
		StartsAt:      startsAt,
		DurationHours: na.DurationHours,
		Status:        StatusScheduled,
		MeetingLink:   svc.meetingLink(),
		CreatedAt:     tstamp,
		UpdatedAt:     tstamp,
	}
	appt, err = svc.repo.CreateAppointment(ctx, appt)
	if err != nil {
		return Appointment{}, pkgerrors.Wrap(err, "creating appointment")
	}

	svc.sendConfirmations(appt)
	return appt, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Appointment, error) {
	return svc.repo.QueryAppointments(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Appointment, error) {
	return svc.repo.GetAppointment(ctx, id)
}

func (svc *service) UpdateStatus(ctx context.Context, id string, us UpdateAppointmentStatus) (Appointment, error) {
	appt, err := svc.repo.GetAppointment(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	appt.Status = us.Status
	appt.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAppointment(ctx, appt)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteAppointmentsByID(ctx, ids...)
	return err
}

// teacher finds the platform's teacher account.
func (svc *service) teacher(ctx context.Context) (user.User, error) {
	teachers, err := svc.usrRepo.QueryUsers(ctx, &user.QueryFilter{Role: user.RoleTeacher}, nil)
	if err != nil {
		return user.User{}, pkgerrors.Wrap(err, "finding teacher")
	}
	for _, t := range teachers {
		if t.IsActive == nil || *t.IsActive {
			return t, nil
		}
	}
	return user.User{}, ErrNoTeacher
}

func (svc *service) meetingLink() string {
	return strings.TrimRight(svc.conf.MeetingBaseURL, "/") + "/madrasa-" + uuid.New().String()
}

// sendConfirmations mails each party the other's contact details.
func (svc *service) sendConfirmations(appt Appointment) {
	when := appt.StartsAt.Format("Mon, 02 Jan 2006 15:04 MST")
	data := func(recipient, other, otherEmail, otherPhone string) interface{} {
		return struct {
			FullName      string
			OtherName     string
			OtherEmail    string
			OtherPhone    string
			When          string
			DurationHours float64
			MeetingLink   string
		}{recipient, other, otherEmail, otherPhone, when, appt.DurationHours, appt.MeetingLink}
	}
	svc.mailSvc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Name: appt.StudentName, Address: appt.StudentEmail}},
			Subject:      fmt.Sprintf("Lesson confirmed - %s", when),
			TemplateName: "appointment-confirmation",
			TemplateData: data(appt.StudentName, appt.TeacherName, appt.TeacherEmail, appt.TeacherPhone),
		},
		&core.EmailMessage{
			To:           []mail.Address{{Name: appt.TeacherName, Address: appt.TeacherEmail}},
			Subject:      fmt.Sprintf("New lesson booked - %s", when),
			TemplateName: "appointment-confirmation",
			TemplateData: data(appt.TeacherName, appt.StudentName, appt.StudentEmail, appt.StudentPhone),
		},
	)
}
