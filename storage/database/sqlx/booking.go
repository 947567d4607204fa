package sqlxrepos

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/booking"
)

type appointmentRow struct {
	ID            string    `db:"id"`
	StudentID     string    `db:"student_id"`
	StudentName   string    `db:"student_name"`
	StudentEmail  string    `db:"student_email"`
	StudentPhone  string    `db:"student_phone"`
	TeacherName   string    `db:"teacher_name"`
	TeacherEmail  string    `db:"teacher_email"`
	TeacherPhone  string    `db:"teacher_phone"`
	StartsAt      time.Time `db:"starts_at"`
	DurationHours float64   `db:"duration_hours"`
	Status        string    `db:"status"`
	MeetingLink   string    `db:"meeting_link"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (row appointmentRow) toAppointment() booking.Appointment {
	return booking.Appointment(row)
}

type appointmentRepository struct {
	db *sqlx.DB
}

var _ booking.Repository = (*appointmentRepository)(nil) // interface compliance check

func NewAppointmentRepository(db *sqlx.DB) booking.Repository {
	return &appointmentRepository{db: db}
}

func (repo *appointmentRepository) CreateAppointment(ctx context.Context, appt booking.Appointment) (booking.Appointment, error) {
	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	query := `
INSERT INTO appointment (id, student_id, student_name, student_email, student_phone, teacher_name, teacher_email, teacher_phone,
                         starts_at, duration_hours, status, meeting_link, created_at, updated_at)
VALUES (:id, :student_id, :student_name, :student_email, :student_phone, :teacher_name, :teacher_email, :teacher_phone,
        :starts_at, :duration_hours, :status, :meeting_link, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, appointmentRow(appt)); err != nil {
		return booking.Appointment{}, err
	}
	return appt, nil
}

func (repo *appointmentRepository) QueryAppointments(ctx context.Context, filter *booking.QueryFilter, ordering []core.DBOrdering) ([]booking.Appointment, error) {
	query := `SELECT * FROM appointment WHERE 1=1`
	var args []interface{}

	if filter != nil {
		if filter.StudentID != "" {
			args = append(args, filter.StudentID)
			query += ` AND student_id = $` + strconv.Itoa(len(args))
		}
		if filter.Status != "" {
			args = append(args, filter.Status)
			query += ` AND status = $` + strconv.Itoa(len(args))
		}
		if !filter.From.IsZero() {
			args = append(args, filter.From.UTC())
			query += ` AND starts_at >= $` + strconv.Itoa(len(args))
		}
		if !filter.To.IsZero() {
			args = append(args, filter.To.UTC())
			query += ` AND starts_at < $` + strconv.Itoa(len(args))
		}
	}
	query += orderingClause(ordering)

	var rows []appointmentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	appointments := make([]booking.Appointment, 0, len(rows))
	for _, row := range rows {
		appointments = append(appointments, row.toAppointment())
	}
	return appointments, nil
}

func (repo *appointmentRepository) GetAppointment(ctx context.Context, id string) (booking.Appointment, error) {
	var row appointmentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM appointment WHERE id = $1`, id); err != nil {
		return booking.Appointment{}, trapNoRowsErr(err, booking.ErrNotFound)
	}
	return row.toAppointment(), nil
}

func (repo *appointmentRepository) UpdateAppointment(ctx context.Context, appt booking.Appointment) (booking.Appointment, error) {
	query := `
UPDATE appointment
SET starts_at = :starts_at, duration_hours = :duration_hours, status = :status, meeting_link = :meeting_link, updated_at = :updated_at
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, appointmentRow(appt))
	if err != nil {
		return booking.Appointment{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return booking.Appointment{}, booking.ErrNotFound
	}
	return appt, nil
}

func (repo *appointmentRepository) DeleteAppointmentsByID(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders, args := inArgs(ids, 1)
	res, err := repo.db.ExecContext(ctx, `DELETE FROM appointment WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
