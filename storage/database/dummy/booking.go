package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/booking"
)

type appointmentRepository struct {
	db *appointmentTable
}

var _ booking.Repository = (*appointmentRepository)(nil) // interface compliance check

func NewAppointmentRepository(db *DB) booking.Repository {
	return &appointmentRepository{db: db.appointment}
}

func (repo *appointmentRepository) CreateAppointment(ctx context.Context, appt booking.Appointment) (booking.Appointment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	repo.db.table[appt.ID] = &appt
	return appt, nil
}

func (repo *appointmentRepository) QueryAppointments(ctx context.Context, filter *booking.QueryFilter, ordering []core.DBOrdering) ([]booking.Appointment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	appointments := make([]booking.Appointment, 0, len(repo.db.table))
	for _, appt := range repo.db.table {
		if filter != nil {
			if filter.StudentID != "" && appt.StudentID != filter.StudentID {
				continue
			}
			if filter.Status != "" && appt.Status != filter.Status {
				continue
			}
			if !filter.From.IsZero() && appt.StartsAt.Before(filter.From.UTC()) {
				continue
			}
			if !filter.To.IsZero() && !appt.StartsAt.Before(filter.To.UTC()) {
				continue
			}
		}
		appointments = append(appointments, *appt)
	}

	sort.Slice(appointments, func(i, j int) bool { return appointments[i].StartsAt.Before(appointments[j].StartsAt) })
	return appointments, nil
}

func (repo *appointmentRepository) GetAppointment(ctx context.Context, id string) (booking.Appointment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if appt, ok := repo.db.table[id]; ok {
		return *appt, nil
	}
	return booking.Appointment{}, booking.ErrNotFound
}

func (repo *appointmentRepository) UpdateAppointment(ctx context.Context, appt booking.Appointment) (booking.Appointment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[appt.ID]; !ok {
		return booking.Appointment{}, booking.ErrNotFound
	}
	repo.db.table[appt.ID] = &appt
	return appt, nil
}

func (repo *appointmentRepository) DeleteAppointmentsByID(ctx context.Context, ids ...string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			n++
		}
	}
	return n, nil
}
