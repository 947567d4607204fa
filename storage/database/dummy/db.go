package dummydb

import (
	"sync"

	"github.com/trezcool/madrasa/core/approval"
	"github.com/trezcool/madrasa/core/booking"
	"github.com/trezcool/madrasa/core/bundle"
	"github.com/trezcool/madrasa/core/course"
	"github.com/trezcool/madrasa/core/opinion"
	"github.com/trezcool/madrasa/core/user"
)

type (
	DB struct {
		user        *userTable
		approval    *approvalTable
		appointment *appointmentTable
		pack        *packageTable
		purchase    *purchaseTable
		course      *courseTable
		lesson      *lessonTable
		enrollment  *enrollmentTable
		opinion     *opinionTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}
	approvalTable struct {
		sync.RWMutex
		table map[string]*approval.Approval
	}
	appointmentTable struct {
		sync.RWMutex
		table map[string]*booking.Appointment
	}
	packageTable struct {
		sync.RWMutex
		table map[string]*bundle.Package
	}
	purchaseTable struct {
		sync.RWMutex
		table map[string]*bundle.Purchase
	}
	courseTable struct {
		sync.RWMutex
		table map[string]*course.Course
	}
	lessonTable struct {
		sync.RWMutex
		table map[string]*course.Lesson
	}
	enrollmentTable struct {
		sync.RWMutex
		table map[string]*course.Enrollment
	}
	opinionTable struct {
		sync.RWMutex
		table map[string]*opinion.Opinion
	}
)

// Reset empties all tables; the test suites call it between runs.
func (db *DB) Reset() {
	db.user.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.Unlock()

	db.approval.Lock()
	db.approval.table = make(map[string]*approval.Approval)
	db.approval.Unlock()

	db.appointment.Lock()
	db.appointment.table = make(map[string]*booking.Appointment)
	db.appointment.Unlock()

	db.pack.Lock()
	db.pack.table = make(map[string]*bundle.Package)
	db.pack.Unlock()

	db.purchase.Lock()
	db.purchase.table = make(map[string]*bundle.Purchase)
	db.purchase.Unlock()

	db.course.Lock()
	db.course.table = make(map[string]*course.Course)
	db.course.Unlock()

	db.lesson.Lock()
	db.lesson.table = make(map[string]*course.Lesson)
	db.lesson.Unlock()

	db.enrollment.Lock()
	db.enrollment.table = make(map[string]*course.Enrollment)
	db.enrollment.Unlock()

	db.opinion.Lock()
	db.opinion.table = make(map[string]*opinion.Opinion)
	db.opinion.Unlock()
}

func Open() (*DB, error) {
	db := &DB{
		user:        &userTable{table: make(map[string]*user.User)},
		approval:    &approvalTable{table: make(map[string]*approval.Approval)},
		appointment: &appointmentTable{table: make(map[string]*booking.Appointment)},
		pack:        &packageTable{table: make(map[string]*bundle.Package)},
		purchase:    &purchaseTable{table: make(map[string]*bundle.Purchase)},
		course:      &courseTable{table: make(map[string]*course.Course)},
		lesson:      &lessonTable{table: make(map[string]*course.Lesson)},
		enrollment:  &enrollmentTable{table: make(map[string]*course.Enrollment)},
		opinion:     &opinionTable{table: make(map[string]*opinion.Opinion)},
	}
	return db, nil
}
