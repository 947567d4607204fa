package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/madrasa/core/booking"
	"github.com/trezcool/madrasa/core/bundle"
	"github.com/trezcool/madrasa/core/course"
	"github.com/trezcool/madrasa/core/user"
	dummydb "github.com/trezcool/madrasa/storage/database/dummy"
)

func ResetDB(t *testing.T, db *dummydb.DB) {
	t.Helper()
	db.Reset()
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	first, last, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	status := user.StatusActive
	if role == user.RolePending {
		status = user.StatusPendingApproval
	}
	usr := user.User{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Role:      role,
		Status:    status,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreatePurchase(
	t *testing.T,
	repo bundle.Repository,
	studentID, studentEmail, title string,
	hours, hoursUsed float64,
	active *bool,
) bundle.Purchase {
	now := time.Now().UTC()
	pur, err := repo.CreatePurchase(context.Background(), bundle.Purchase{
		StudentID:    studentID,
		StudentEmail: studentEmail,
		Title:        title,
		Hours:        hours,
		HoursUsed:    hoursUsed,
		Active:       active,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreatePurchase() failed: %v", err)
	}
	return pur
}

func CreateAppointment(
	t *testing.T,
	repo booking.Repository,
	studentID string,
	startsAt time.Time,
	durationHours float64,
	status string,
) booking.Appointment {
	now := time.Now().UTC()
	appt, err := repo.CreateAppointment(context.Background(), booking.Appointment{
		StudentID:     studentID,
		StartsAt:      startsAt.UTC(),
		DurationHours: durationHours,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("CreateAppointment() failed: %v", err)
	}
	return appt
}

func CreateCourse(t *testing.T, repo course.Repository, title string, active *bool) course.Course {
	now := time.Now().UTC()
	crs, err := repo.CreateCourse(context.Background(), course.Course{
		Title:     title,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreateLesson(t *testing.T, repo course.Repository, courseID, title string, order int, active *bool) course.Lesson {
	now := time.Now().UTC()
	lsn, err := repo.CreateLesson(context.Background(), course.Lesson{
		CourseID:  courseID,
		Title:     title,
		Order:     order,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateLesson() failed: %v", err)
	}
	return lsn
}

func CreateEnrollment(t *testing.T, repo course.Repository, courseID, studentID, studentEmail, status string) course.Enrollment {
	now := time.Now().UTC()
	id := course.EnrollmentID(studentID, courseID)
	if studentID == "" {
		id = course.EnrollmentID(studentEmail, courseID)
	}
	enr, err := repo.UpsertEnrollment(context.Background(), course.Enrollment{
		ID:           id,
		CourseID:     courseID,
		StudentID:    studentID,
		StudentEmail: studentEmail,
		Status:       status,
		GrantedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateEnrollment() failed: %v", err)
	}
	return enr
}
