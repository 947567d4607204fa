package course

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/user"
	wasvc "github.com/trezcool/madrasa/services/whatsapp"
)

var (
	// errors
	ErrCourseNotFound     = errors.New("course not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrNotEnrolled        = errors.New("you are not enrolled in this course")

	// WhatsApp access-request message (Arabic, opened from the locked screen)
	accessMsg = "مرحباً، أرغب بالحصول على صلاحية الوصول إلى دورة \"%s\"."
)

type (
	Repository interface {
		// courses
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		QueryCourses(ctx context.Context, ordering []core.DBOrdering) ([]Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids ...string) (int, error)

		// lessons, ordered by Lesson.Order
		CreateLesson(ctx context.Context, lsn Lesson) (Lesson, error)
		QueryLessons(ctx context.Context, courseID string) ([]Lesson, error)
		GetLesson(ctx context.Context, id string) (Lesson, error)
		UpdateLesson(ctx context.Context, lsn Lesson) (Lesson, error)
		DeleteLessonsByID(ctx context.Context, ids ...string) (int, error)

		// enrollments
		UpsertEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		// QueryEnrollments applies AND operation on available EnrollmentFilter fields.
		QueryEnrollments(ctx context.Context, filter *EnrollmentFilter) ([]Enrollment, error)
		GetEnrollment(ctx context.Context, id string) (Enrollment, error)
		UpdateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
	}

	Service interface {
		// catalog
		CreateCourse(ctx context.Context, nc NewCourse) (Course, error)
		QueryCourses(ctx context.Context, includeInactive bool) ([]Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		UpdateCourse(ctx context.Context, id string, uc UpdateCourse) (Course, error)
		DeleteCourses(ctx context.Context, ids ...string) error

		// lessons
		AddLesson(ctx context.Context, courseID string, nl NewLesson) (Lesson, error)
		QueryLessons(ctx context.Context, courseID string, usr user.User) ([]Lesson, error)
		UpdateLesson(ctx context.Context, id string, ul UpdateLesson) (Lesson, error)
		DeleteLessons(ctx context.Context, ids ...string) error

		// enrollments
		Grant(ctx context.Context, courseID string, ge GrantEnrollment, teacher user.User) (Enrollment, error)
		QueryEnrollments(ctx context.Context, courseID string) ([]Enrollment, error)
		SetEnrollmentStatus(ctx context.Context, courseID, studentID string, ue UpdateEnrollment) (Enrollment, error)
		AccessLink(crs Course) string
	}

	service struct {
		repo    Repository
		usrRepo user.Repository
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository, conf *core.Config) Service {
	return &service{
		repo:    repo,
		usrRepo: usrRepo,
		conf:    conf,
	}
}

// Catalog

func (svc *service) CreateCourse(ctx context.Context, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		Title:        nc.Title,
		Description:  nc.Description,
		Category:     nc.Category,
		ThumbnailURL: nc.ThumbnailURL,
		SyllabusURL:  nc.SyllabusURL,
		Active:       nc.Active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *service) QueryCourses(ctx context.Context, includeInactive bool) ([]Course, error) {
	courses, err := svc.repo.QueryCourses(ctx, []core.DBOrdering{{Field: "title", Ascending: true}})
	if err != nil {
		return nil, err
	}
	if includeInactive {
		return courses, nil
	}
	active := make([]Course, 0, len(courses))
	for i := range courses {
		if courses[i].IsActive() {
			active = append(active, courses[i])
		}
	}
	return active, nil
}

func (svc *service) GetCourse(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *service) UpdateCourse(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if uc.Title != "" {
		crs.Title = uc.Title
	}
	if uc.Description != "" {
		crs.Description = uc.Description
	}
	if uc.Category != "" {
		crs.Category = uc.Category
	}
	if uc.ThumbnailURL != "" {
		crs.ThumbnailURL = uc.ThumbnailURL
	}
	if uc.SyllabusURL != "" {
		crs.SyllabusURL = uc.SyllabusURL
	}
	if uc.Active != nil {
		crs.Active = uc.Active
	}
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *service) DeleteCourses(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteCoursesByID(ctx, ids...)
	return err
}

// Lessons

func (svc *service) AddLesson(ctx context.Context, courseID string, nl NewLesson) (Lesson, error) {
	if _, err := svc.repo.GetCourse(ctx, courseID); err != nil {
		return Lesson{}, err
	}
	now := time.Now().UTC()
	lsn := Lesson{
		CourseID:     courseID,
		Title:        nl.Title,
		Order:        nl.Order,
		DurationMins: nl.DurationMins,
		VideoFileID:  nl.VideoFileID,
		Active:       nl.Active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateLesson(ctx, lsn)
}

// QueryLessons gates lesson access: teachers see everything, a student needs
// an active enrollment for this exact course. Anything else is ErrNotEnrolled;
// the course is never silently shown as empty.
func (svc *service) QueryLessons(ctx context.Context, courseID string, usr user.User) ([]Lesson, error) {
	if _, err := svc.repo.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}

	if !usr.IsTeacher() {
		enrolled, err := svc.isEnrolled(ctx, courseID, usr)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, ErrNotEnrolled
		}
	}

	lessons, err := svc.repo.QueryLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if usr.IsTeacher() {
		return lessons, nil
	}
	active := make([]Lesson, 0, len(lessons))
	for i := range lessons {
		if lessons[i].IsActive() {
			active = append(active, lessons[i])
		}
	}
	return active, nil
}

// isEnrolled checks the composite-id row first, then falls back to legacy
// rows keyed by the student's email.
func (svc *service) isEnrolled(ctx context.Context, courseID string, usr user.User) (bool, error) {
	enr, err := svc.repo.GetEnrollment(ctx, EnrollmentID(usr.ID, courseID))
	if err == nil {
		return enr.IsActive(), nil
	}
	if err != ErrEnrollmentNotFound {
		return false, pkgerrors.Wrap(err, "finding enrollment")
	}

	legacy, err := svc.repo.QueryEnrollments(ctx, &EnrollmentFilter{CourseID: courseID, StudentEmail: usr.Email})
	if err != nil {
		return false, pkgerrors.Wrap(err, "finding legacy enrollments")
	}
	for i := range legacy {
		if legacy[i].IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (svc *service) UpdateLesson(ctx context.Context, id string, ul UpdateLesson) (Lesson, error) {
	lsn, err := svc.repo.GetLesson(ctx, id)
	if err != nil {
		return Lesson{}, err
	}
	if ul.Title != "" {
		lsn.Title = ul.Title
	}
	if ul.Order != nil {
		lsn.Order = *ul.Order
	}
	if ul.DurationMins != nil {
		lsn.DurationMins = *ul.DurationMins
	}
	if ul.VideoFileID != "" {
		lsn.VideoFileID = ul.VideoFileID
	}
	if ul.Active != nil {
		lsn.Active = ul.Active
	}
	lsn.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateLesson(ctx, lsn)
}

func (svc *service) DeleteLessons(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteLessonsByID(ctx, ids...)
	return err
}

// Enrollments

// Grant upserts the composite-id row; re-granting a revoked enrollment
// reactivates it.
func (svc *service) Grant(ctx context.Context, courseID string, ge GrantEnrollment, teacher user.User) (Enrollment, error) {
	if _, err := svc.repo.GetCourse(ctx, courseID); err != nil {
		return Enrollment{}, err
	}
	stu, err := svc.usrRepo.GetUser(ctx, user.GetFilter{ID: ge.StudentID})
	if err != nil {
		return Enrollment{}, pkgerrors.Wrap(err, "finding student")
	}

	now := time.Now().UTC()
	enr := Enrollment{
		ID:           EnrollmentID(stu.ID, courseID),
		CourseID:     courseID,
		StudentID:    stu.ID,
		StudentEmail: stu.Email,
		Status:       EnrollmentActive,
		GrantedBy:    teacher.ID,
		GrantedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.UpsertEnrollment(ctx, enr)
}

func (svc *service) QueryEnrollments(ctx context.Context, courseID string) ([]Enrollment, error) {
	return svc.repo.QueryEnrollments(ctx, &EnrollmentFilter{CourseID: courseID})
}

func (svc *service) SetEnrollmentStatus(ctx context.Context, courseID, studentID string, ue UpdateEnrollment) (Enrollment, error) {
	enr, err := svc.repo.GetEnrollment(ctx, EnrollmentID(studentID, courseID))
	if err != nil {
		return Enrollment{}, err
	}
	enr.Status = ue.Status
	enr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEnrollment(ctx, enr)
}

// AccessLink builds the WhatsApp deep link shown with the locked response.
func (svc *service) AccessLink(crs Course) string {
	return wasvc.Link(svc.conf.ContactPhoneNumber, fmt.Sprintf(accessMsg, crs.Title))
}
