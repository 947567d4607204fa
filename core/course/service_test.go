package course

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/user"
)

type courseRepoMock struct {
	courses     []Course
	lessons     []Lesson
	enrollments map[string]Enrollment
}

var _ Repository = (*courseRepoMock)(nil)

func newCourseRepoMock() *courseRepoMock {
	return &courseRepoMock{enrollments: make(map[string]Enrollment)}
}

func (r *courseRepoMock) CreateCourse(_ context.Context, crs Course) (Course, error) {
	if crs.ID == "" {
		crs.ID = "crs" + strconv.Itoa(len(r.courses)+1)
	}
	r.courses = append(r.courses, crs)
	return crs, nil
}

func (r *courseRepoMock) QueryCourses(context.Context, []core.DBOrdering) ([]Course, error) {
	return append([]Course(nil), r.courses...), nil
}

func (r *courseRepoMock) GetCourse(_ context.Context, id string) (Course, error) {
	for _, crs := range r.courses {
		if crs.ID == id {
			return crs, nil
		}
	}
	return Course{}, ErrCourseNotFound
}

func (r *courseRepoMock) UpdateCourse(_ context.Context, crs Course) (Course, error) {
	for i := range r.courses {
		if r.courses[i].ID == crs.ID {
			r.courses[i] = crs
			return crs, nil
		}
	}
	return Course{}, ErrCourseNotFound
}

func (r *courseRepoMock) DeleteCoursesByID(_ context.Context, ids ...string) (int, error) {
	var n int
	for _, id := range ids {
		for i := range r.courses {
			if r.courses[i].ID == id {
				r.courses = append(r.courses[:i], r.courses[i+1:]...)
				n++
				break
			}
		}
	}
	return n, nil
}

func (r *courseRepoMock) CreateLesson(_ context.Context, lsn Lesson) (Lesson, error) {
	if lsn.ID == "" {
		lsn.ID = "lsn" + strconv.Itoa(len(r.lessons)+1)
	}
	r.lessons = append(r.lessons, lsn)
	return lsn, nil
}

func (r *courseRepoMock) QueryLessons(_ context.Context, courseID string) ([]Lesson, error) {
	res := make([]Lesson, 0)
	for _, lsn := range r.lessons {
		if lsn.CourseID == courseID {
			res = append(res, lsn)
		}
	}
	return res, nil
}

func (r *courseRepoMock) GetLesson(_ context.Context, id string) (Lesson, error) {
	for _, lsn := range r.lessons {
		if lsn.ID == id {
			return lsn, nil
		}
	}
	return Lesson{}, ErrLessonNotFound
}

func (r *courseRepoMock) UpdateLesson(_ context.Context, lsn Lesson) (Lesson, error) {
	for i := range r.lessons {
		if r.lessons[i].ID == lsn.ID {
			r.lessons[i] = lsn
			return lsn, nil
		}
	}
	return Lesson{}, ErrLessonNotFound
}

func (r *courseRepoMock) DeleteLessonsByID(_ context.Context, ids ...string) (int, error) {
	var n int
	for _, id := range ids {
		for i := range r.lessons {
			if r.lessons[i].ID == id {
				r.lessons = append(r.lessons[:i], r.lessons[i+1:]...)
				n++
				break
			}
		}
	}
	return n, nil
}

func (r *courseRepoMock) UpsertEnrollment(_ context.Context, enr Enrollment) (Enrollment, error) {
	r.enrollments[enr.ID] = enr
	return enr, nil
}

func (r *courseRepoMock) QueryEnrollments(_ context.Context, filter *EnrollmentFilter) ([]Enrollment, error) {
	res := make([]Enrollment, 0)
	for _, enr := range r.enrollments {
		if filter != nil {
			if filter.CourseID != "" && enr.CourseID != filter.CourseID {
				continue
			}
			if filter.StudentID != "" && enr.StudentID != filter.StudentID {
				continue
			}
			if filter.StudentEmail != "" && enr.StudentEmail != filter.StudentEmail {
				continue
			}
		}
		res = append(res, enr)
	}
	return res, nil
}

func (r *courseRepoMock) GetEnrollment(_ context.Context, id string) (Enrollment, error) {
	if enr, ok := r.enrollments[id]; ok {
		return enr, nil
	}
	return Enrollment{}, ErrEnrollmentNotFound
}

func (r *courseRepoMock) UpdateEnrollment(_ context.Context, enr Enrollment) (Enrollment, error) {
	if _, ok := r.enrollments[enr.ID]; !ok {
		return Enrollment{}, ErrEnrollmentNotFound
	}
	r.enrollments[enr.ID] = enr
	return enr, nil
}

type usrRepoMock struct {
	users []user.User
}

var _ user.Repository = (*usrRepoMock)(nil)

func (r *usrRepoMock) CheckEmailUniqueness(context.Context, string, ...user.User) error { return nil }
func (r *usrRepoMock) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	r.users = append(r.users, usr)
	return usr, nil
}
func (r *usrRepoMock) QueryUsers(context.Context, *user.QueryFilter, []core.DBOrdering) ([]user.User, error) {
	return append([]user.User(nil), r.users...), nil
}
func (r *usrRepoMock) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	for _, usr := range r.users {
		if (filter.ID != "" && usr.ID == filter.ID) || (filter.Email != "" && usr.Email == filter.Email) {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}
func (r *usrRepoMock) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	return usr, nil
}
func (r *usrRepoMock) UpdateOrCreateUser(_ context.Context, usr user.User) (user.User, error) {
	return usr, nil
}
func (r *usrRepoMock) DeleteUsersByID(context.Context, ...string) (int, error) { return 0, nil }

func TestService_QueryLessons(t *testing.T) {
	ctx := context.Background()
	repo := newCourseRepoMock()

	teacher := user.User{ID: "t1", Email: "tea@test.cd", Role: user.RoleTeacher}
	enrolled := user.User{ID: "stu1", Email: "stu1@test.cd", Role: user.RoleStudent}
	revoked := user.User{ID: "stu2", Email: "stu2@test.cd", Role: user.RoleStudent}
	stranger := user.User{ID: "stu3", Email: "stu3@test.cd", Role: user.RoleStudent}
	legacy := user.User{ID: "stu4", Email: "old@test.cd", Role: user.RoleStudent}

	usrRepo := &usrRepoMock{users: []user.User{teacher, enrolled, revoked, stranger, legacy}}
	svc := NewService(repo, usrRepo, &core.Config{ContactPhoneNumber: "+243123456789"})

	crs, err := svc.CreateCourse(ctx, NewCourse{Title: "Hebrew 101"})
	if err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}
	inactive := false
	if _, err = svc.AddLesson(ctx, crs.ID, NewLesson{Title: "Alphabet", Order: 1}); err != nil {
		t.Fatalf("AddLesson() error = %v", err)
	}
	if _, err = svc.AddLesson(ctx, crs.ID, NewLesson{Title: "Draft", Order: 2, Active: &inactive}); err != nil {
		t.Fatalf("AddLesson() error = %v", err)
	}

	if _, err = svc.Grant(ctx, crs.ID, GrantEnrollment{StudentID: enrolled.ID}, teacher); err != nil {
		t.Fatalf("Grant() error = %v", err)
	}
	if _, err = svc.Grant(ctx, crs.ID, GrantEnrollment{StudentID: revoked.ID}, teacher); err != nil {
		t.Fatalf("Grant() error = %v", err)
	}
	if _, err = svc.SetEnrollmentStatus(ctx, crs.ID, revoked.ID, UpdateEnrollment{Status: EnrollmentRevoked}); err != nil {
		t.Fatalf("SetEnrollmentStatus() error = %v", err)
	}
	// historic row keyed by email only
	if _, err = repo.UpsertEnrollment(ctx, Enrollment{
		ID:           EnrollmentID(legacy.Email, crs.ID),
		CourseID:     crs.ID,
		StudentEmail: legacy.Email,
		Status:       EnrollmentActive,
		GrantedAt:    time.Now().UTC(),
	}); err != nil {
		t.Fatalf("UpsertEnrollment() error = %v", err)
	}

	tests := []struct {
		name        string
		usr         user.User
		wantLessons int
		wantErr     error
	}{
		{name: "active enrollment sees active lessons", usr: enrolled, wantLessons: 1},
		{name: "teacher bypasses the gate and sees drafts", usr: teacher, wantLessons: 2},
		{name: "revoked enrollment is locked out", usr: revoked, wantErr: ErrNotEnrolled},
		{name: "no enrollment is locked out", usr: stranger, wantErr: ErrNotEnrolled},
		{name: "legacy email-keyed enrollment still grants access", usr: legacy, wantLessons: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lessons, err := svc.QueryLessons(ctx, crs.ID, tt.usr)
			if err != tt.wantErr {
				t.Fatalf("QueryLessons() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if lessons != nil {
					t.Errorf("QueryLessons() = %v, want nil on lockout", lessons)
				}
				return
			}
			if len(lessons) != tt.wantLessons {
				t.Errorf("QueryLessons() returned %d lessons, want %d", len(lessons), tt.wantLessons)
			}
		})
	}

	t.Run("unknown course", func(t *testing.T) {
		if _, err := svc.QueryLessons(ctx, "nope", teacher); err != ErrCourseNotFound {
			t.Errorf("QueryLessons() error = %v, want %v", err, ErrCourseNotFound)
		}
	})
}

func TestService_Grant_reGrantReactivates(t *testing.T) {
	ctx := context.Background()
	repo := newCourseRepoMock()

	teacher := user.User{ID: "t1", Email: "tea@test.cd", Role: user.RoleTeacher}
	stu := user.User{ID: "stu1", Email: "stu1@test.cd", Role: user.RoleStudent}
	usrRepo := &usrRepoMock{users: []user.User{teacher, stu}}
	svc := NewService(repo, usrRepo, &core.Config{})

	crs, err := svc.CreateCourse(ctx, NewCourse{Title: "Arabic 101"})
	if err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}

	enr, err := svc.Grant(ctx, crs.ID, GrantEnrollment{StudentID: stu.ID}, teacher)
	if err != nil {
		t.Fatalf("Grant() error = %v", err)
	}
	if enr.ID != EnrollmentID(stu.ID, crs.ID) {
		t.Errorf("Grant() ID = %q, want %q", enr.ID, EnrollmentID(stu.ID, crs.ID))
	}
	if enr.GrantedBy != teacher.ID {
		t.Errorf("Grant() GrantedBy = %q, want %q", enr.GrantedBy, teacher.ID)
	}

	if _, err = svc.SetEnrollmentStatus(ctx, crs.ID, stu.ID, UpdateEnrollment{Status: EnrollmentRevoked}); err != nil {
		t.Fatalf("SetEnrollmentStatus() error = %v", err)
	}
	if _, err = svc.Grant(ctx, crs.ID, GrantEnrollment{StudentID: stu.ID}, teacher); err != nil {
		t.Fatalf("Grant() error = %v", err)
	}

	enrs, err := svc.QueryEnrollments(ctx, crs.ID)
	if err != nil {
		t.Fatalf("QueryEnrollments() error = %v", err)
	}
	if len(enrs) != 1 {
		t.Fatalf("QueryEnrollments() returned %d enrollments, want 1", len(enrs))
	}
	if !enrs[0].IsActive() {
		t.Error("re-granted enrollment should be active again")
	}

	t.Run("unknown student", func(t *testing.T) {
		_, err := svc.Grant(ctx, crs.ID, GrantEnrollment{StudentID: "nope"}, teacher)
		if err == nil {
			t.Fatal("Grant() error = nil, want error")
		}
	})
}

func TestService_AccessLink(t *testing.T) {
	svc := NewService(newCourseRepoMock(), &usrRepoMock{}, &core.Config{ContactPhoneNumber: "+243 123 456 789"})

	link := svc.AccessLink(Course{Title: "Hebrew 101"})
	if !strings.HasPrefix(link, "https://wa.me/243123456789?text=") {
		t.Errorf("AccessLink() = %q, want wa.me link", link)
	}
	if !strings.Contains(link, "Hebrew+101") && !strings.Contains(link, "Hebrew%20101") {
		t.Errorf("AccessLink() = %q, does not mention the course", link)
	}
}
