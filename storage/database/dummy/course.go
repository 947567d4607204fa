package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/course"
)

type courseRepository struct {
	courses     *courseTable
	lessons     *lessonTable
	enrollments *enrollmentTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{courses: db.course, lessons: db.lesson, enrollments: db.enrollment}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.courses.Lock()
	defer repo.courses.Unlock()

	if crs.ID == "" {
		crs.ID = uuid.New().String()
	}
	repo.courses.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context, ordering []core.DBOrdering) ([]course.Course, error) {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	courses := make([]course.Course, 0, len(repo.courses.table))
	for _, crs := range repo.courses.table {
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Title < courses[j].Title })
	return courses, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	if crs, ok := repo.courses.table[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrCourseNotFound
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.courses.Lock()
	defer repo.courses.Unlock()

	if _, ok := repo.courses.table[crs.ID]; !ok {
		return course.Course{}, course.ErrCourseNotFound
	}
	repo.courses.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) (int, error) {
	repo.courses.Lock()
	defer repo.courses.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.courses.table[id]; ok {
			delete(repo.courses.table, id)
			n++
		}
	}
	return n, nil
}

func (repo *courseRepository) CreateLesson(ctx context.Context, lsn course.Lesson) (course.Lesson, error) {
	repo.lessons.Lock()
	defer repo.lessons.Unlock()

	if lsn.ID == "" {
		lsn.ID = uuid.New().String()
	}
	repo.lessons.table[lsn.ID] = &lsn
	return lsn, nil
}

func (repo *courseRepository) QueryLessons(ctx context.Context, courseID string) ([]course.Lesson, error) {
	repo.lessons.RLock()
	defer repo.lessons.RUnlock()

	lessons := make([]course.Lesson, 0)
	for _, lsn := range repo.lessons.table {
		if lsn.CourseID == courseID {
			lessons = append(lessons, *lsn)
		}
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].Order < lessons[j].Order })
	return lessons, nil
}

func (repo *courseRepository) GetLesson(ctx context.Context, id string) (course.Lesson, error) {
	repo.lessons.RLock()
	defer repo.lessons.RUnlock()

	if lsn, ok := repo.lessons.table[id]; ok {
		return *lsn, nil
	}
	return course.Lesson{}, course.ErrLessonNotFound
}

func (repo *courseRepository) UpdateLesson(ctx context.Context, lsn course.Lesson) (course.Lesson, error) {
	repo.lessons.Lock()
	defer repo.lessons.Unlock()

	if _, ok := repo.lessons.table[lsn.ID]; !ok {
		return course.Lesson{}, course.ErrLessonNotFound
	}
	repo.lessons.table[lsn.ID] = &lsn
	return lsn, nil
}

func (repo *courseRepository) DeleteLessonsByID(ctx context.Context, ids ...string) (int, error) {
	repo.lessons.Lock()
	defer repo.lessons.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.lessons.table[id]; ok {
			delete(repo.lessons.table, id)
			n++
		}
	}
	return n, nil
}

func (repo *courseRepository) UpsertEnrollment(ctx context.Context, enr course.Enrollment) (course.Enrollment, error) {
	repo.enrollments.Lock()
	defer repo.enrollments.Unlock()

	repo.enrollments.table[enr.ID] = &enr
	return enr, nil
}

func (repo *courseRepository) QueryEnrollments(ctx context.Context, filter *course.EnrollmentFilter) ([]course.Enrollment, error) {
	repo.enrollments.RLock()
	defer repo.enrollments.RUnlock()

	enrollments := make([]course.Enrollment, 0)
	for _, enr := range repo.enrollments.table {
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
		enrollments = append(enrollments, *enr)
	}

	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].GrantedAt.After(enrollments[j].GrantedAt) })
	return enrollments, nil
}

func (repo *courseRepository) GetEnrollment(ctx context.Context, id string) (course.Enrollment, error) {
	repo.enrollments.RLock()
	defer repo.enrollments.RUnlock()

	if enr, ok := repo.enrollments.table[id]; ok {
		return *enr, nil
	}
	return course.Enrollment{}, course.ErrEnrollmentNotFound
}

func (repo *courseRepository) UpdateEnrollment(ctx context.Context, enr course.Enrollment) (course.Enrollment, error) {
	repo.enrollments.Lock()
	defer repo.enrollments.Unlock()

	if _, ok := repo.enrollments.table[enr.ID]; !ok {
		return course.Enrollment{}, course.ErrEnrollmentNotFound
	}
	repo.enrollments.table[enr.ID] = &enr
	return enr, nil
}
