package sqlxrepos

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/course"
)

type courseRow struct {
	ID           string    `db:"id"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	Category     string    `db:"category"`
	ThumbnailURL string    `db:"thumbnail_url"`
	SyllabusURL  string    `db:"syllabus_url"`
	IsActive     null.Bool `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row courseRow) toCourse() course.Course {
	return course.Course{
		ID:           row.ID,
		Title:        row.Title,
		Description:  row.Description,
		Category:     row.Category,
		ThumbnailURL: row.ThumbnailURL,
		SyllabusURL:  row.SyllabusURL,
		Active:       row.IsActive.Ptr(),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func toCourseRow(crs course.Course) courseRow {
	return courseRow{
		ID:           crs.ID,
		Title:        crs.Title,
		Description:  crs.Description,
		Category:     crs.Category,
		ThumbnailURL: crs.ThumbnailURL,
		SyllabusURL:  crs.SyllabusURL,
		IsActive:     null.BoolFromPtr(crs.Active),
		CreatedAt:    crs.CreatedAt,
		UpdatedAt:    crs.UpdatedAt,
	}
}

type lessonRow struct {
	ID           string    `db:"id"`
	CourseID     string    `db:"course_id"`
	Title        string    `db:"title"`
	Order        int       `db:"order"`
	DurationMins int       `db:"duration_mins"`
	VideoFileID  string    `db:"video_file_id"`
	IsActive     null.Bool `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row lessonRow) toLesson() course.Lesson {
	return course.Lesson{
		ID:           row.ID,
		CourseID:     row.CourseID,
		Title:        row.Title,
		Order:        row.Order,
		DurationMins: row.DurationMins,
		VideoFileID:  row.VideoFileID,
		Active:       row.IsActive.Ptr(),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func toLessonRow(lsn course.Lesson) lessonRow {
	return lessonRow{
		ID:           lsn.ID,
		CourseID:     lsn.CourseID,
		Title:        lsn.Title,
		Order:        lsn.Order,
		DurationMins: lsn.DurationMins,
		VideoFileID:  lsn.VideoFileID,
		IsActive:     null.BoolFromPtr(lsn.Active),
		CreatedAt:    lsn.CreatedAt,
		UpdatedAt:    lsn.UpdatedAt,
	}
}

type enrollmentRow struct {
	ID           string    `db:"id"`
	CourseID     string    `db:"course_id"`
	StudentID    string    `db:"student_id"`
	StudentEmail string    `db:"student_email"`
	Status       string    `db:"status"`
	GrantedBy    string    `db:"granted_by"`
	GrantedAt    time.Time `db:"granted_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row enrollmentRow) toEnrollment() course.Enrollment {
	return course.Enrollment(row)
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	if crs.ID == "" {
		crs.ID = uuid.New().String()
	}
	query := `
INSERT INTO course (id, title, description, category, thumbnail_url, syllabus_url, is_active, created_at, updated_at)
VALUES (:id, :title, :description, :category, :thumbnail_url, :syllabus_url, :is_active, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, toCourseRow(crs)); err != nil {
		return course.Course{}, err
	}
	return crs, nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context, ordering []core.DBOrdering) ([]course.Course, error) {
	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM course`+orderingClause(ordering)); err != nil {
		return nil, err
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCourse())
	}
	return courses, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrCourseNotFound)
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	query := `
UPDATE course
SET title = :title, description = :description, category = :category, thumbnail_url = :thumbnail_url,
    syllabus_url = :syllabus_url, is_active = :is_active, updated_at = :updated_at
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, toCourseRow(crs))
	if err != nil {
		return course.Course{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrCourseNotFound
	}
	return crs, nil
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders, args := inArgs(ids, 1)
	res, err := repo.db.ExecContext(ctx, `DELETE FROM course WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (repo *courseRepository) CreateLesson(ctx context.Context, lsn course.Lesson) (course.Lesson, error) {
	if lsn.ID == "" {
		lsn.ID = uuid.New().String()
	}
	query := `
INSERT INTO lesson (id, course_id, title, "order", duration_mins, video_file_id, is_active, created_at, updated_at)
VALUES (:id, :course_id, :title, :order, :duration_mins, :video_file_id, :is_active, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, toLessonRow(lsn)); err != nil {
		return course.Lesson{}, err
	}
	return lsn, nil
}

func (repo *courseRepository) QueryLessons(ctx context.Context, courseID string) ([]course.Lesson, error) {
	var rows []lessonRow
	query := `SELECT * FROM lesson WHERE course_id = $1 ORDER BY "order" ASC, created_at ASC`
	if err := repo.db.SelectContext(ctx, &rows, query, courseID); err != nil {
		return nil, err
	}
	lessons := make([]course.Lesson, 0, len(rows))
	for _, row := range rows {
		lessons = append(lessons, row.toLesson())
	}
	return lessons, nil
}

func (repo *courseRepository) GetLesson(ctx context.Context, id string) (course.Lesson, error) {
	var row lessonRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM lesson WHERE id = $1`, id); err != nil {
		return course.Lesson{}, trapNoRowsErr(err, course.ErrLessonNotFound)
	}
	return row.toLesson(), nil
}

func (repo *courseRepository) UpdateLesson(ctx context.Context, lsn course.Lesson) (course.Lesson, error) {
	query := `
UPDATE lesson
SET title = :title, "order" = :order, duration_mins = :duration_mins, video_file_id = :video_file_id,
    is_active = :is_active, updated_at = :updated_at
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, toLessonRow(lsn))
	if err != nil {
		return course.Lesson{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Lesson{}, course.ErrLessonNotFound
	}
	return lsn, nil
}

func (repo *courseRepository) DeleteLessonsByID(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders, args := inArgs(ids, 1)
	res, err := repo.db.ExecContext(ctx, `DELETE FROM lesson WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (repo *courseRepository) UpsertEnrollment(ctx context.Context, enr course.Enrollment) (course.Enrollment, error) {
	query := `
INSERT INTO enrollment (id, course_id, student_id, student_email, status, granted_by, granted_at, updated_at)
VALUES (:id, :course_id, :student_id, :student_email, :status, :granted_by, :granted_at, :updated_at)
ON CONFLICT (id) DO UPDATE
SET student_email = EXCLUDED.student_email, status = EXCLUDED.status, granted_by = EXCLUDED.granted_by,
    updated_at = EXCLUDED.updated_at`
	if _, err := repo.db.NamedExecContext(ctx, query, enrollmentRow(enr)); err != nil {
		return course.Enrollment{}, err
	}
	return enr, nil
}

func (repo *courseRepository) QueryEnrollments(ctx context.Context, filter *course.EnrollmentFilter) ([]course.Enrollment, error) {
	query := `SELECT * FROM enrollment WHERE 1=1`
	var args []interface{}

	if filter != nil {
		if filter.CourseID != "" {
			args = append(args, filter.CourseID)
			query += ` AND course_id = $` + strconv.Itoa(len(args))
		}
		if filter.StudentID != "" {
			args = append(args, filter.StudentID)
			query += ` AND student_id = $` + strconv.Itoa(len(args))
		}
		if filter.StudentEmail != "" {
			args = append(args, filter.StudentEmail)
			query += ` AND student_email = $` + strconv.Itoa(len(args))
		}
	}
	query += ` ORDER BY granted_at DESC`

	var rows []enrollmentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	enrollments := make([]course.Enrollment, 0, len(rows))
	for _, row := range rows {
		enrollments = append(enrollments, row.toEnrollment())
	}
	return enrollments, nil
}

func (repo *courseRepository) GetEnrollment(ctx context.Context, id string) (course.Enrollment, error) {
	var row enrollmentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM enrollment WHERE id = $1`, id); err != nil {
		return course.Enrollment{}, trapNoRowsErr(err, course.ErrEnrollmentNotFound)
	}
	return row.toEnrollment(), nil
}

func (repo *courseRepository) UpdateEnrollment(ctx context.Context, enr course.Enrollment) (course.Enrollment, error) {
	query := `
UPDATE enrollment
SET status = :status, updated_at = :updated_at
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, enrollmentRow(enr))
	if err != nil {
		return course.Enrollment{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Enrollment{}, course.ErrEnrollmentNotFound
	}
	return enr, nil
}
