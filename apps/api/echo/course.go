package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core/course"
	"github.com/trezcool/madrasa/core/user"
)

type courseApi struct {
	svc      course.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := courseApi{
		svc:      deps.CourseSvc,
		usrSvc:   deps.UserSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/courses", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create, teacherMiddleware())
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, teacherMiddleware())
	cg.DELETE("", api.destroyMultiple, teacherMiddleware())

	cg.GET("/:id/lessons", api.queryLessons)
	cg.POST("/:id/lessons", api.addLesson, teacherMiddleware())

	lg := g.Group("/lessons", jwt, teacherMiddleware())
	lg.PUT("/:id", api.updateLesson)
	lg.DELETE("", api.destroyLessons)

	eg := cg.Group("/:id/enrollments", teacherMiddleware())
	eg.POST("", api.grant)
	eg.GET("", api.queryEnrollments)
	eg.PUT("/:studentID", api.setEnrollmentStatus)
}

// Courses

func (api *courseApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	includeInactive := ctxUsr.IsTeacher() && ctx.QueryParam("include_inactive") == "true"

	courses, err := api.svc.QueryCourses(ctx.Request().Context(), includeInactive)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.CreateCourse(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.GetCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == course.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.UpdateCourse(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == course.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.DeleteCourses(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Lessons

// queryLessons returns the course content for enrolled students and teachers.
// A locked course responds 403 with the WhatsApp contact link; it is never
// disguised as an empty course.
func (api *courseApi) queryLessons(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	lessons, err := api.svc.QueryLessons(ctx.Request().Context(), ctx.Param("id"), ctxUsr)
	if err != nil {
		switch errors.Cause(err) {
		case course.ErrCourseNotFound:
			return errHttpNotFound
		case course.ErrNotEnrolled:
			crs, gErr := api.svc.GetCourse(ctx.Request().Context(), ctx.Param("id"))
			if gErr != nil {
				return errors.Wrap(gErr, "finding course by ID")
			}
			return ctx.JSON(http.StatusForbidden, LockedCourseResponse{
				Error:        course.ErrNotEnrolled.Error(),
				WhatsAppLink: api.svc.AccessLink(crs),
			})
		}
		return errors.Wrap(err, "querying lessons")
	}
	if lessons == nil {
		lessons = []course.Lesson{}
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api *courseApi) addLesson(ctx echo.Context) error {
	var data course.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	lsn, err := api.svc.AddLesson(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == course.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "adding lesson")
	}
	return ctx.JSON(http.StatusCreated, lsn)
}

func (api *courseApi) updateLesson(ctx echo.Context) error {
	var data course.UpdateLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLesson")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	lsn, err := api.svc.UpdateLesson(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == course.ErrLessonNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating lesson")
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (api *courseApi) destroyLessons(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.DeleteLessons(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting lessons")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Enrollments

func (api *courseApi) grant(ctx echo.Context) error {
	var data course.GrantEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GrantEnrollment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	enr, err := api.svc.Grant(ctx.Request().Context(), ctx.Param("id"), data, ctxUsr)
	if err != nil {
		if errors.Cause(err) == course.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "granting enrollment")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *courseApi) queryEnrollments(ctx echo.Context) error {
	enrollments, err := api.svc.QueryEnrollments(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	if enrollments == nil {
		enrollments = []course.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrollments)
}

func (api *courseApi) setEnrollmentStatus(ctx echo.Context) error {
	var data course.UpdateEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEnrollment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	enr, err := api.svc.SetEnrollmentStatus(ctx.Request().Context(), ctx.Param("id"), ctx.Param("studentID"), data)
	if err != nil {
		if errors.Cause(err) == course.ErrEnrollmentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating enrollment status")
	}
	return ctx.JSON(http.StatusOK, enr)
}

// LockedCourseResponse is the 403 payload for a course the student cannot open.
type LockedCourseResponse struct {
	Error        string `json:"error"`
	WhatsAppLink string `json:"whatsapp_link"`
}
