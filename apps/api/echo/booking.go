package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core/booking"
	"github.com/trezcool/madrasa/core/user"
)

type bookingApi struct {
	svc      booking.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerBookingAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := bookingApi{
		svc:      deps.BookingSvc,
		usrSvc:   deps.UserSvc,
		validate: deps.Validate,
	}

	ag := g.Group("/appointments", jwt)
	ag.POST("", api.book)
	ag.GET("", api.query)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id/status", api.updateStatus, teacherMiddleware())
	ag.DELETE("", api.destroyMultiple, teacherMiddleware())
}

func (api *bookingApi) book(ctx echo.Context) error {
	var data booking.NewAppointment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAppointment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	appt, err := api.svc.Book(ctx.Request().Context(), data, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "booking appointment")
	}
	return ctx.JSON(http.StatusCreated, appt)
}

// query lists the calendar; students only ever see their own appointments.
func (api *bookingApi) query(ctx echo.Context) error {
	filter := new(booking.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []booking.Appointment{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.IsTeacher() {
		filter.StudentID = ctxUsr.ID
	}

	appointments, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying appointments")
	}
	if appointments == nil {
		appointments = []booking.Appointment{}
	}
	return ctx.JSON(http.StatusOK, appointments)
}

func (api *bookingApi) retrieve(ctx echo.Context) error {
	appt, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == booking.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding appointment by ID")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.IsTeacher() && appt.StudentID != ctxUsr.ID {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, appt)
}

func (api *bookingApi) updateStatus(ctx echo.Context) error {
	var data booking.UpdateAppointmentStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAppointmentStatus")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	appt, err := api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == booking.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating appointment status")
	}
	return ctx.JSON(http.StatusOK, appt)
}

func (api *bookingApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting appointments")
	}
	return ctx.NoContent(http.StatusNoContent)
}
