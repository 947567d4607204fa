package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core/approval"
	"github.com/trezcool/madrasa/core/user"
)

type approvalApi struct {
	svc      approval.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerApprovalAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := approvalApi{
		svc:      deps.ApprovalSvc,
		usrSvc:   deps.UserSvc,
		validate: deps.Validate,
	}

	ag := g.Group("/approvals", jwt, teacherMiddleware())
	ag.GET("", api.query)
	ag.GET("/:id", api.retrieve)
	ag.POST("/:id/review", api.review)
}

func (api *approvalApi) query(ctx echo.Context) error {
	filter := new(approval.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []approval.Approval{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	approvals, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying approvals")
	}
	if approvals == nil {
		approvals = []approval.Approval{}
	}
	return ctx.JSON(http.StatusOK, approvals)
}

func (api *approvalApi) retrieve(ctx echo.Context) error {
	appr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == approval.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding approval by ID")
	}
	return ctx.JSON(http.StatusOK, appr)
}

func (api *approvalApi) review(ctx echo.Context) error {
	var data approval.ReviewApproval
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewApproval")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	reviewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	outcome, err := api.svc.Review(ctx.Request().Context(), ctx.Param("id"), data, reviewer)
	if err != nil {
		if errors.Cause(err) == approval.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "reviewing approval")
	}
	return ctx.JSON(http.StatusOK, outcome)
}
