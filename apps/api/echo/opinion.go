package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core/opinion"
	"github.com/trezcool/madrasa/core/user"
)

type opinionApi struct {
	svc      opinion.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerOpinionAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := opinionApi{
		svc:      deps.OpinionSvc,
		usrSvc:   deps.UserSvc,
		validate: deps.Validate,
	}

	og := g.Group("/opinions")
	og.GET("", api.query)
	og.POST("", api.create, jwt)
}

func (api *opinionApi) query(ctx echo.Context) error {
	opinions, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying opinions")
	}
	if opinions == nil {
		opinions = []opinion.Opinion{}
	}
	return ctx.JSON(http.StatusOK, opinions)
}

func (api *opinionApi) create(ctx echo.Context) error {
	var data opinion.NewOpinion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewOpinion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	op, err := api.svc.Create(ctx.Request().Context(), data, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "creating opinion")
	}
	return ctx.JSON(http.StatusCreated, op)
}
