package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core/bundle"
	"github.com/trezcool/madrasa/core/user"
)

type bundleApi struct {
	svc      bundle.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerBundleAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := bundleApi{
		svc:      deps.BundleSvc,
		usrSvc:   deps.UserSvc,
		validate: deps.Validate,
	}

	pg := g.Group("/packages", jwt)
	pg.GET("", api.queryPackages)
	pg.POST("", api.createPackage, teacherMiddleware())
	pg.GET("/:id", api.retrievePackage)
	pg.GET("/:id/order-link", api.orderLink)
	pg.PUT("/:id", api.updatePackage, teacherMiddleware())
	pg.DELETE("", api.destroyPackages, teacherMiddleware())

	bg := g.Group("/purchases", jwt)
	bg.GET("/mine", api.myPurchases)
	bg.POST("", api.createPurchase, teacherMiddleware())
	bg.GET("", api.queryPurchases, teacherMiddleware())
	bg.PUT("/:id", api.updatePurchase, teacherMiddleware())
	bg.DELETE("", api.destroyPurchases, teacherMiddleware())

	dg := g.Group("/dashboard", jwt)
	dg.GET("/summary", api.summary)
	dg.GET("/overview", api.overview, teacherMiddleware())
}

// Packages

func (api *bundleApi) queryPackages(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	includeInactive := ctxUsr.IsTeacher() && ctx.QueryParam("include_inactive") == "true"

	pkgs, err := api.svc.QueryPackages(ctx.Request().Context(), includeInactive)
	if err != nil {
		return errors.Wrap(err, "querying packages")
	}
	if pkgs == nil {
		pkgs = []bundle.Package{}
	}
	return ctx.JSON(http.StatusOK, pkgs)
}

func (api *bundleApi) createPackage(ctx echo.Context) error {
	var data bundle.NewPackage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPackage")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	pkg, err := api.svc.CreatePackage(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating package")
	}
	return ctx.JSON(http.StatusCreated, pkg)
}

func (api *bundleApi) retrievePackage(ctx echo.Context) error {
	pkg, err := api.svc.GetPackage(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == bundle.ErrPackageNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding package by ID")
	}
	return ctx.JSON(http.StatusOK, pkg)
}

// orderLink hands the student the wa.me link that opens the order conversation;
// there is no in-app payment.
func (api *bundleApi) orderLink(ctx echo.Context) error {
	pkg, err := api.svc.GetPackage(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == bundle.ErrPackageNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding package by ID")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, WhatsAppLinkResponse{WhatsAppLink: api.svc.OrderLink(pkg, ctxUsr)})
}

func (api *bundleApi) updatePackage(ctx echo.Context) error {
	var data bundle.UpdatePackage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePackage")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	pkg, err := api.svc.UpdatePackage(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == bundle.ErrPackageNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating package")
	}
	return ctx.JSON(http.StatusOK, pkg)
}

func (api *bundleApi) destroyPackages(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.DeletePackages(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting packages")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Purchases

func (api *bundleApi) myPurchases(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	purchases, err := api.svc.QueryStudentPurchases(ctx.Request().Context(), ctxUsr)
	if err != nil {
		return errors.Wrap(err, "querying student purchases")
	}
	if purchases == nil {
		purchases = []bundle.Purchase{}
	}
	return ctx.JSON(http.StatusOK, purchases)
}

func (api *bundleApi) createPurchase(ctx echo.Context) error {
	var data bundle.NewPurchase
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPurchase")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	pur, err := api.svc.CreatePurchase(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating purchase")
	}
	return ctx.JSON(http.StatusCreated, pur)
}

func (api *bundleApi) queryPurchases(ctx echo.Context) error {
	filter := new(bundle.PurchaseFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []bundle.Purchase{})
	}
	filter.Clean()

	purchases, err := api.svc.QueryPurchases(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying purchases")
	}
	if purchases == nil {
		purchases = []bundle.Purchase{}
	}
	return ctx.JSON(http.StatusOK, purchases)
}

func (api *bundleApi) updatePurchase(ctx echo.Context) error {
	var data bundle.UpdatePurchase
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePurchase")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	pur, err := api.svc.UpdatePurchase(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == bundle.ErrPurchaseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating purchase")
	}
	return ctx.JSON(http.StatusOK, pur)
}

func (api *bundleApi) destroyPurchases(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.DeletePurchases(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting purchases")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Dashboards

func (api *bundleApi) summary(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	summary, err := api.svc.StudentSummary(ctx.Request().Context(), ctxUsr)
	if err != nil {
		return errors.Wrap(err, "summarizing student hours")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *bundleApi) overview(ctx echo.Context) error {
	rows, err := api.svc.Overview(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building overview")
	}
	if rows == nil {
		rows = []bundle.OverviewRow{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

type WhatsAppLinkResponse struct {
	WhatsAppLink string `json:"whatsapp_link"`
}
