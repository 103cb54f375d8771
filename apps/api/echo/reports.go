package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/coachreports/core/progress"
)

type reportApi struct {
	svc      progress.ServiceInterface
	validate *validator.Validate
}

func registerReportAPI(g *echo.Group, svc progress.ServiceInterface, validate *validator.Validate) {
	api := reportApi{
		svc:      svc,
		validate: validate,
	}

	rg := g.Group("/reports")
	rg.GET("/lessons", api.lessons)
	rg.GET("/lessons/:id/resources", api.resources)
}

// Handlers

func (api *reportApi) lessons(ctx echo.Context) error {
	q := bindReportQuery(ctx)
	if err := q.Validate(api.validate); err != nil {
		return err
	}

	rows, err := api.svc.LessonReport(ctx.Request().Context(), q)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *reportApi) resources(ctx echo.Context) error {
	q := bindReportQuery(ctx)
	if err := q.Validate(api.validate); err != nil {
		return err
	}

	rows, err := api.svc.ResourceReport(ctx.Request().Context(), ctx.Param("id"), q)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rows)
}
