package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/coachreports/core/transfer"
)

type transferApi struct {
	svc      transfer.ServiceInterface
	validate *validator.Validate
}

func registerTransferAPI(g *echo.Group, svc transfer.ServiceInterface, validate *validator.Validate) {
	api := transferApi{
		svc:      svc,
		validate: validate,
	}

	tg := g.Group("/transfers")
	tg.POST("/admission", api.admission)
}

// Handlers

// admission answers 200 whether the transfer is admitted or not; see AdmissionState.Reason.
func (api *transferApi) admission(ctx echo.Context) error {
	var req transfer.AdmissionRequest
	if err := ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding to AdmissionRequest")
	}
	if err := req.Validate(api.validate); err != nil {
		return err
	}

	state, err := api.svc.Check(ctx.Request().Context(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, state)
}
