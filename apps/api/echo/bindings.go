package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/coachreports/core/progress"
)

var (
	filterParam     = "filter"
	orderingParam   = "ordering"
	assignedByParam = "assigned_by"
)

// bindReportQuery reads the report presentation choices from the query string.
func bindReportQuery(ctx echo.Context) progress.ReportQuery {
	return progress.ReportQuery{
		Filter:     ctx.QueryParam(filterParam),
		Ordering:   ctx.QueryParam(orderingParam),
		AssignedBy: ctx.QueryParam(assignedByParam),
	}
}
