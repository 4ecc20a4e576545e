package formula

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/internal/services/reconcile"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/utils"
)

type Handler struct {
	service *reconcile.Service
}

func NewHandler(service *reconcile.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/formula/evaluate", h.Evaluate)
}

type EvaluateRequest struct {
	Expression string     `json:"expression" validate:"required"`
	Row        models.Row `json:"row"`
}

// Evaluate dry-runs a custom formula over a single source row.
func (h *Handler) Evaluate(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "formula.Evaluate")
	defer span.End()

	req, err := utils.BindRequest[EvaluateRequest](c)
	if err != nil {
		return err
	}

	result, err := h.service.EvaluateFormula(ctx, req.Expression, req.Row)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
