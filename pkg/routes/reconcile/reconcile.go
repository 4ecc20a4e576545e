package reconcile

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/internal/services/reconcile"
	"github.com/Ramsey-B/fern/pkg/merge"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tabular"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/utils"
)

// Handler serves the inference, auto-mapping and merge routes.
type Handler struct {
	service *reconcile.Service
}

func NewHandler(service *reconcile.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/infer", h.Infer)
	g.POST("/automap", h.AutoMap)
	g.POST("/merge", h.Merge)
	g.POST("/merge/preview", h.Preview)
}

type InferRequest struct {
	Fields []string     `json:"fields" validate:"required,min=1,dive,required"`
	Rows   []models.Row `json:"rows"`
}

// Infer handles POST /infer
func (h *Handler) Infer(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "reconcile.Infer")
	defer span.End()

	req, err := utils.BindRequest[InferRequest](c)
	if err != nil {
		return err
	}

	analysis := h.service.Analyze(ctx, models.Dataset{Fields: req.Fields, Rows: req.Rows})
	return c.JSON(http.StatusOK, analysis)
}

type AutoMapRequest struct {
	Target   models.Dataset `json:"target" validate:"required"`
	Source   models.Dataset `json:"source" validate:"required"`
	MinScore float64        `json:"min_score" validate:"gte=-1,lte=1"`
}

// AutoMap handles POST /automap
func (h *Handler) AutoMap(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "reconcile.AutoMap")
	defer span.End()

	req, err := utils.BindRequest[AutoMapRequest](c)
	if err != nil {
		return err
	}

	result, err := h.service.AutoMap(ctx, req.Target, req.Source, req.MinScore)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

type MergeResponse struct {
	Fields []string           `json:"fields"`
	Rows   []models.MergedRow `json:"rows"`
	Count  int                `json:"count"`
}

// Merge handles POST /merge. ?format=csv returns the merged rows as a CSV download.
func (h *Handler) Merge(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "reconcile.Merge")
	defer span.End()

	req, err := utils.BindRequest[merge.Request](c)
	if err != nil {
		return err
	}

	rows, err := h.service.Merge(ctx, req)
	if err != nil {
		return err
	}

	if tabular.Format(c.QueryParam("format")) == tabular.FormatCSV {
		c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="merged.csv"`)
		c.Response().WriteHeader(http.StatusOK)
		return h.service.Export(c.Response(), tabular.FormatCSV, req.TargetFields, rows)
	}

	return c.JSON(http.StatusOK, MergeResponse{Fields: req.TargetFields, Rows: rows, Count: len(rows)})
}

// Preview handles POST /merge/preview
func (h *Handler) Preview(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "reconcile.Preview")
	defer span.End()

	req, err := utils.BindRequest[merge.Request](c)
	if err != nil {
		return err
	}

	rows, err := h.service.Preview(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, MergeResponse{Fields: req.TargetFields, Rows: rows, Count: len(rows)})
}
