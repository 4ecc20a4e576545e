package recommendation

import (
	"encoding/json"
	"net/http"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/internal/services/reconcile"
	"github.com/Ramsey-B/fern/pkg/models"
)

const (
	invalidInputMessage  = "Invalid input arrays"
	internalErrorMessage = "Internal server error"
)

// ErrorResponse is the error body of the recommendation route, which does not use the shared
// error handler.
type ErrorResponse struct {
	Error string `json:"error"`
}

type RecommendResponse struct {
	Recommendations map[string]models.Recommendation `json:"recommendations"`
}

type Handler struct {
	service *reconcile.Service
	logger  ectologger.Logger
}

func NewHandler(service *reconcile.Service, logger ectologger.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/recommend-mapping", h.Recommend)
}

// Recommend handles POST /api/recommend-mapping with {csv1Fields, csv2Fields}.
func (h *Handler) Recommend(c echo.Context) error {
	ctx := c.Request().Context()

	var body map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: invalidInputMessage})
	}

	targets, ok := stringArray(body["csv1Fields"])
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: invalidInputMessage})
	}
	sources, ok := stringArray(body["csv2Fields"])
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: invalidInputMessage})
	}

	recs, err := h.service.Recommend(ctx, targets, sources)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Embedding error")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: internalErrorMessage})
	}

	return c.JSON(http.StatusOK, RecommendResponse{Recommendations: recs})
}

// stringArray accepts only a JSON array whose elements are all strings.
func stringArray(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	values := []string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, false
	}
	return values, true
}
