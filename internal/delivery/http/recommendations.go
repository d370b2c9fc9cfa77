package http

import (
	"net/http"

	"soultrader/internal/dto"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupRecommendations(base *echo.Group) {
	v1 := base.Group("/v1/recommendations")
	{
		v1.GET("", h.GetPendingRecommendations)
		v1.POST("/:id/execute", h.ExecuteRecommendation)
	}
}

func (h *HttpAPIHandler) GetPendingRecommendations(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := uuid.Parse(c.QueryParam("user_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid or missing user_id"))
	}

	recs, err := h.service.AnalysisService.GetPendingRecommendations(ctx, userID)
	if err != nil {
		return h.errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Pending recommendations", recs))
}

func (h *HttpAPIHandler) ExecuteRecommendation(c echo.Context) error {
	ctx := c.Request().Context()

	recID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid recommendation id"))
	}

	req := new(dto.ExecuteRecommendationRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid user_id"))
	}

	rec, err := h.service.ExecutionService.GetRecommendation(ctx, recID)
	if err != nil {
		return h.errorResponse(c, err)
	}

	result, err := h.service.ExecutionService.ExecuteRecommendation(ctx, userID, rec)
	if err != nil {
		return h.errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Recommendation executed", result))
}
