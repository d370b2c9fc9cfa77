package http

import (
	"errors"
	"net/http"
	"strconv"

	"soultrader/internal/dto"
	"soultrader/internal/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupAnalysis(base *echo.Group) {
	v1 := base.Group("/v1/analysis")
	{
		v1.POST("/run", h.RunAnalysis)
		v1.POST("/batch", h.RunBatchAnalysis)
		v1.GET("/sessions", h.ListSessions)
		v1.GET("/sessions/:id", h.GetSession)
	}
}

func (h *HttpAPIHandler) RunAnalysis(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.RunAnalysisRequest)
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

	result, err := h.service.AnalysisService.Analyze(ctx, userID, req.Symbols, dto.AnalysisOptions{
		AutoExecute: req.AutoExecute,
		DryRun:      req.DryRun,
		Force:       req.Force,
	})
	if err != nil {
		return h.errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Analysis completed", result))
}

func (h *HttpAPIHandler) RunBatchAnalysis(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.BatchAnalysisRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	userIDs := make([]uuid.UUID, 0, len(req.UserIDs))
	for _, raw := range req.UserIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid user id: "+raw))
		}
		userIDs = append(userIDs, id)
	}

	result, err := h.service.AnalysisService.BatchAnalyze(ctx, userIDs, dto.BatchAnalysisOptions{
		AnalysisOptions: dto.AnalysisOptions{
			AutoExecute: req.AutoExecute,
			DryRun:      req.DryRun,
			Force:       req.Force,
		},
		MinCash:  req.MinCash,
		MaxUsers: req.MaxUsers,
	})
	if err != nil {
		return h.errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Batch analysis completed", result))
}

func (h *HttpAPIHandler) GetSession(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid session id"))
	}

	result, err := h.service.AnalysisService.GetSession(ctx, sessionID)
	if err != nil {
		return h.errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Session found", result))
}

func (h *HttpAPIHandler) ListSessions(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := uuid.Parse(c.QueryParam("user_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid or missing user_id"))
	}

	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid limit"))
		}
		limit = parsed
	}

	results, err := h.service.AnalysisService.GetLatestSessions(ctx, userID, limit)
	if err != nil {
		return h.errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Sessions found", results))
}

func (h *HttpAPIHandler) errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, dto.NewNotFoundResponse(err.Error()))
	case errors.Is(err, service.ErrAnalysisInProgress):
		return c.JSON(http.StatusConflict, dto.NewBaseResponse(http.StatusConflict, err.Error(), nil))
	case errors.Is(err, service.ErrDataUnavailable):
		return c.JSON(http.StatusBadGateway, dto.NewBaseResponse(http.StatusBadGateway, err.Error(), nil))
	case errors.Is(err, service.ErrExecution):
		return c.JSON(http.StatusUnprocessableEntity, dto.NewBaseResponse(http.StatusUnprocessableEntity, err.Error(), nil))
	default:
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse(err.Error()))
	}
}
