package http

import (
	"net/http"
	"strconv"

	"soultrader/internal/dto"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupUsers(base *echo.Group) {
	v1 := base.Group("/v1/users")
	{
		v1.POST("", h.CreateUser)
		v1.PUT("/:id/risk-profile", h.UpdateRiskProfile)
		v1.GET("/:id/trades", h.GetTradeHistory)
	}
}

func (h *HttpAPIHandler) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.CreateUserRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	user, err := h.service.AccountService.CreateUser(ctx, req)
	if err != nil {
		return h.errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "User created", user))
}

func (h *HttpAPIHandler) UpdateRiskProfile(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid user id"))
	}

	req := new(dto.UpdateRiskProfileRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	profile, err := h.service.AccountService.UpdateRiskProfile(ctx, userID, req)
	if err != nil {
		return h.errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Risk profile updated", profile))
}

func (h *HttpAPIHandler) GetTradeHistory(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid user id"))
	}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid limit"))
		}
		limit = parsed
	}

	trades, err := h.service.ExecutionService.GetTradeHistory(ctx, userID, limit)
	if err != nil {
		return h.errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Trade history", trades))
}
