package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"equityscan/internal/dto"
)

func (h *HttpAPIHandler) SetupBigBets(base *echo.Group) {
	v1 := base.Group("/v1")
	{
		v1.POST("/bigbets", h.RunBigBets)
	}
}

func (h *HttpAPIHandler) RunBigBets(c echo.Context) error {
	var req dto.BigBetsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBaseResponse(http.StatusBadRequest, err.Error(), nil))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBaseResponse(http.StatusBadRequest, err.Error(), nil))
	}

	result, err := h.service.BigBetsService.RunFromRows(c.Request().Context(), req.Rows, req.Amount)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewBaseResponse(http.StatusOK, "Big bets completed", result))
}
