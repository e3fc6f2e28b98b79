package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"equityscan/internal/dto"
	"equityscan/pkg/utils"
)

func (h *HttpAPIHandler) SetupScan(base *echo.Group) {
	v1 := base.Group("/v1")
	{
		v1.POST("/scan/run", h.RunScan)
		v1.GET("/scan/state", h.GetScanState)
		v1.GET("/recommendations", h.GetRecommendations)
	}
}

func (h *HttpAPIHandler) RunScan(c echo.Context) error {
	var req dto.RunScanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBaseResponse(http.StatusBadRequest, err.Error(), nil))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBaseResponse(http.StatusBadRequest, err.Error(), nil))
	}

	mode := dto.ScanModeFull
	switch req.Mode {
	case string(dto.ScanModeFetchOnly):
		mode = dto.ScanModeFetchOnly
	case string(dto.ScanModeAnalyzeOnly):
		mode = dto.ScanModeAnalyzeOnly
	}

	// The run outlives the request; progress is observable via /scan/state
	// and failures land in the run state.
	utils.GoSafe(func() {
		_, _ = h.service.ScanService.Run(context.Background(), mode, req.Limit)
	})
	return c.JSON(http.StatusAccepted, dto.NewBaseResponse(http.StatusAccepted, "Scan accepted", nil))
}

func (h *HttpAPIHandler) GetScanState(c echo.Context) error {
	state, err := h.service.ScanService.GetState(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewBaseResponse(http.StatusOK, "OK", state))
}

func (h *HttpAPIHandler) GetRecommendations(c echo.Context) error {
	runDate := c.QueryParam("date")
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, dto.NewBaseResponse(http.StatusBadRequest, "invalid limit", nil))
		}
		limit = parsed
	}

	results, err := h.service.ScanService.GetTopResults(c.Request().Context(), runDate, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewBaseResponse(http.StatusOK, "OK", results))
}
