package http

import (
	"net/http"
	"strings"

	"signal-desk/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupSignal(auth echo.MiddlewareFunc) {
	h.echo.GET("/score", h.score)
	h.echo.POST("/signal", h.signal)
	h.echo.POST("/scan", h.scan, auth)
}

func (h *HttpAPIHandler) score(c echo.Context) error {
	ticker := strings.TrimSpace(c.QueryParam("ticker"))
	if ticker == "" {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("ticker is required"))
	}
	return c.JSON(http.StatusOK, h.service.SignalService.Score(c.Request().Context(), ticker))
}

func (h *HttpAPIHandler) signal(c echo.Context) error {
	req := new(dto.SignalRequest)
	if resp := h.bindAndValidate(c, req); resp != nil {
		return c.JSON(http.StatusBadRequest, resp)
	}
	return c.JSON(http.StatusOK, h.service.SignalService.Evaluate(c.Request().Context(), *req))
}

func (h *HttpAPIHandler) scan(c echo.Context) error {
	req := new(dto.ScanRequest)
	if resp := h.bindAndValidate(c, req); resp != nil {
		return c.JSON(http.StatusBadRequest, resp)
	}

	result, err := h.service.ScanService.Scan(c.Request().Context(), *req)
	if err != nil {
		return internalError(c, "failed to run scan")
	}
	return c.JSON(http.StatusOK, result)
}
