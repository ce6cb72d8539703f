package http

import (
	"net/http"

	"signal-desk/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupPortfolio(auth echo.MiddlewareFunc) {
	h.echo.GET("/portfolio", h.portfolio)
	h.echo.POST("/buy", h.buy, auth)
	h.echo.POST("/sell", h.sell, auth)
}

func (h *HttpAPIHandler) portfolio(c echo.Context) error {
	resp, err := h.service.PortfolioService.Positions(c.Request().Context())
	if err != nil {
		return internalError(c, "failed to load portfolio")
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *HttpAPIHandler) buy(c echo.Context) error {
	req := new(dto.TradeRequest)
	if resp := h.bindAndValidate(c, req); resp != nil {
		return c.JSON(http.StatusBadRequest, resp)
	}

	resp, err := h.service.PortfolioService.Buy(c.Request().Context(), *req)
	if err != nil {
		return internalError(c, "failed to buy")
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *HttpAPIHandler) sell(c echo.Context) error {
	req := new(dto.TradeRequest)
	if resp := h.bindAndValidate(c, req); resp != nil {
		return c.JSON(http.StatusBadRequest, resp)
	}

	resp, err := h.service.PortfolioService.Sell(c.Request().Context(), *req)
	if err != nil {
		return internalError(c, "failed to sell")
	}
	return c.JSON(http.StatusOK, resp)
}
