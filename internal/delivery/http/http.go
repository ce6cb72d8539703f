package http

import (
	"context"
	"net/http"

	"signal-desk/config"
	"signal-desk/internal/dto"
	"signal-desk/internal/service"
	"signal-desk/pkg/logger"
	"signal-desk/pkg/middleware"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HttpAPIHandler struct {
	cfg       *config.Config
	log       *logger.Logger
	echo      *echo.Echo
	validator *goValidator.Validate
	service   *service.Service
}

func NewHttpAPIHandler(ctx context.Context, cfg *config.Config, log *logger.Logger, echo *echo.Echo, validator *goValidator.Validate, service *service.Service) *HttpAPIHandler {
	return &HttpAPIHandler{
		cfg:       cfg,
		log:       log,
		echo:      echo,
		validator: validator,
		service:   service,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	h.echo.GET("/", h.root)
	h.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Route level so unknown paths still 404 instead of 401.
	auth := middleware.NewAPIKeyMiddleware(h.cfg.API.APIKey)
	h.SetupSignal(auth)
	h.SetupPortfolio(auth)
	h.SetupBacktest(auth)
}

func (h *HttpAPIHandler) root(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("signal-desk is running", map[string]string{
		"symbol":  h.cfg.Signal.Symbol,
		"trigger": h.cfg.Signal.Trigger,
	}))
}

// bindAndValidate returns the 400 body to send, or nil when req is usable.
func (h *HttpAPIHandler) bindAndValidate(c echo.Context, req interface{}) *dto.BaseResponse {
	if err := c.Bind(req); err != nil {
		return dto.NewBadRequestResponse("invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return dto.NewBadRequestResponse(err.Error())
	}
	return nil
}

func internalError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, message, nil))
}
