package http

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"signal-desk/internal/backtest"
	"signal-desk/internal/dto"

	"github.com/labstack/echo/v4"
)

var errInvalidDataFile = errors.New("invalid backtest data file name")

func (h *HttpAPIHandler) SetupBacktest(auth echo.MiddlewareFunc) {
	h.echo.POST("/backtest", h.runBacktest, auth)
}

func (h *HttpAPIHandler) runBacktest(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.BacktestRequest)
	if resp := h.bindAndValidate(c, req); resp != nil {
		return c.JSON(http.StatusBadRequest, resp)
	}

	file, err := resolveDataFile(h.cfg.Backtest.DataDir, req.File)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	req.File = file

	result, err := h.service.BacktestService.RunBacktest(ctx, *req)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("backtest data file not found"))
	case errors.Is(err, backtest.ErrEmptyFeed):
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("backtest data file has no bars"))
	case err != nil:
		return internalError(c, "failed to run backtest")
	}

	return c.JSON(http.StatusOK, result)
}

// resolveDataFile keeps a client-supplied file name inside dataDir. An empty
// name is left for the configured default.
func resolveDataFile(dataDir, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	base := filepath.Base(name)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", errInvalidDataFile
	}
	return filepath.Join(dataDir, base), nil
}
