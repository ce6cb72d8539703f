package cmd

import (
	"context"
	"errors"
	httpNet "net/http"
	"os"
	"os/signal"
	"syscall"

	"signal-desk/internal/delivery/http"
	"signal-desk/internal/delivery/telegram"
	"signal-desk/internal/repository"
	"signal-desk/internal/service"
	"signal-desk/pkg/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the signal HTTP API, scan scheduler and Telegram bot",
	RunE:  Start,
}

func Start(cmd *cobra.Command, args []string) error {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		return err
	}
	log := appDep.log

	repo, err := repository.NewRepository(ctx, appDep.cfg, appDep.Stores(), log)
	if err != nil {
		log.Error("Failed to create repository", zap.Error(err))
		return err
	}

	services := service.NewService(appDep.cfg, log, repo, appDep.cache, appDep.dispatcher)
	httpHandler := http.NewHttpAPIHandler(ctx, appDep.cfg, log, appDep.echo, appDep.validator, services)

	var telegramHandler *telegram.TelegramBotHandler
	if appDep.telegramBot != nil {
		telegramHandler = telegram.NewTelegramBotHandler(ctx, appDep.cfg, log, appDep.telegramBot, appDep.echo, appDep.validator, services)
		telegramHandler.RegisterHandlers()
		utils.GoSafe(telegramHandler.Start)
	}

	if err := services.SchedulerService.Start(ctx); err != nil {
		log.Error("Failed to start scan scheduler", zap.Error(err))
		return err
	}

	apiServer := NewHTTPServer(ctx, appDep, httpHandler)
	serverErr := make(chan error, 1)
	utils.GoSafe(func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, httpNet.ErrServerClosed) {
			serverErr <- err
		}
	})

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err = <-serverErr:
		log.Error("HTTP server stopped unexpectedly", zap.Error(err))
		stop()
	}

	services.SchedulerService.Stop()
	if telegramHandler != nil {
		telegramHandler.Stop()
	}
	if stopErr := apiServer.Stop(); stopErr != nil {
		log.Error("Failed to stop HTTP server", zap.Error(stopErr))
	}
	if closeErr := appDep.Close(); closeErr != nil {
		log.Error("Failed to close app dependency", zap.Error(closeErr))
	}
	return err
}
