package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/adapters/capture"
	"github.com/dkeye/Meet/internal/adapters/console"
	"github.com/dkeye/Meet/internal/adapters/httpui"
	"github.com/dkeye/Meet/internal/adapters/roomapi"
	"github.com/dkeye/Meet/internal/adapters/rtc"
	"github.com/dkeye/Meet/internal/adapters/ws"
	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	opener, err := capture.NewOpener()
	if err != nil {
		log.Fatal().Err(err).Msg("capture setup")
	}

	ctrl := app.NewController(app.ControllerParams{
		Server:        cfg.ServerURL,
		CaptureWidth:  cfg.CaptureWidth,
		CaptureHeight: cfg.CaptureHeight,
		Checker:       roomapi.New(cfg.ServerURL),
		Dialer:        ws.NewDialer(cfg.ReadLimit, cfg.PingPeriod),
		Media:         rtc.NewFactory(rtc.DefaultConfig(), opener.Populate),
		Capture:       opener,
		Present:       console.New(),
	})

	r := httpui.SetupRouter(cfg, ctrl)
	addr := fmt.Sprintf(":%d", cfg.UIPort)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Meet client control surface started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("control surface error")
		}
	}()

	if cfg.Room != "" {
		if err := ctrl.JoinRoom(ctx, cfg.Room, cfg.Password, cfg.Username); err != nil {
			log.Error().Err(err).Str("room", cfg.Room).Msg("auto-join failed")
		}
	}

	// Lines typed on stdin go out as chat messages.
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if err := ctrl.SendChat(scanner.Text()); err != nil {
				log.Warn().Err(err).Msg("chat not sent")
			}
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	ctrl.LeaveRoom()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Control surface forced to shutdown")
	}
	log.Info().Msg("Client exited gracefully")
}
