package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-jss-crawler/internal/app"
	"go-jss-crawler/internal/config"
	"go-jss-crawler/internal/filter"
	"go-jss-crawler/internal/logger"
	"go-jss-crawler/internal/scraper"
	"go-jss-crawler/internal/server"

	"github.com/gin-gonic/gin"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("❌ Failed to init logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outputs, err := app.OpenOutputs(ctx, cfg, lg)
	if err != nil {
		lg.Error("❌ Failed to open outputs", logger.Error(err))
		os.Exit(1)
	}
	defer outputs.Close()

	runner := app.New(cfg, app.Playwright, outputs.Notifier(), lg)
	run := func(ctx context.Context, req scraper.Request) (app.Result, error) {
		return runner.Run(ctx, req, outputs.Sink(req.Date))
	}
	today := func() string {
		return filter.FormatDay(time.Now().In(cfg.Location()))
	}

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	h := server.NewHandler(ctx, run, today, lg)
	srv := &http.Server{Addr: ":" + port, Handler: h.Router()}

	go func() {
		lg.Info("🌐 Server listening", logger.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("❌ Server stopped", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Warn("⚠️ Server shutdown", logger.Error(err))
	}
	h.Wait()
	lg.Info("🏁 Server stopped")
}
