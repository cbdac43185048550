package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	_ "github.com/comitanigiacomo/kanso-progress-engine/docs"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/config"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/logger"
)

func main() {
	startTime := time.Now()

	configFile := flag.String("config", os.Getenv("KANSO_CONFIG"), "optional config file (yaml, json or toml)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Critical: invalid configuration: %v", err)
	}
	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatalf("Critical: %v", err)
	}
	if !strings.EqualFold(cfg.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, startTime)
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}
	defer a.Close()

	a.run(ctx)

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     a.router,
		ReadTimeout: 10 * time.Second,
		// progress streams stay open, so writes have no deadline
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.WithFields(log.Fields{
			"storage": cfg.StorageDriver,
			"feed":    cfg.FeedDriver,
		}).Infof("Kanso Progress Engine running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Stop signal received. Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Forced shutdown error: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
