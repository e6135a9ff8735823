package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apenap/sis.ret-alpha/internal/config"
	"github.com/apenap/sis.ret-alpha/internal/infra"
	"github.com/apenap/sis.ret-alpha/internal/repository"
	"github.com/apenap/sis.ret-alpha/internal/router"
	"github.com/apenap/sis.ret-alpha/internal/service"
	"github.com/apenap/sis.ret-alpha/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Async pipeline: CFDI emission, factura PDF + email delivery, and the
	// timbrado retry cron. Wired here at the composition root so the workers
	// share the same repositories and services as the HTTP layer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	dispatcher := worker.NewDispatcher(rdb)

	ventaRepo := repository.NewVentaRepository(db)
	comprobanteRepo := repository.NewComprobanteRepository(db)
	configuracionRepo := repository.NewConfiguracionRepository(db)

	configuracionSvc := service.NewConfiguracionService(configuracionRepo)
	facturacionSvc := service.NewFacturacionService(ventaRepo, comprobanteRepo, configuracionSvc, cfg.StoragePath)

	procesadores := map[string]worker.Processor{
		"facturacion": worker.NewFacturacionWorker(facturacionSvc, comprobanteRepo, ventaRepo, configuracionSvc, dispatcher, cfg.StoragePath),
		"email":       worker.NewEmailWorker(mailer, smtpCB),
	}
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, procesadores)
	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		ComprobanteRepo: comprobanteRepo,
		Facturacion:     facturacionSvc,
		RDB:             rdb,
	})

	r := router.New(cfg, db, rdb)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("sis.ret backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
