package worker

// retry_cron.go
// Background goroutine that periodically re-attempts CFDI emission for
// comprobantes stuck in estado='pendiente' with a next_retry_at in the past.
// After MaxComprobanteRetries the comprobante is parked in estado='error'
// and sent to the DLQ.

import (
	"context"
	"fmt"
	"time"

	"github.com/apenap/sis.ret-alpha/internal/repository"
	"github.com/apenap/sis.ret-alpha/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	ComprobanteRepo repository.ComprobanteRepository
	Facturacion     service.FacturacionService
	RDB             *redis.Client
}

// StartRetryCron launches a background goroutine that ticks every 30s,
// queries pending comprobantes, and re-attempts the emission. It respects
// the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	now := time.Now()
	comprobantes, err := cfg.ComprobanteRepo.ListPendingRetries(ctx, now, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}
	if len(comprobantes) == 0 {
		return
	}

	log.Info().Int("count", len(comprobantes)).Msg("retry_cron: processing pending comprobantes")

	for i := range comprobantes {
		comp := &comprobantes[i]

		emitido, err := cfg.Facturacion.GenerarComprobante(ctx, comp.VentaID)
		if err == nil {
			log.Info().
				Str("folio_fiscal", deref(emitido.FolioFiscal)).
				Str("comprobante_id", emitido.ID.String()).
				Int("total_retries", comp.Intentos).
				Msg("retry_cron: CFDI emitted after retry")
			continue
		}

		// Failure — increment retry count, schedule next attempt
		comp.Intentos++
		errMsg := err.Error()
		comp.LastError = &errMsg
		nextRetry := time.Now().Add(computeRetryBackoff(comp.Intentos))
		comp.NextRetryAt = &nextRetry

		if comp.Intentos >= MaxComprobanteRetries {
			comp.Estado = "error"
			comp.NextRetryAt = nil
			log.Error().
				Str("comprobante_id", comp.ID.String()).
				Str("venta_id", comp.VentaID.String()).
				Int("retries", comp.Intentos).
				Msg("retry_cron: max retries exceeded, moving to error/DLQ")

			payload := fmt.Sprintf(`{"venta_id":"%s","comprobante_id":"%s"}`, comp.VentaID, comp.ID)
			SendToDLQ(ctx, cfg.RDB, QueueFacturacion, "facturacion", []byte(payload),
				fmt.Sprintf("max retries (%d) exceeded: %s", MaxComprobanteRetries, errMsg),
				comp.Intentos)
		} else {
			log.Warn().
				Str("comprobante_id", comp.ID.String()).
				Int("intentos", comp.Intentos).
				Time("next_retry_at", *comp.NextRetryAt).
				Msg("retry_cron: emission retry failed, scheduled next attempt")
		}

		_ = cfg.ComprobanteRepo.Update(ctx, comp)
	}
}
