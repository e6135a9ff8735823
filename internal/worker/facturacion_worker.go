package worker

// facturacion_worker.go
// Processes CFDI emission jobs from QueueFacturacion: builds the XML via the
// facturación service, renders the printed representation, and optionally
// enqueues an email job. Failed emissions stay "pendiente" with a
// next_retry_at so the timbrado cron can pick them up.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apenap/sis.ret-alpha/internal/cfdi"
	"github.com/apenap/sis.ret-alpha/internal/infra"
	"github.com/apenap/sis.ret-alpha/internal/model"
	"github.com/apenap/sis.ret-alpha/internal/repository"
	"github.com/apenap/sis.ret-alpha/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MaxComprobanteRetries bounds the timbrado cron before a comprobante is
// parked in estado "error" and sent to the DLQ.
const MaxComprobanteRetries = 5

// FacturacionJobPayload is the job envelope sent to QueueFacturacion.
type FacturacionJobPayload struct {
	VentaID      string  `json:"venta_id"`
	ClienteEmail *string `json:"cliente_email,omitempty"`
}

// FacturacionWorker processes CFDI emission jobs from QueueFacturacion.
type FacturacionWorker struct {
	facturacion     service.FacturacionService
	comprobanteRepo repository.ComprobanteRepository
	ventaRepo       repository.VentaRepository
	configuracion   service.ConfiguracionService
	dispatcher      *Dispatcher
	storagePath     string
}

// NewFacturacionWorker wires all dependencies for the billing worker.
func NewFacturacionWorker(
	facturacion service.FacturacionService,
	comprobanteRepo repository.ComprobanteRepository,
	ventaRepo repository.VentaRepository,
	configuracion service.ConfiguracionService,
	dispatcher *Dispatcher,
	storagePath string,
) *FacturacionWorker {
	return &FacturacionWorker{
		facturacion:     facturacion,
		comprobanteRepo: comprobanteRepo,
		ventaRepo:       ventaRepo,
		configuracion:   configuracion,
		dispatcher:      dispatcher,
		storagePath:     storagePath,
	}
}

// Process handles a single facturacion job:
//  1. Parse FacturacionJobPayload from the job envelope
//  2. Emit the CFDI with exponential backoff (max 3 in-process attempts)
//  3. On failure, leave a "pendiente" comprobante for the timbrado cron
//  4. On success, render the factura PDF and enqueue the email job
func (w *FacturacionWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload FacturacionJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("facturacion_worker: invalid payload")
		return
	}

	ventaID, err := uuid.Parse(payload.VentaID)
	if err != nil {
		log.Error().Str("venta_id", payload.VentaID).Msg("facturacion_worker: invalid venta_id")
		return
	}

	var comp *model.ComprobanteFiscal
	emitErr := withRetry(ctx, 3, func(attempt int) error {
		c, err := w.facturacion.GenerarComprobante(ctx, ventaID)
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("venta_id", payload.VentaID).
				Msg("facturacion_worker: emission attempt failed, retrying")
			return err
		}
		comp = c
		return nil
	})

	if emitErr != nil {
		log.Error().Err(emitErr).Str("venta_id", payload.VentaID).Msg("facturacion_worker: emission failed after all retries")
		w.registrarFallo(ctx, ventaID, payload.ClienteEmail, emitErr)
		return
	}
	log.Info().Str("folio_fiscal", deref(comp.FolioFiscal)).Str("venta_id", payload.VentaID).Msg("facturacion_worker: CFDI emitted")

	venta, err := w.ventaRepo.FindByID(ctx, ventaID)
	if err != nil {
		log.Error().Err(err).Str("venta_id", payload.VentaID).Msg("facturacion_worker: venta not found for PDF")
		return
	}

	emisorNombre := w.configuracion.Valor(ctx, "emisor_nombre", "SIS.RET")
	pdfPath, pdfErr := infra.GenerarFacturaPDF(comp, venta, emisorNombre, w.storagePath)
	if pdfErr != nil {
		log.Warn().Err(pdfErr).Str("venta_id", payload.VentaID).Msg("facturacion_worker: PDF generation failed")
	} else {
		comp.PDFPath = &pdfPath
		_ = w.comprobanteRepo.Update(ctx, comp)
		log.Info().Str("pdf", pdfPath).Str("venta_id", payload.VentaID).Msg("facturacion_worker: PDF generated")
	}

	if payload.ClienteEmail != nil && *payload.ClienteEmail != "" {
		emailJob := EmailJobPayload{
			ToEmail: *payload.ClienteEmail,
			Subject: fmt.Sprintf("Comprobante fiscal — %s", venta.Folio),
			Body:    fmt.Sprintf("Adjunto encontrarás tu comprobante fiscal.\nTotal: $%s", comp.Total.StringFixed(2)),
			XMLPath: deref(comp.XMLPath),
			PDFPath: deref(comp.PDFPath),
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("email", *payload.ClienteEmail).Msg("facturacion_worker: failed to enqueue email")
		} else {
			log.Info().Str("email", *payload.ClienteEmail).Msg("facturacion_worker: email job enqueued")
		}
	}
}

// registrarFallo leaves (or refreshes) a pendiente comprobante so the
// timbrado cron re-attempts the emission later.
func (w *FacturacionWorker) registrarFallo(ctx context.Context, ventaID uuid.UUID, clienteEmail *string, cause error) {
	venta, err := w.ventaRepo.FindByID(ctx, ventaID)
	if err != nil {
		log.Error().Err(err).Str("venta_id", ventaID.String()).Msg("facturacion_worker: cannot record failure, venta not found")
		return
	}

	errMsg := cause.Error()
	nextRetry := time.Now().Add(computeRetryBackoff(1))

	comp, err := w.comprobanteRepo.FindByVentaID(ctx, ventaID)
	if err != nil {
		comp = &model.ComprobanteFiscal{
			VentaID:        ventaID,
			Serie:          "A",
			ReceptorRFC:    "XAXX010101000",
			ReceptorNombre: "PUBLICO EN GENERAL",
			Subtotal:       venta.Total,
			IVA:            venta.Total.Mul(cfdi.TasaIVA).Round(2),
			Total:          venta.Total.Add(venta.Total.Mul(cfdi.TasaIVA).Round(2)),
			Estado:         "pendiente",
			Intentos:       1,
			NextRetryAt:    &nextRetry,
			LastError:      &errMsg,
		}
		if err := w.comprobanteRepo.Create(ctx, comp); err != nil {
			log.Error().Err(err).Str("venta_id", ventaID.String()).Msg("facturacion_worker: failed to create pending comprobante")
		}
		return
	}

	comp.Estado = "pendiente"
	comp.Intentos++
	comp.LastError = &errMsg
	comp.NextRetryAt = &nextRetry
	_ = w.comprobanteRepo.Update(ctx, comp)
	_ = clienteEmail // the cron re-emission does not re-send email
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

// computeRetryBackoff returns the cron delay before attempt n: 1m, 2m, 4m …
func computeRetryBackoff(intentos int) time.Duration {
	if intentos < 1 {
		intentos = 1
	}
	if intentos > 6 {
		intentos = 6
	}
	return time.Duration(1<<uint(intentos-1)) * time.Minute
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
