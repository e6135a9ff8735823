package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apenap/sis.ret-alpha/internal/dto"
	"github.com/apenap/sis.ret-alpha/internal/folio"
	"github.com/apenap/sis.ret-alpha/internal/model"
	"github.com/apenap/sis.ret-alpha/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxIntentosFolio bounds the regenerate-and-retry loop when the folio
// unique index rejects an insert.
const maxIntentosFolio = 3

// Dispatcher enqueues async jobs; satisfied by worker.Dispatcher. Declared
// here so the sale processor does not depend on the worker package.
type Dispatcher interface {
	EnqueueFacturacion(ctx context.Context, payload interface{}) error
}

type VentaService interface {
	ProcesarVenta(ctx context.Context, req dto.ProcesarVentaRequest) (*dto.VentaResponse, error)
	AnularVenta(ctx context.Context, id uuid.UUID, motivo string) error
	RegistrarDevolucion(ctx context.Context, ventaID uuid.UUID, req dto.RegistrarDevolucionRequest) error
	ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
	ResumenVentas(ctx context.Context, desde, hasta time.Time) (*dto.ResumenVentasResponse, error)
}

type ventaService struct {
	repo           repository.VentaRepository
	devolucionRepo repository.DevolucionRepository
	productoRepo   repository.ProductoRepository
	inventario     InventarioService
	dispatcher     Dispatcher
}

func NewVentaService(
	repo repository.VentaRepository,
	devolucionRepo repository.DevolucionRepository,
	productoRepo repository.ProductoRepository,
	inventario InventarioService,
	dispatcher Dispatcher,
) VentaService {
	return &ventaService{
		repo:           repo,
		devolucionRepo: devolucionRepo,
		productoRepo:   productoRepo,
		inventario:     inventario,
		dispatcher:     dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── ProcesarVenta ─────────────────────────────────────────────────────────────
// All-or-nothing sale creation:
//  1. Non-empty cart, total = Σ cantidad × precio, cambio = max(0, efectivo − total)
//  2. One transaction: debit stock per line in cart order, then insert the
//     venta with its detalles. The first line with insufficient stock aborts
//     everything; no partial debit survives.
//  3. A duplicate folio restarts the whole transaction with a fresh folio,
//     at most maxIntentosFolio times.
//  4. (async) best-effort CFDI job dispatch after commit.
//
// Efectivo below the total is accepted: cambio is clamped at zero and the
// sale still completes.

func (s *ventaService) ProcesarVenta(ctx context.Context, req dto.ProcesarVentaRequest) (*dto.VentaResponse, error) {
	if len(req.Items) == 0 {
		return nil, ErrCarritoVacio
	}

	var clienteID *uuid.UUID
	if req.ClienteID != nil {
		cid, err := uuid.Parse(*req.ClienteID)
		if err != nil {
			return nil, fmt.Errorf("cliente_id inválido: %w", err)
		}
		clienteID = &cid
	}

	type lineaResuelta struct {
		productoID uuid.UUID
		cantidad   int
		precio     decimal.Decimal
		subtotal   decimal.Decimal
	}

	lineas := make([]lineaResuelta, 0, len(req.Items))
	total := decimal.Zero
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("producto_id inválido: %w", err)
		}
		subtotal := item.PrecioUnitario.Mul(decimal.NewFromInt(int64(item.Cantidad)))
		total = total.Add(subtotal)
		lineas = append(lineas, lineaResuelta{
			productoID: pid,
			cantidad:   item.Cantidad,
			precio:     item.PrecioUnitario,
			subtotal:   subtotal,
		})
	}

	cambio := req.Efectivo.Sub(total)
	if cambio.IsNegative() {
		cambio = decimal.Zero
	}

	var venta model.Venta
	var txErr error
	for intento := 0; intento < maxIntentosFolio; intento++ {
		ventaID := uuid.New()
		venta = model.Venta{
			ID:        ventaID,
			Folio:     folio.GenerarTicket(),
			ClienteID: clienteID,
			Total:     total,
			Efectivo:  req.Efectivo,
			Cambio:    cambio,
			Estado:    model.VentaCompletada,
		}
		for _, l := range lineas {
			venta.Detalles = append(venta.Detalles, model.DetalleVenta{
				VentaID:        ventaID,
				ProductoID:     l.productoID,
				Cantidad:       l.cantidad,
				PrecioUnitario: l.precio,
				Subtotal:       l.subtotal,
			})
		}

		txErr = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			debitadas := 0
			for _, l := range lineas {
				err := s.inventario.DescontarStockTx(ctx, tx, l.productoID, l.cantidad,
					fmt.Sprintf("Venta %s", venta.Folio), &ventaID)
				if err != nil {
					if tx == nil {
						// Without a live transaction there is no rollback:
						// undo the debits applied so far.
						for _, d := range lineas[:debitadas] {
							_ = s.productoRepo.RestaurarStockTx(nil, d.productoID, d.cantidad)
						}
					}
					return err
				}
				debitadas++
			}
			if err := s.repo.Create(ctx, tx, &venta); err != nil {
				if tx == nil {
					for _, d := range lineas[:debitadas] {
						_ = s.productoRepo.RestaurarStockTx(nil, d.productoID, d.cantidad)
					}
				}
				return err
			}
			return nil
		})
		if !errors.Is(txErr, gorm.ErrDuplicatedKey) {
			break
		}
	}
	if errors.Is(txErr, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("%w: %v", ErrFolioDuplicado, txErr)
	}
	if txErr != nil {
		return nil, txErr
	}

	// Async CFDI job — best-effort, fire & forget.
	if s.dispatcher != nil {
		payload := map[string]interface{}{"venta_id": venta.ID.String()}
		if req.ClienteEmail != nil && *req.ClienteEmail != "" {
			payload["cliente_email"] = *req.ClienteEmail
		}
		_ = s.dispatcher.EnqueueFacturacion(ctx, payload)
	}

	return ventaToResponse(&venta), nil
}

// ── AnularVenta ───────────────────────────────────────────────────────────────

func (s *ventaService) AnularVenta(ctx context.Context, id uuid.UUID, motivo string) error {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return &NoEncontradoError{Entidad: "venta", ID: id.String()}
	}
	if venta.Estado != model.VentaCompletada {
		return &TransicionInvalidaError{Folio: venta.Folio, Tipo: "venta", Estado: venta.Estado, Accion: "anular"}
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Compare-and-set before touching stock: a concurrent anulación
		// loses the race here and never reaches the restores.
		cambiado, err := s.repo.UpdateEstadoCASTx(tx, id, model.VentaCompletada, model.VentaCancelada)
		if err != nil {
			return err
		}
		if !cambiado {
			return &TransicionInvalidaError{Folio: venta.Folio, Tipo: "venta", Estado: venta.Estado, Accion: "anular"}
		}
		for _, d := range venta.Detalles {
			err := s.inventario.RestaurarStockTx(ctx, tx, d.ProductoID, d.Cantidad,
				"anulacion", fmt.Sprintf("Anulación venta %s — %s", venta.Folio, motivo), &venta.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ── RegistrarDevolucion ───────────────────────────────────────────────────────
// Partial or full return against a completed sale. Quantities are capped by
// what the sale actually contained; unit prices come from the sold line, not
// from the request.

func (s *ventaService) RegistrarDevolucion(ctx context.Context, ventaID uuid.UUID, req dto.RegistrarDevolucionRequest) error {
	venta, err := s.repo.FindByID(ctx, ventaID)
	if err != nil {
		return &NoEncontradoError{Entidad: "venta", ID: ventaID.String()}
	}
	if venta.Estado != model.VentaCompletada {
		return &TransicionInvalidaError{Folio: venta.Folio, Tipo: "venta", Estado: venta.Estado, Accion: "devolver"}
	}

	// The same product may appear on several sale lines; the returnable cap
	// is the summed quantity across all of them.
	type lineaVendida struct {
		cantidad int
		precio   decimal.Decimal
	}
	vendidas := make(map[uuid.UUID]*lineaVendida, len(venta.Detalles))
	for i := range venta.Detalles {
		d := &venta.Detalles[i]
		if l, ok := vendidas[d.ProductoID]; ok {
			l.cantidad += d.Cantidad
		} else {
			vendidas[d.ProductoID] = &lineaVendida{cantidad: d.Cantidad, precio: d.PrecioUnitario}
		}
	}

	devolucion := model.Devolucion{
		VentaID:         ventaID,
		Motivo:          &req.Motivo,
		TotalDevolucion: decimal.Zero,
	}
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return fmt.Errorf("producto_id inválido: %w", err)
		}
		vendida, ok := vendidas[pid]
		if !ok {
			return fmt.Errorf("el producto %s no pertenece a la venta %s", item.ProductoID, venta.Folio)
		}
		if item.Cantidad > vendida.cantidad {
			return fmt.Errorf("no se pueden devolver %d unidades de %s: la venta contiene %d",
				item.Cantidad, item.ProductoID, vendida.cantidad)
		}
		subtotal := vendida.precio.Mul(decimal.NewFromInt(int64(item.Cantidad)))
		devolucion.TotalDevolucion = devolucion.TotalDevolucion.Add(subtotal)
		devolucion.Detalles = append(devolucion.Detalles, model.DetalleDevolucion{
			ProductoID:     pid,
			Cantidad:       item.Cantidad,
			PrecioUnitario: vendida.precio,
			Subtotal:       subtotal,
		})
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		cambiado, err := s.repo.UpdateEstadoCASTx(tx, ventaID, model.VentaCompletada, model.VentaDevolucion)
		if err != nil {
			return err
		}
		if !cambiado {
			return &TransicionInvalidaError{Folio: venta.Folio, Tipo: "venta", Estado: venta.Estado, Accion: "devolver"}
		}
		if err := s.devolucionRepo.CreateTx(tx, &devolucion); err != nil {
			return err
		}
		for _, d := range devolucion.Detalles {
			err := s.inventario.RestaurarStockTx(ctx, tx, d.ProductoID, d.Cantidad,
				"devolucion", fmt.Sprintf("Devolución venta %s — %s", venta.Folio, req.Motivo), &devolucion.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *ventaService) ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Estado == "" {
		filter.Estado = model.VentaCompletada
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		items = append(items, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ResumenVentas rolls up completed sales between desde and hasta, inclusive.
// A range with no matches yields {0, 0}, never an error.
func (s *ventaService) ResumenVentas(ctx context.Context, desde, hasta time.Time) (*dto.ResumenVentasResponse, error) {
	resumen, err := s.repo.Resumen(ctx, desde, hasta)
	if err != nil {
		return nil, err
	}
	return &dto.ResumenVentasResponse{
		TotalVentas:   resumen.TotalVentas,
		TotalIngresos: resumen.TotalIngresos,
	}, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	detalles := make([]dto.DetalleVentaResponse, 0, len(v.Detalles))
	for _, d := range v.Detalles {
		nombre := ""
		if d.Producto != nil {
			nombre = d.Producto.Nombre
		}
		detalles = append(detalles, dto.DetalleVentaResponse{
			ProductoID:     d.ProductoID.String(),
			Producto:       nombre,
			Cantidad:       d.Cantidad,
			PrecioUnitario: d.PrecioUnitario,
			Subtotal:       d.Subtotal,
		})
	}
	var clienteID *string
	if v.ClienteID != nil {
		s := v.ClienteID.String()
		clienteID = &s
	}
	return &dto.VentaResponse{
		ID:        v.ID.String(),
		Folio:     v.Folio,
		ClienteID: clienteID,
		Detalles:  detalles,
		Total:     v.Total,
		Efectivo:  v.Efectivo,
		Cambio:    v.Cambio,
		Estado:    v.Estado,
		CreatedAt: v.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
