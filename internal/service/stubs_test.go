package service_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/apenap/sis.ret-alpha/internal/dto"
	"github.com/apenap/sis.ret-alpha/internal/model"
	"github.com/apenap/sis.ret-alpha/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubProductoRepo is an in-memory ProductoRepository. The mutex makes the
// guarded stock debit behave like the real UPDATE ... WHERE stock >= ? so the
// concurrency tests are meaningful.
type stubProductoRepo struct {
	mu        sync.Mutex
	productos map[uuid.UUID]*model.Producto
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Codigo != nil {
		for _, existente := range r.productos {
			if existente.Codigo != nil && *existente.Codigo == *p.Codigo {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	return r.find(id)
}

func (r *stubProductoRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	return r.find(id)
}

func (r *stubProductoRepo) find(id uuid.UUID) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *p
	return &copia, nil
}

func (r *stubProductoRepo) Buscar(_ context.Context, termino string, limit int) ([]model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.Producto
	for _, p := range r.productos {
		if p.Activo && strings.Contains(strings.ToLower(p.Nombre), strings.ToLower(termino)) {
			res = append(res, *p)
			if len(res) == limit {
				break
			}
		}
	}
	return res, nil
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.Producto
	for _, p := range r.productos {
		if p.Activo {
			res = append(res, *p)
		}
	}
	return res, int64(len(res)), nil
}

func (r *stubProductoRepo) ListBajoMinimo(_ context.Context) ([]model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.Producto
	for _, p := range r.productos {
		if p.Activo && p.Stock <= p.StockMinimo {
			res = append(res, *p)
		}
	}
	return res, nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = false
	return nil
}

func (r *stubProductoRepo) DescontarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok || p.Stock < cantidad {
		return 0, nil
	}
	p.Stock -= cantidad
	return 1, nil
}

func (r *stubProductoRepo) RestaurarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock += cantidad
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

func (r *stubProductoRepo) stock(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.productos[id].Stock
}

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// stubVentaRepo is an in-memory VentaRepository with a unique folio index.
// dupRestantes forces the next N creates to fail with ErrDuplicatedKey so
// the folio retry loop can be exercised.
type stubVentaRepo struct {
	mu           sync.Mutex
	ventas       map[uuid.UUID]*model.Venta
	folios       map[string]bool
	dupRestantes int
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{
		ventas: make(map[uuid.UUID]*model.Venta),
		folios: make(map[string]bool),
	}
}

func (r *stubVentaRepo) Create(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dupRestantes > 0 {
		r.dupRestantes--
		return gorm.ErrDuplicatedKey
	}
	if r.folios[v.Folio] {
		return gorm.ErrDuplicatedKey
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	r.folios[v.Folio] = true
	r.ventas[v.ID] = v
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVentaRepo) UpdateEstadoCASTx(_ *gorm.DB, id uuid.UUID, desde, hacia string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ventas[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if v.Estado != desde {
		return false, nil
	}
	v.Estado = hacia
	return true, nil
}

func (r *stubVentaRepo) List(_ context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.Venta
	for _, v := range r.ventas {
		if filter.Estado != "" && filter.Estado != "all" && v.Estado != filter.Estado {
			continue
		}
		res = append(res, *v)
	}
	return res, int64(len(res)), nil
}

func (r *stubVentaRepo) Resumen(_ context.Context, desde, hasta time.Time) (*repository.Resumen, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := &repository.Resumen{TotalIngresos: decimal.Zero}
	for _, v := range r.ventas {
		if v.Estado != model.VentaCompletada {
			continue
		}
		if v.CreatedAt.Before(desde) || v.CreatedAt.After(hasta) {
			continue
		}
		res.TotalVentas++
		res.TotalIngresos = res.TotalIngresos.Add(v.Total)
	}
	return res, nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

// stubMovimientoRepo captures stock movements for assertion.
type stubMovimientoRepo struct {
	mu          sync.Mutex
	movimientos []model.MovimientoStock
}

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) List(_ context.Context, filter repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.MovimientoStock
	for _, m := range r.movimientos {
		if filter.Tipo != "" && m.Tipo != filter.Tipo {
			continue
		}
		if filter.ProductoID != nil && m.ProductoID != *filter.ProductoID {
			continue
		}
		res = append(res, m)
	}
	return res, int64(len(res)), nil
}

func (r *stubMovimientoRepo) porTipo(tipo string) []model.MovimientoStock {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.MovimientoStock
	for _, m := range r.movimientos {
		if m.Tipo == tipo {
			res = append(res, m)
		}
	}
	return res
}

var _ repository.MovimientoStockRepository = (*stubMovimientoRepo)(nil)

// stubDevolucionRepo stores created devoluciones.
type stubDevolucionRepo struct {
	devoluciones []model.Devolucion
}

func (r *stubDevolucionRepo) CreateTx(_ *gorm.DB, d *model.Devolucion) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.devoluciones = append(r.devoluciones, *d)
	return nil
}

var _ repository.DevolucionRepository = (*stubDevolucionRepo)(nil)

// stubDispatcher records enqueued payloads instead of touching Redis.
type stubDispatcher struct {
	payloads []interface{}
}

func (d *stubDispatcher) EnqueueFacturacion(_ context.Context, payload interface{}) error {
	d.payloads = append(d.payloads, payload)
	return nil
}

// stubDocumentoRepo is an in-memory DocumentoRepository. UpdateEstadoCAS
// mirrors the real compare-and-set semantics.
type stubDocumentoRepo struct {
	mu     sync.Mutex
	docs   map[uuid.UUID]*model.Documento
	folios map[string]bool
}

func newStubDocumentoRepo() *stubDocumentoRepo {
	return &stubDocumentoRepo{
		docs:   make(map[uuid.UUID]*model.Documento),
		folios: make(map[string]bool),
	}
}

func (r *stubDocumentoRepo) Create(_ context.Context, _ *gorm.DB, d *model.Documento) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.folios[d.Folio] {
		return gorm.ErrDuplicatedKey
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	for i := range d.Detalles {
		d.Detalles[i].DocumentoID = d.ID
	}
	r.folios[d.Folio] = true
	copia := *d
	r.docs[d.ID] = &copia
	return nil
}

func (r *stubDocumentoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Documento, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *d
	copia.Detalles = append([]model.DetalleDocumento(nil), d.Detalles...)
	return &copia, nil
}

func (r *stubDocumentoRepo) List(_ context.Context, filter dto.DocumentoFilter) ([]model.Documento, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.Documento
	for _, d := range r.docs {
		if filter.Tipo != "" && string(d.Tipo) != filter.Tipo {
			continue
		}
		if filter.Estado != "" && filter.Estado != "todos" && d.Estado != filter.Estado {
			continue
		}
		res = append(res, *d)
	}
	return res, int64(len(res)), nil
}

func (r *stubDocumentoRepo) UpdateEstadoCAS(_ context.Context, id uuid.UUID, desde, hacia string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok || d.Estado != desde {
		return false, nil
	}
	d.Estado = hacia
	return true, nil
}

func (r *stubDocumentoRepo) ReemplazarDetallesTx(_ *gorm.DB, docID uuid.UUID, detalles []model.DetalleDocumento, total decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[docID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.Detalles = append([]model.DetalleDocumento(nil), detalles...)
	d.Total = total
	return nil
}

func (r *stubDocumentoRepo) DB() *gorm.DB { return nil }

var _ repository.DocumentoRepository = (*stubDocumentoRepo)(nil)

// stubProveedorRepo is an in-memory ProveedorRepository.
type stubProveedorRepo struct {
	proveedores map[uuid.UUID]*model.Proveedor
}

func newStubProveedorRepo() *stubProveedorRepo {
	return &stubProveedorRepo{proveedores: make(map[uuid.UUID]*model.Proveedor)}
}

func (r *stubProveedorRepo) Create(_ context.Context, p *model.Proveedor) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.proveedores[p.ID] = p
	return nil
}

func (r *stubProveedorRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Proveedor, error) {
	p, ok := r.proveedores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProveedorRepo) List(_ context.Context) ([]model.Proveedor, error) {
	var res []model.Proveedor
	for _, p := range r.proveedores {
		if p.Activo {
			res = append(res, *p)
		}
	}
	return res, nil
}

func (r *stubProveedorRepo) Update(_ context.Context, p *model.Proveedor) error {
	r.proveedores[p.ID] = p
	return nil
}

func (r *stubProveedorRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	p, ok := r.proveedores[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = false
	return nil
}

var _ repository.ProveedorRepository = (*stubProveedorRepo)(nil)

// ── Seed helpers ──────────────────────────────────────────────────────────────

func seedProducto(repo *stubProductoRepo, nombre string, precio float64, stock, minimo int) *model.Producto {
	p := &model.Producto{
		ID:          uuid.New(),
		Nombre:      nombre,
		PrecioVenta: decimal.NewFromFloat(precio),
		Stock:       stock,
		StockMinimo: minimo,
		ProveedorID: uuid.New(),
		Activo:      true,
	}
	repo.mu.Lock()
	repo.productos[p.ID] = p
	repo.mu.Unlock()
	return p
}

func seedProveedor(repo *stubProveedorRepo, nombre string) *model.Proveedor {
	p := &model.Proveedor{ID: uuid.New(), Nombre: nombre, Activo: true}
	repo.proveedores[p.ID] = p
	return p
}
