package service

import (
	"errors"
	"fmt"

	"github.com/apenap/sis.ret-alpha/internal/model"

	"github.com/google/uuid"
)

// Business-rule failures are typed so callers can branch with errors.Is /
// errors.As. Storage failures travel wrapped and are never swallowed.

var (
	// ErrCarritoVacio: ProcesarVenta requires a non-empty cart.
	ErrCarritoVacio = errors.New("el carrito está vacío")

	// ErrFolioDuplicado wraps a unique-constraint hit on folio after the
	// bounded regenerate-and-retry loop is exhausted.
	ErrFolioDuplicado = errors.New("no se pudo generar un folio único")
)

// StockInsuficienteError names the first cart line that cannot be served.
type StockInsuficienteError struct {
	ProductoID uuid.UUID
	Nombre     string
	Stock      int
	Solicitado int
}

func (e *StockInsuficienteError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %d, solicitado %d",
		e.Nombre, e.Stock, e.Solicitado)
}

// NoEncontradoError reports a missing referenced entity.
type NoEncontradoError struct {
	Entidad string
	ID      string
}

func (e *NoEncontradoError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Entidad, e.ID)
}

// TransicionInvalidaError reports an illegal state transition attempt on a
// document or sale.
type TransicionInvalidaError struct {
	Folio  string
	Tipo   model.TipoDocumento
	Estado string
	Accion string
}

func (e *TransicionInvalidaError) Error() string {
	return fmt.Sprintf("transición inválida: %s (%s) en estado %q no admite %q",
		e.Folio, e.Tipo, e.Estado, e.Accion)
}

// ConversionInvalidaError reports a conversion outside the fixed forward
// chain, or from a state that is not conversion-eligible.
type ConversionInvalidaError struct {
	TipoOrigen  model.TipoDocumento
	TipoDestino model.TipoDocumento
	Motivo      string
}

func (e *ConversionInvalidaError) Error() string {
	return fmt.Sprintf("conversión inválida de %s a %s: %s", e.TipoOrigen, e.TipoDestino, e.Motivo)
}
