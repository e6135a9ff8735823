// Package folio generates human-legible document identifiers.
//
// A folio is built from the current date plus a short random suffix; it is
// NOT guaranteed unique by construction. The unique index on each table is
// the source of truth — on a duplicate-key insert the caller regenerates
// and retries (see repository layer).
package folio

import (
	"math/rand/v2"
	"strings"
	"time"
)

const (
	sufijoLen = 4
	charset   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Prefijos por tipo de documento corporativo.
const (
	PrefijoRequisicion      = "REQ"
	PrefijoCotizacionCompra = "COT"
	PrefijoOrdenCompra      = "ORD"
	PrefijoFacturaCompra    = "FAC"
	PrefijoCotizacionVenta  = "COTV"
	PrefijoRemision         = "REM"
	PrefijoFacturaVenta     = "FACV"
)

// Generar produces a corporate document folio: {PREFIJO}-{YYMMDD}-{XXXX}.
func Generar(prefijo string) string {
	return prefijo + "-" + time.Now().Format("060102") + "-" + sufijo()
}

// GenerarTicket produces a point-of-sale ticket folio: {YYYYMMDD}-{XXXX}.
func GenerarTicket() string {
	return time.Now().Format("20060102") + "-" + sufijo()
}

func sufijo() string {
	var b strings.Builder
	b.Grow(sufijoLen)
	for i := 0; i < sufijoLen; i++ {
		b.WriteByte(charset[rand.IntN(len(charset))])
	}
	return b.String()
}
