package cfdi

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var emisorPrueba = Emisor{
	RFC:           "TIE123456789",
	Nombre:        "TIENDA SISRET SA DE CV",
	RegimenFiscal: "601",
	CodigoPostal:  "64000",
}

func TestConstruir_MontosConIVA(t *testing.T) {
	res, err := Construir(emisorPrueba, Receptor{}, "20240115-AB12", time.Now(), []Concepto{
		{Descripcion: "Arroz 1kg", Cantidad: 3, ValorUnitario: decimal.NewFromFloat(32.50)},
		{Descripcion: "Aceite 1L", Cantidad: 1, ValorUnitario: decimal.NewFromFloat(55)},
	})
	require.NoError(t, err)

	// subtotal = 97.50 + 55 = 152.50; IVA 16% = 24.40; total = 176.90
	assert.Equal(t, "152.5", res.Subtotal.String())
	assert.Equal(t, "24.4", res.IVA.String())
	assert.Equal(t, "176.9", res.Total.String())
	assert.NotEmpty(t, res.FolioFiscal)

	xml := string(res.XML)
	assert.Contains(t, xml, `SubTotal="152.50"`)
	assert.Contains(t, xml, `Total="176.90"`)
	assert.Contains(t, xml, `TotalImpuestosTrasladados="24.40"`)
	assert.Contains(t, xml, `TasaOCuota="0.160000"`)
	assert.Contains(t, xml, `Impuesto="002"`)
}

func TestConstruir_ReceptorPublicoEnGeneral(t *testing.T) {
	res, err := Construir(emisorPrueba, Receptor{}, "20240115-CD34", time.Now(), []Concepto{
		{Descripcion: "Venta mostrador", Cantidad: 1, ValorUnitario: decimal.NewFromFloat(100)},
	})
	require.NoError(t, err)

	assert.Equal(t, RFCPublicoGeneral, res.ReceptorRFC)
	assert.Equal(t, NombrePublicoGeneral, res.Receptor)

	xml := string(res.XML)
	assert.Contains(t, xml, `Rfc="XAXX010101000"`)
	assert.Contains(t, xml, `RegimenFiscalReceptor="616"`)
	assert.Contains(t, xml, `UsoCFDI="G03"`)
	// Sin domicilio propio, el receptor genérico usa el CP del emisor
	assert.Contains(t, xml, `DomicilioFiscalReceptor="64000"`)
}

func TestConstruir_ReceptorConRFC(t *testing.T) {
	res, err := Construir(emisorPrueba, Receptor{
		RFC:           "GOME850101AB1",
		Nombre:        "GOMEZ MARTINEZ ELENA",
		RegimenFiscal: "612",
		CodigoPostal:  "64720",
		UsoCFDI:       "G01",
	}, "20240115-EF56", time.Now(), []Concepto{
		{Descripcion: "Despensa", Cantidad: 1, ValorUnitario: decimal.NewFromFloat(500)},
	})
	require.NoError(t, err)

	assert.Equal(t, "GOME850101AB1", res.ReceptorRFC)
	xml := string(res.XML)
	assert.Contains(t, xml, `Rfc="GOME850101AB1"`)
	assert.Contains(t, xml, `UsoCFDI="G01"`)
	assert.NotContains(t, xml, "XAXX010101000")
}

func TestConstruir_EstructuraCFDI40(t *testing.T) {
	res, err := Construir(emisorPrueba, Receptor{}, "20240115-GH78", time.Now(), []Concepto{
		{Descripcion: "Producto", Cantidad: 2, ValorUnitario: decimal.NewFromFloat(10)},
	})
	require.NoError(t, err)

	xml := string(res.XML)
	assert.True(t, strings.HasPrefix(xml, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, xml, `<cfdi:Comprobante`)
	assert.Contains(t, xml, `xmlns:cfdi="http://www.sat.gob.mx/cfd/4"`)
	assert.Contains(t, xml, `Version="4.0"`)
	assert.Contains(t, xml, `Serie="A"`)
	assert.Contains(t, xml, `Folio="20240115-GH78"`)
	assert.Contains(t, xml, `Moneda="MXN"`)
	assert.Contains(t, xml, `FormaPago="01"`)
	assert.Contains(t, xml, `MetodoPago="PUE"`)
	assert.Contains(t, xml, `TipoDeComprobante="I"`)
	assert.Contains(t, xml, `LugarExpedicion="64000"`)
	assert.Contains(t, xml, `<tfd:TimbreFiscalDigital`)
	assert.Contains(t, xml, res.FolioFiscal)
}

func TestConstruir_DefaultsSATPorConcepto(t *testing.T) {
	res, err := Construir(emisorPrueba, Receptor{}, "20240115-IJ90", time.Now(), []Concepto{
		{Descripcion: "Sin claves SAT", Cantidad: 1, ValorUnitario: decimal.NewFromFloat(10)},
	})
	require.NoError(t, err)

	xml := string(res.XML)
	assert.Contains(t, xml, `ClaveProdServ="01010101"`)
	assert.Contains(t, xml, `ClaveUnidad="E48"`)
	assert.Contains(t, xml, `Unidad="H87"`)
	assert.Contains(t, xml, `ObjetoImp="02"`)
}
