// Package cfdi builds CFDI 4.0 (Comprobante Fiscal Digital por Internet)
// XML documents for ventas al público. Timbrado is stubbed: the complemento
// carries a locally generated folio fiscal instead of a PAC signature.
package cfdi

import (
	"encoding/xml"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// RFCPublicoGeneral is the SAT generic RFC used when the customer did
	// not provide fiscal data.
	RFCPublicoGeneral = "XAXX010101000"

	NombrePublicoGeneral  = "PUBLICO EN GENERAL"
	RegimenSinObligacion  = "616"
	UsoCFDIDefault        = "G03"
	ClaveProdServDefault  = "01010101"
	ClaveUnidadDefault    = "E48"
	UnidadDefault         = "H87"
	serieDefault          = "A"
	versionCFDI           = "4.0"
	tipoComprobanteVenta  = "I"   // Ingreso
	formaPagoEfectivo     = "01"  // Efectivo
	metodoPagoUnaExhibida = "PUE" // Pago en una sola exhibición
	monedaMXN             = "MXN"
	impuestoIVA           = "002"
	tasaIVATexto          = "0.160000"
)

// TasaIVA is the flat 16% IVA applied to every concepto.
var TasaIVA = decimal.NewFromFloat(0.16)

// Emisor is the issuing business, loaded from the facturación settings.
type Emisor struct {
	RFC           string
	Nombre        string
	RegimenFiscal string
	CodigoPostal  string
}

// Receptor is the invoice recipient. Zero-value fields fall back to the
// público-en-general defaults.
type Receptor struct {
	RFC           string
	Nombre        string
	RegimenFiscal string
	CodigoPostal  string
	UsoCFDI       string
}

// Concepto is one invoice line.
type Concepto struct {
	ClaveProdServ string
	ClaveUnidad   string
	Unidad        string
	Descripcion   string
	Cantidad      int
	ValorUnitario decimal.Decimal
}

// ─── XML shapes ──────────────────────────────────────────────────────────────

type comprobanteXML struct {
	XMLName           xml.Name `xml:"cfdi:Comprobante"`
	XmlnsCfdi         string   `xml:"xmlns:cfdi,attr"`
	XmlnsXsi          string   `xml:"xmlns:xsi,attr"`
	SchemaLocation    string   `xml:"xsi:schemaLocation,attr"`
	Version           string   `xml:"Version,attr"`
	Serie             string   `xml:"Serie,attr"`
	Folio             string   `xml:"Folio,attr"`
	Fecha             string   `xml:"Fecha,attr"`
	FormaPago         string   `xml:"FormaPago,attr"`
	SubTotal          string   `xml:"SubTotal,attr"`
	Moneda            string   `xml:"Moneda,attr"`
	Total             string   `xml:"Total,attr"`
	TipoDeComprobante string   `xml:"TipoDeComprobante,attr"`
	Exportacion       string   `xml:"Exportacion,attr"`
	MetodoPago        string   `xml:"MetodoPago,attr"`
	LugarExpedicion   string   `xml:"LugarExpedicion,attr"`

	Emisor      emisorXML      `xml:"cfdi:Emisor"`
	Receptor    receptorXML    `xml:"cfdi:Receptor"`
	Conceptos   conceptosXML   `xml:"cfdi:Conceptos"`
	Impuestos   impuestosXML   `xml:"cfdi:Impuestos"`
	Complemento complementoXML `xml:"cfdi:Complemento"`
}

type emisorXML struct {
	RFC           string `xml:"Rfc,attr"`
	Nombre        string `xml:"Nombre,attr"`
	RegimenFiscal string `xml:"RegimenFiscal,attr"`
}

type receptorXML struct {
	RFC                     string `xml:"Rfc,attr"`
	Nombre                  string `xml:"Nombre,attr"`
	DomicilioFiscalReceptor string `xml:"DomicilioFiscalReceptor,attr"`
	RegimenFiscalReceptor   string `xml:"RegimenFiscalReceptor,attr"`
	UsoCFDI                 string `xml:"UsoCFDI,attr"`
}

type conceptosXML struct {
	Conceptos []conceptoXML `xml:"cfdi:Concepto"`
}

type conceptoXML struct {
	ClaveProdServ  string             `xml:"ClaveProdServ,attr"`
	Cantidad       string             `xml:"Cantidad,attr"`
	ClaveUnidad    string             `xml:"ClaveUnidad,attr"`
	Unidad         string             `xml:"Unidad,attr"`
	Descripcion    string             `xml:"Descripcion,attr"`
	ValorUnitario  string             `xml:"ValorUnitario,attr"`
	Importe        string             `xml:"Importe,attr"`
	ObjetoImp      string             `xml:"ObjetoImp,attr"`
	ImpuestosLinea *impuestosLineaXML `xml:"cfdi:Impuestos"`
}

type impuestosLineaXML struct {
	Traslados trasladosXML `xml:"cfdi:Traslados"`
}

type trasladosXML struct {
	Traslados []trasladoXML `xml:"cfdi:Traslado"`
}

type trasladoXML struct {
	Base       string `xml:"Base,attr"`
	Impuesto   string `xml:"Impuesto,attr"`
	TipoFactor string `xml:"TipoFactor,attr"`
	TasaOCuota string `xml:"TasaOCuota,attr"`
	Importe    string `xml:"Importe,attr"`
}

type impuestosXML struct {
	TotalImpuestosTrasladados string       `xml:"TotalImpuestosTrasladados,attr"`
	Traslados                 trasladosXML `xml:"cfdi:Traslados"`
}

type complementoXML struct {
	Timbre timbreXML `xml:"tfd:TimbreFiscalDigital"`
}

type timbreXML struct {
	XmlnsTfd         string `xml:"xmlns:tfd,attr"`
	Version          string `xml:"Version,attr"`
	UUID             string `xml:"UUID,attr"`
	FechaTimbrado    string `xml:"FechaTimbrado,attr"`
	RfcProvCertif    string `xml:"RfcProvCertif,attr"`
	NoCertificadoSAT string `xml:"NoCertificadoSAT,attr"`
}

// ─── Builder ─────────────────────────────────────────────────────────────────

// Resultado carries the serialized XML plus the amounts and folio fiscal the
// caller persists on the comprobante record.
type Resultado struct {
	XML         []byte
	FolioFiscal string
	Subtotal    decimal.Decimal
	IVA         decimal.Decimal
	Total       decimal.Decimal
	ReceptorRFC string
	Receptor    string
}

// Construir builds the complete CFDI 4.0 document for a venta. Prices in the
// POS are IVA-inclusive, so each line's base is its subtotal and the IVA is
// added on top for the fiscal breakdown.
func Construir(emisor Emisor, receptor Receptor, folio string, fecha time.Time, conceptos []Concepto) (*Resultado, error) {
	if receptor.RFC == "" {
		receptor.RFC = RFCPublicoGeneral
		receptor.Nombre = NombrePublicoGeneral
		receptor.RegimenFiscal = RegimenSinObligacion
		receptor.CodigoPostal = emisor.CodigoPostal
	}
	if receptor.UsoCFDI == "" {
		receptor.UsoCFDI = UsoCFDIDefault
	}

	subtotal := decimal.Zero
	lineas := make([]conceptoXML, 0, len(conceptos))
	for _, c := range conceptos {
		if c.ClaveProdServ == "" {
			c.ClaveProdServ = ClaveProdServDefault
		}
		if c.ClaveUnidad == "" {
			c.ClaveUnidad = ClaveUnidadDefault
		}
		if c.Unidad == "" {
			c.Unidad = UnidadDefault
		}
		importe := c.ValorUnitario.Mul(decimal.NewFromInt(int64(c.Cantidad)))
		subtotal = subtotal.Add(importe)
		ivaLinea := importe.Mul(TasaIVA).Round(2)

		lineas = append(lineas, conceptoXML{
			ClaveProdServ: c.ClaveProdServ,
			Cantidad:      decimal.NewFromInt(int64(c.Cantidad)).String(),
			ClaveUnidad:   c.ClaveUnidad,
			Unidad:        c.Unidad,
			Descripcion:   c.Descripcion,
			ValorUnitario: c.ValorUnitario.StringFixed(2),
			Importe:       importe.StringFixed(2),
			ObjetoImp:     "02",
			ImpuestosLinea: &impuestosLineaXML{
				Traslados: trasladosXML{
					Traslados: []trasladoXML{{
						Base:       importe.StringFixed(2),
						Impuesto:   impuestoIVA,
						TipoFactor: "Tasa",
						TasaOCuota: tasaIVATexto,
						Importe:    ivaLinea.StringFixed(2),
					}},
				},
			},
		})
	}

	iva := subtotal.Mul(TasaIVA).Round(2)
	total := subtotal.Add(iva)
	folioFiscal := uuid.New().String()

	doc := comprobanteXML{
		XmlnsCfdi:         "http://www.sat.gob.mx/cfd/4",
		XmlnsXsi:          "http://www.w3.org/2001/XMLSchema-instance",
		SchemaLocation:    "http://www.sat.gob.mx/cfd/4 http://www.sat.gob.mx/sitio_internet/cfd/4/cfdv40.xsd",
		Version:           versionCFDI,
		Serie:             serieDefault,
		Folio:             folio,
		Fecha:             fecha.Format("2006-01-02T15:04:05"),
		FormaPago:         formaPagoEfectivo,
		SubTotal:          subtotal.StringFixed(2),
		Moneda:            monedaMXN,
		Total:             total.StringFixed(2),
		TipoDeComprobante: tipoComprobanteVenta,
		Exportacion:       "01",
		MetodoPago:        metodoPagoUnaExhibida,
		LugarExpedicion:   emisor.CodigoPostal,
		Emisor: emisorXML{
			RFC:           emisor.RFC,
			Nombre:        emisor.Nombre,
			RegimenFiscal: emisor.RegimenFiscal,
		},
		Receptor: receptorXML{
			RFC:                     receptor.RFC,
			Nombre:                  receptor.Nombre,
			DomicilioFiscalReceptor: receptor.CodigoPostal,
			RegimenFiscalReceptor:   receptor.RegimenFiscal,
			UsoCFDI:                 receptor.UsoCFDI,
		},
		Conceptos: conceptosXML{Conceptos: lineas},
		Impuestos: impuestosXML{
			TotalImpuestosTrasladados: iva.StringFixed(2),
			Traslados: trasladosXML{
				Traslados: []trasladoXML{{
					Base:       subtotal.StringFixed(2),
					Impuesto:   impuestoIVA,
					TipoFactor: "Tasa",
					TasaOCuota: tasaIVATexto,
					Importe:    iva.StringFixed(2),
				}},
			},
		},
		Complemento: complementoXML{
			Timbre: timbreXML{
				XmlnsTfd:         "http://www.sat.gob.mx/TimbreFiscalDigital",
				Version:          "1.1",
				UUID:             folioFiscal,
				FechaTimbrado:    time.Now().Format("2006-01-02T15:04:05"),
				RfcProvCertif:    "SAT970701NN3",
				NoCertificadoSAT: "30001000000500003416",
			},
		},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}

	return &Resultado{
		XML:         append([]byte(xml.Header), out...),
		FolioFiscal: folioFiscal,
		Subtotal:    subtotal,
		IVA:         iva,
		Total:       total,
		ReceptorRFC: receptor.RFC,
		Receptor:    receptor.Nombre,
	}, nil
}
