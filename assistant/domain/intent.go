package domain

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Acciones soportadas por el asistente.
const (
	AccionReporte    = "reporte"
	AccionExportar   = "exportar"
	AccionPronostico = "pronostico"
)

// Recursos consultables.
const (
	RecursoResumen          = "resumen"
	RecursoVentasPorDia     = "ventas_por_dia"
	RecursoTopProductos     = "top_productos"
	RecursoMixPago          = "mix_pago"
	RecursoStockBajo        = "stock_bajo"
	RecursoPronosticoVentas = "pronostico_ventas"
)

// Metric values for top product rankings.
const (
	MetricUnidades = "unidades"
	MetricMonto    = "monto"
)

// Export formats.
const (
	FormatoPDF   = "pdf"
	FormatoExcel = "excel"
)

// Sort orders.
const (
	OrderDesc = "desc"
	OrderAsc  = "asc"
)

// Estaciones (hemisferio sur).
const (
	SeasonVerano    = "verano"
	SeasonOtono     = "otono"
	SeasonInvierno  = "invierno"
	SeasonPrimavera = "primavera"
)

// Params carries the optional slots extracted from a query. Every field is a
// pointer so absent and zero can be told apart on the wire.
type Params struct {
	Dias              *int     `json:"dias,omitempty"`
	Metric            *string  `json:"metric,omitempty"`
	Umbral            *int     `json:"umbral,omitempty"`
	Formato           *string  `json:"formato,omitempty"`
	Order             *string  `json:"order,omitempty"`
	Categoria         *string  `json:"categoria,omitempty"`
	Exclude           *string  `json:"exclude,omitempty"`
	Start             *string  `json:"start,omitempty"`
	End               *string  `json:"end,omitempty"`
	Year              *int     `json:"year,omitempty"`
	Month             *int     `json:"month,omitempty"`
	Season            *string  `json:"season,omitempty"`
	Fecha             *string  `json:"fecha,omitempty"`
	MinMonto          *float64 `json:"min_monto,omitempty"`
	MaxMonto          *float64 `json:"max_monto,omitempty"`
	MinPrecioUnitario *float64 `json:"min_precio_unitario,omitempty"`
	MaxPrecioUnitario *float64 `json:"max_precio_unitario,omitempty"`
}

// Intent is the structured outcome of resolving a user query.
type Intent struct {
	Accion  *string `json:"accion"`
	Recurso string  `json:"recurso"`
	Params  Params  `json:"params"`
}

// Resolution is the envelope returned to callers. A nil Intent means the
// query was conversational and Message carries the reply.
type Resolution struct {
	Intent  *Intent `json:"intent"`
	Message string  `json:"message,omitempty"`
}

// ModelReply is the decoded payload a hosted model produced for a query.
// Intent is kept loosely typed until the orchestrator vets it.
type ModelReply struct {
	Intent  any
	Message string
}

func strIn(v *string, allowed ...string) bool {
	if v == nil {
		return true
	}
	for _, a := range allowed {
		if *v == a {
			return true
		}
	}
	return false
}

func isISODate(s string) bool {
	t, err := time.Parse("2006-01-02", s)
	return err == nil && t.Format("2006-01-02") == s
}

// Sanitize drops slot values outside their closed vocabularies instead of
// failing the whole intent. Model output is treated as untrusted.
func (p *Params) Sanitize() {
	if !strIn(p.Metric, MetricUnidades, MetricMonto) {
		p.Metric = nil
	}
	if !strIn(p.Order, OrderDesc, OrderAsc) {
		p.Order = nil
	}
	if !strIn(p.Formato, FormatoPDF, FormatoExcel) {
		p.Formato = nil
	}
	if !strIn(p.Season, SeasonVerano, SeasonOtono, SeasonInvierno, SeasonPrimavera) {
		p.Season = nil
	}
	if p.Start != nil && !isISODate(*p.Start) {
		p.Start = nil
	}
	if p.End != nil && !isISODate(*p.End) {
		p.End = nil
	}
	if p.Fecha != nil && !isISODate(*p.Fecha) {
		p.Fecha = nil
	}
	if p.Month != nil && (*p.Month < 1 || *p.Month > 12) {
		p.Month = nil
	}
}

// Validate checks that the intent names a known recurso and, when present,
// a known accion.
func (i Intent) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Recurso,
			validation.Required,
			validation.In(
				RecursoResumen,
				RecursoVentasPorDia,
				RecursoTopProductos,
				RecursoMixPago,
				RecursoStockBajo,
				RecursoPronosticoVentas,
			),
		),
		validation.Field(&i.Accion,
			validation.In(AccionReporte, AccionExportar, AccionPronostico),
		),
	)
}
