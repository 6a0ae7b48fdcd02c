package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ventia-app/ventia/assistant/domain"
)

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func extract(t *testing.T, text string) domain.Intent {
	t.Helper()
	e := NewRuleExtractor(DefaultExtractorConfig())
	intent := e.Extract(text, testNow)
	require.NotNil(t, intent.Accion)
	require.NotEmpty(t, intent.Recurso)
	return intent
}

func TestAccentInsensitivity(t *testing.T) {
	a := extract(t, "cuál fue el producto más vendido")
	b := extract(t, "cual fue el producto mas vendido")
	assert.Equal(t, a, b)
	assert.Equal(t, domain.RecursoTopProductos, a.Recurso)
}

func TestExportPrecedesTopProducts(t *testing.T) {
	intent := extract(t, "exportar top productos más vendidos")
	assert.Equal(t, domain.AccionExportar, *intent.Accion)
	assert.Equal(t, domain.RecursoTopProductos, intent.Recurso)
	require.NotNil(t, intent.Params.Formato)
	assert.Equal(t, domain.FormatoPDF, *intent.Params.Formato)
}

func TestExportFormatoExcel(t *testing.T) {
	intent := extract(t, "descargar el resumen en excel")
	assert.Equal(t, domain.AccionExportar, *intent.Accion)
	assert.Equal(t, domain.RecursoResumen, intent.Recurso)
	require.NotNil(t, intent.Params.Formato)
	assert.Equal(t, domain.FormatoExcel, *intent.Params.Formato)
}

func TestExportExplicitDateRange(t *testing.T) {
	intent := extract(t, "exportar ventas desde 01/03/2025 hasta 15/03/2025")
	require.NotNil(t, intent.Params.Start)
	require.NotNil(t, intent.Params.End)
	assert.Equal(t, "2025-03-01", *intent.Params.Start)
	assert.Equal(t, "2025-03-15", *intent.Params.End)
}

func TestExportMalformedDateIgnored(t *testing.T) {
	intent := extract(t, "exportar ventas desde 45/13/2025")
	assert.Nil(t, intent.Params.Start)
	assert.Nil(t, intent.Params.End)
}

func TestDailySalesDayCount(t *testing.T) {
	intent := extract(t, "ventas por dia de los ultimos 15 dias")
	assert.Equal(t, domain.RecursoVentasPorDia, intent.Recurso)
	require.NotNil(t, intent.Params.Dias)
	assert.Equal(t, 15, *intent.Params.Dias)
}

func TestDailySalesDefaultDias(t *testing.T) {
	intent := extract(t, "muestrame las ventas por dia")
	require.NotNil(t, intent.Params.Dias)
	assert.Equal(t, 30, *intent.Params.Dias)
}

func TestTopProductsMetricMonto(t *testing.T) {
	intent := extract(t, "top productos por monto")
	assert.Equal(t, domain.RecursoTopProductos, intent.Recurso)
	require.NotNil(t, intent.Params.Metric)
	assert.Equal(t, domain.MetricMonto, *intent.Params.Metric)
}

func TestTopProductsAscending(t *testing.T) {
	intent := extract(t, "cuales son los menos vendidos")
	assert.Equal(t, domain.RecursoTopProductos, intent.Recurso)
	require.NotNil(t, intent.Params.Order)
	assert.Equal(t, domain.OrderAsc, *intent.Params.Order)
}

func TestTopProductsToday(t *testing.T) {
	intent := extract(t, "lo mas vendido de hoy")
	require.NotNil(t, intent.Params.Start)
	assert.Equal(t, "2025-03-15", *intent.Params.Start)
	assert.Equal(t, "2025-03-15", *intent.Params.End)
}

func TestTopProductsRelativeRange(t *testing.T) {
	intent := extract(t, "top productos del mes pasado")
	require.NotNil(t, intent.Params.Start)
	assert.Equal(t, "2025-02-01", *intent.Params.Start)
	assert.Equal(t, "2025-02-28", *intent.Params.End)
}

func TestTopProductsSeasonYearMonth(t *testing.T) {
	intent := extract(t, "ropa más vendida en verano")
	require.NotNil(t, intent.Params.Season)
	assert.Equal(t, domain.SeasonVerano, *intent.Params.Season)

	intent = extract(t, "los mas vendidos de 2024")
	require.NotNil(t, intent.Params.Year)
	assert.Equal(t, 2024, *intent.Params.Year)

	intent = extract(t, "top productos de setiembre")
	require.NotNil(t, intent.Params.Month)
	assert.Equal(t, 9, *intent.Params.Month)
}

func TestExclusionExtraction(t *testing.T) {
	intent := extract(t, "top productos aparte del pantalón chino")
	assert.Equal(t, domain.RecursoTopProductos, intent.Recurso)
	require.NotNil(t, intent.Params.Exclude)
	assert.Equal(t, "pantalón chino", *intent.Params.Exclude)
	require.NotNil(t, intent.Params.Metric)
	assert.Equal(t, domain.MetricUnidades, *intent.Params.Metric)
}

func TestExclusionStopsAtPunctuation(t *testing.T) {
	intent := extract(t, "ventas excepto la gorra trucker. gracias")
	require.NotNil(t, intent.Params.Exclude)
	assert.Equal(t, "la gorra trucker", *intent.Params.Exclude)
}

func TestMixPago(t *testing.T) {
	intent := extract(t, "dame el mix de pago")
	assert.Equal(t, domain.RecursoMixPago, intent.Recurso)

	intent = extract(t, "reporte por tipo de pago")
	assert.Equal(t, domain.RecursoMixPago, intent.Recurso)
}

func TestStockBajo(t *testing.T) {
	intent := extract(t, "productos con stock bajo umbral 10")
	assert.Equal(t, domain.RecursoStockBajo, intent.Recurso)
	require.NotNil(t, intent.Params.Umbral)
	assert.Equal(t, 10, *intent.Params.Umbral)

	intent = extract(t, "que hay con poco stock")
	require.NotNil(t, intent.Params.Umbral)
	assert.Equal(t, 5, *intent.Params.Umbral)
}

func TestSalesTodayYesterdayWeek(t *testing.T) {
	intent := extract(t, "cuanto vendimos hoy")
	assert.Equal(t, domain.RecursoVentasPorDia, intent.Recurso)
	assert.Equal(t, "2025-03-15", *intent.Params.Start)

	intent = extract(t, "ventas de ayer")
	assert.Equal(t, "2025-03-14", *intent.Params.Start)

	intent = extract(t, "como va esta semana")
	assert.Equal(t, domain.RecursoVentasPorDia, intent.Recurso)
	require.NotNil(t, intent.Params.Dias)
	assert.Equal(t, 7, *intent.Params.Dias)
}

func TestYearScopedRequest(t *testing.T) {
	intent := extract(t, "ventas del año")
	assert.Equal(t, domain.RecursoTopProductos, intent.Recurso)
	require.NotNil(t, intent.Params.Year)
	assert.Equal(t, 2025, *intent.Params.Year)

	intent = extract(t, "ventas de 2023")
	require.NotNil(t, intent.Params.Year)
	assert.Equal(t, 2023, *intent.Params.Year)
}

func TestThresholdPerUnit(t *testing.T) {
	intent := extract(t, "productos arriba de 200 bs por unidad")
	require.NotNil(t, intent.Params.MinPrecioUnitario)
	assert.Equal(t, 200.0, *intent.Params.MinPrecioUnitario)
	assert.Equal(t, domain.MetricUnidades, *intent.Params.Metric)
	assert.Nil(t, intent.Params.MinMonto)
}

func TestThresholdTotalAmount(t *testing.T) {
	intent := extract(t, "productos arriba de 200 bs")
	require.NotNil(t, intent.Params.MinMonto)
	assert.Equal(t, 200.0, *intent.Params.MinMonto)
	assert.Equal(t, domain.MetricMonto, *intent.Params.Metric)
	assert.Nil(t, intent.Params.MinPrecioUnitario)
}

func TestThresholdLowerBound(t *testing.T) {
	intent := extract(t, "productos abajo de 50 bs")
	require.NotNil(t, intent.Params.MaxMonto)
	assert.Equal(t, 50.0, *intent.Params.MaxMonto)
}

func TestForecast(t *testing.T) {
	intent := extract(t, "pronóstico de ventas")
	assert.Equal(t, domain.AccionPronostico, *intent.Accion)
	assert.Equal(t, domain.RecursoPronosticoVentas, intent.Recurso)
	assert.Nil(t, intent.Params.Fecha)

	intent = extract(t, "predecir las ventas del 20/03/2025")
	require.NotNil(t, intent.Params.Fecha)
	assert.Equal(t, "2025-03-20", *intent.Params.Fecha)
}

func TestSummaryAndFallback(t *testing.T) {
	intent := extract(t, "cuanto vendimos en total")
	assert.Equal(t, domain.RecursoResumen, intent.Recurso)

	intent = extract(t, "hola")
	assert.Equal(t, domain.AccionReporte, *intent.Accion)
	assert.Equal(t, domain.RecursoResumen, intent.Recurso)
}

func TestIdempotence(t *testing.T) {
	e := NewRuleExtractor(DefaultExtractorConfig())
	text := "exportar top productos aparte del pantalón chino desde 01/03/2025"
	a := e.Extract(text, testNow)
	b := e.Extract(text, testNow)
	assert.Equal(t, a, b)
}
