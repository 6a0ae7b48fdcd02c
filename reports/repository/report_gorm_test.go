package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ventia-app/ventia/reports/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func fixtureNow() time.Time {
	return time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Producto{}, &domain.Venta{}, &domain.VentaItem{}))
	return db
}

func seedFixture(t *testing.T, db *gorm.DB) {
	t.Helper()

	productos := []domain.Producto{
		{Nombre: "Pantalón chino", Categoria: "ropa", Precio: 180, Stock: 12},
		{Nombre: "Polera básica", Categoria: "ropa", Precio: 60, Stock: 2},
		{Nombre: "Gorra trucker", Categoria: "accesorios", Precio: 55, Stock: 1},
	}
	require.NoError(t, db.Create(&productos).Error)

	fecha := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	ventas := []domain.Venta{
		{
			Fecha: fecha, Total: 420, MetodoPago: "efectivo",
			Items: []domain.VentaItem{
				{ProductoID: productos[0].ID, Cantidad: 2, PrecioUnitario: 180, Subtotal: 360},
				{ProductoID: productos[1].ID, Cantidad: 1, PrecioUnitario: 60, Subtotal: 60},
			},
		},
		{
			Fecha: fecha.AddDate(0, 0, 1), Total: 175, MetodoPago: "qr",
			Items: []domain.VentaItem{
				{ProductoID: productos[1].ID, Cantidad: 2, PrecioUnitario: 60, Subtotal: 120},
				{ProductoID: productos[2].ID, Cantidad: 1, PrecioUnitario: 55, Subtotal: 55},
			},
		},
	}
	require.NoError(t, db.Create(&ventas).Error)
}

func TestResumen(t *testing.T) {
	db := newTestDB(t)
	seedFixture(t, db)
	repo := NewReportRepository(db, fixtureNow)

	res, err := repo.Resumen()
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.NumVentas)
	assert.InDelta(t, 595.0, res.TotalVentas, 0.001)
	assert.InDelta(t, 297.5, res.TicketPromedio, 0.001)
	assert.Equal(t, int64(6), res.UnidadesTotal)
}

func TestVentasPorDiaRange(t *testing.T) {
	db := newTestDB(t)
	seedFixture(t, db)
	repo := NewReportRepository(db, fixtureNow)

	start, end := "2025-03-10", "2025-03-11"
	rows, err := repo.VentasPorDia(0, &start, &end)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-03-10", rows[0].Fecha)
	assert.InDelta(t, 420.0, rows[0].Total, 0.001)
	assert.Equal(t, int64(3), rows[0].Unidades)
}

func TestVentasPorDiaTrailingWindow(t *testing.T) {
	db := newTestDB(t)
	seedFixture(t, db)

	// Fixture sales are on 2025-03-10 and 2025-03-11; the clock is pinned
	// to 2025-03-12.
	repo := NewReportRepository(db, fixtureNow)
	rows, err := repo.VentasPorDia(2, nil, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.VentasPorDia(1, nil, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2025-03-11", rows[0].Fecha)

	late := func() time.Time { return time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC) }
	rows, err = NewReportRepository(db, late).VentasPorDia(2, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestTopProductosOrderAndExclude(t *testing.T) {
	db := newTestDB(t)
	seedFixture(t, db)
	repo := NewReportRepository(db, fixtureNow)

	rows, err := repo.TopProductos(domain.TopProductosFilter{Metric: "unidades", Order: "desc"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Polera básica", rows[0].Nombre)
	assert.Equal(t, int64(3), rows[0].Unidades)

	exclude := "Polera"
	rows, err = repo.TopProductos(domain.TopProductosFilter{Metric: "monto", Order: "desc", Exclude: &exclude})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Pantalón chino", rows[0].Nombre)
}

func TestTopProductosPriceAndAmountFilters(t *testing.T) {
	db := newTestDB(t)
	seedFixture(t, db)
	repo := NewReportRepository(db, fixtureNow)

	minPrecio := 100.0
	rows, err := repo.TopProductos(domain.TopProductosFilter{MinPrecioUnitario: &minPrecio})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Pantalón chino", rows[0].Nombre)

	minMonto := 200.0
	rows, err = repo.TopProductos(domain.TopProductosFilter{MinMonto: &minMonto})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 360.0, rows[0].Monto, 0.001)
}

func TestMixPago(t *testing.T) {
	db := newTestDB(t)
	seedFixture(t, db)
	repo := NewReportRepository(db, fixtureNow)

	rows, err := repo.MixPago()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "efectivo", rows[0].MetodoPago)
}

func TestStockBajo(t *testing.T) {
	db := newTestDB(t)
	seedFixture(t, db)
	repo := NewReportRepository(db, fixtureNow)

	rows, err := repo.StockBajo(5)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Gorra trucker", rows[0].Nombre)
}

func TestSeedDemoIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, SeedDemo(db))

	var before int64
	require.NoError(t, db.Model(&domain.Venta{}).Count(&before).Error)
	assert.Greater(t, before, int64(0))

	require.NoError(t, SeedDemo(db))
	var after int64
	require.NoError(t, db.Model(&domain.Venta{}).Count(&after).Error)
	assert.Equal(t, before, after)
}
