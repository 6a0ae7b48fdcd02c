package repository

import (
	"fmt"
	"time"

	"github.com/ventia-app/ventia/reports/domain"
	"gorm.io/gorm"
)

type reportGorm struct {
	db  *gorm.DB
	now func() time.Time
}

// NewReportRepository returns the gorm-backed report store. The reference
// instant is injected so trailing-window queries are reproducible; a nil
// nowFn falls back to time.Now.
func NewReportRepository(db *gorm.DB, nowFn func() time.Time) domain.IReportRepository {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &reportGorm{db: db, now: nowFn}
}

// dayExpr returns the SQL expression that truncates fecha to a calendar
// day string, per dialect.
func (r *reportGorm) dayExpr() string {
	if r.db.Dialector.Name() == "postgres" {
		return "to_char(fecha, 'YYYY-MM-DD')"
	}
	return "strftime('%Y-%m-%d', fecha)"
}

func (r *reportGorm) yearExpr(col string) string {
	if r.db.Dialector.Name() == "postgres" {
		return fmt.Sprintf("CAST(EXTRACT(YEAR FROM %s) AS INTEGER)", col)
	}
	return fmt.Sprintf("CAST(strftime('%%Y', %s) AS INTEGER)", col)
}

func (r *reportGorm) monthExpr(col string) string {
	if r.db.Dialector.Name() == "postgres" {
		return fmt.Sprintf("CAST(EXTRACT(MONTH FROM %s) AS INTEGER)", col)
	}
	return fmt.Sprintf("CAST(strftime('%%m', %s) AS INTEGER)", col)
}

// seasonMonths maps each season to its months, southern hemisphere.
var seasonMonths = map[string][]int{
	"verano":    {12, 1, 2},
	"otono":     {3, 4, 5},
	"invierno":  {6, 7, 8},
	"primavera": {9, 10, 11},
}

func (r *reportGorm) Resumen() (domain.ResumenVentas, error) {
	var out domain.ResumenVentas

	row := r.db.Model(&domain.Venta{}).
		Select("COALESCE(SUM(total), 0) AS total_ventas, COUNT(*) AS num_ventas").
		Row()
	if err := row.Scan(&out.TotalVentas, &out.NumVentas); err != nil {
		return out, err
	}
	if out.NumVentas > 0 {
		out.TicketPromedio = out.TotalVentas / float64(out.NumVentas)
	}

	err := r.db.Model(&domain.VentaItem{}).
		Select("COALESCE(SUM(cantidad), 0)").
		Scan(&out.UnidadesTotal).Error
	return out, err
}

func (r *reportGorm) VentasPorDia(dias int, start, end *string) ([]domain.VentaDia, error) {
	day := r.dayExpr()
	q := r.db.Table("ventas").
		Select(fmt.Sprintf(
			"%s AS fecha, COALESCE(SUM(ventas.total), 0) AS total, "+
				"COALESCE(SUM((SELECT SUM(vi.cantidad) FROM venta_items vi WHERE vi.venta_id = ventas.id)), 0) AS unidades",
			day))

	if start != nil && end != nil {
		q = q.Where(day+" BETWEEN ? AND ?", *start, *end)
	} else {
		if dias < 1 {
			dias = 1
		}
		cutoff := r.now().UTC().AddDate(0, 0, -dias).Format("2006-01-02")
		q = q.Where(day+" >= ?", cutoff)
	}

	var rows []domain.VentaDia
	err := q.Group(day).Order("fecha ASC").Scan(&rows).Error
	return rows, err
}

func (r *reportGorm) dayOf(col string) string {
	if r.db.Dialector.Name() == "postgres" {
		return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", col)
	}
	return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s)", col)
}

func (r *reportGorm) TopProductos(f domain.TopProductosFilter) ([]domain.TopProducto, error) {
	if f.Limit <= 0 {
		f.Limit = 10
	}

	q := r.db.Table("venta_items").
		Select("productos.id AS producto_id, productos.nombre, productos.categoria, "+
			"SUM(venta_items.cantidad) AS unidades, SUM(venta_items.subtotal) AS monto").
		Joins("JOIN ventas ON ventas.id = venta_items.venta_id").
		Joins("JOIN productos ON productos.id = venta_items.producto_id").
		Group("productos.id, productos.nombre, productos.categoria")

	day := r.dayOf("ventas.fecha")
	if f.Start != nil {
		q = q.Where(day+" >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where(day+" <= ?", *f.End)
	}
	if f.Year != nil {
		q = q.Where(r.yearExpr("ventas.fecha")+" = ?", *f.Year)
	}
	if f.Month != nil {
		q = q.Where(r.monthExpr("ventas.fecha")+" = ?", *f.Month)
	}
	if f.Season != nil {
		if months, ok := seasonMonths[*f.Season]; ok {
			q = q.Where(r.monthExpr("ventas.fecha")+" IN ?", months)
		}
	}
	if f.Categoria != nil {
		q = q.Where("productos.categoria = ?", *f.Categoria)
	}
	if f.Exclude != nil {
		q = q.Where("productos.nombre NOT LIKE ?", "%"+*f.Exclude+"%")
	}
	if f.MinPrecioUnitario != nil {
		q = q.Where("productos.precio >= ?", *f.MinPrecioUnitario)
	}
	if f.MaxPrecioUnitario != nil {
		q = q.Where("productos.precio <= ?", *f.MaxPrecioUnitario)
	}
	if f.MinMonto != nil {
		q = q.Having("SUM(venta_items.subtotal) >= ?", *f.MinMonto)
	}
	if f.MaxMonto != nil {
		q = q.Having("SUM(venta_items.subtotal) <= ?", *f.MaxMonto)
	}

	metric := "unidades"
	if f.Metric == "monto" {
		metric = "monto"
	}
	dir := "DESC"
	if f.Order == "asc" {
		dir = "ASC"
	}

	var rows []domain.TopProducto
	err := q.Order(fmt.Sprintf("%s %s", metric, dir)).Limit(f.Limit).Scan(&rows).Error
	return rows, err
}

func (r *reportGorm) MixPago() ([]domain.PagoMix, error) {
	var rows []domain.PagoMix
	err := r.db.Model(&domain.Venta{}).
		Select("metodo_pago, COUNT(*) AS num_ventas, COALESCE(SUM(total), 0) AS total").
		Group("metodo_pago").
		Order("total DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *reportGorm) StockBajo(umbral int) ([]domain.Producto, error) {
	var rows []domain.Producto
	err := r.db.Where("stock <= ?", umbral).Order("stock ASC").Find(&rows).Error
	return rows, err
}

// VentasHistoricas returns the daily series for the trailing window,
// including zero-sale days omitted from storage.
func (r *reportGorm) VentasHistoricas(dias int) ([]domain.VentaDia, error) {
	return r.VentasPorDia(dias, nil, nil)
}
