package domain

import "time"

// Producto is a catalog entry.
type Producto struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Nombre    string  `gorm:"size:120;index" json:"nombre"`
	Categoria string  `gorm:"size:60;index" json:"categoria"`
	Precio    float64 `json:"precio"`
	Stock     int     `json:"stock"`
}

// Venta is a completed sale with its line items.
type Venta struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	Fecha      time.Time   `gorm:"index" json:"fecha"`
	Total      float64     `json:"total"`
	MetodoPago string      `gorm:"size:30;index" json:"metodo_pago"`
	Items      []VentaItem `gorm:"foreignKey:VentaID" json:"items"`
}

// VentaItem is one product line inside a sale.
type VentaItem struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	VentaID        uint    `gorm:"index" json:"venta_id"`
	ProductoID     uint    `gorm:"index" json:"producto_id"`
	Cantidad       int     `json:"cantidad"`
	PrecioUnitario float64 `json:"precio_unitario"`
	Subtotal       float64 `json:"subtotal"`
}

// ResumenVentas aggregates overall sales activity.
type ResumenVentas struct {
	TotalVentas    float64 `json:"total_ventas"`
	NumVentas      int64   `json:"num_ventas"`
	TicketPromedio float64 `json:"ticket_promedio"`
	UnidadesTotal  int64   `json:"unidades_total"`
}

// VentaDia is one point of the daily sales series.
type VentaDia struct {
	Fecha    string  `json:"fecha"`
	Total    float64 `json:"total"`
	Unidades int64   `json:"unidades"`
}

// TopProducto is one row of a product ranking.
type TopProducto struct {
	ProductoID uint    `json:"producto_id"`
	Nombre     string  `json:"nombre"`
	Categoria  string  `json:"categoria"`
	Unidades   int64   `json:"unidades"`
	Monto      float64 `json:"monto"`
}

// PagoMix is the share of one payment method.
type PagoMix struct {
	MetodoPago string  `json:"metodo_pago"`
	NumVentas  int64   `json:"num_ventas"`
	Total      float64 `json:"total"`
}

// TopProductosFilter narrows a product ranking query. Nil fields are
// ignored.
type TopProductosFilter struct {
	Metric            string
	Order             string
	Limit             int
	Start             *string
	End               *string
	Year              *int
	Month             *int
	Season            *string
	Categoria         *string
	Exclude           *string
	MinMonto          *float64
	MaxMonto          *float64
	MinPrecioUnitario *float64
	MaxPrecioUnitario *float64
}

// IReportRepository exposes the read queries the assistant consumes.
type IReportRepository interface {
	Resumen() (ResumenVentas, error)
	VentasPorDia(dias int, start, end *string) ([]VentaDia, error)
	TopProductos(filter TopProductosFilter) ([]TopProducto, error)
	MixPago() ([]PagoMix, error)
	StockBajo(umbral int) ([]Producto, error)
	VentasHistoricas(dias int) ([]VentaDia, error)
}
