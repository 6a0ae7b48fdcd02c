package repository

import (
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ventia-app/ventia/reports/domain"
	"gorm.io/gorm"
)

// SeedDemo populates an empty database with a month of demo catalog and
// sales data so the assistant has something to report on. It is a no-op
// when products already exist.
func SeedDemo(db *gorm.DB) error {
	var count int64
	if err := db.Model(&domain.Producto{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	productos := []domain.Producto{
		{Nombre: "Pantalón chino", Categoria: "ropa", Precio: 180, Stock: 12},
		{Nombre: "Camisa oxford", Categoria: "ropa", Precio: 150, Stock: 20},
		{Nombre: "Polera básica", Categoria: "ropa", Precio: 60, Stock: 45},
		{Nombre: "Zapatilla urbana", Categoria: "calzado", Precio: 320, Stock: 8},
		{Nombre: "Cinturón de cuero", Categoria: "accesorios", Precio: 90, Stock: 3},
		{Nombre: "Gorra trucker", Categoria: "accesorios", Precio: 55, Stock: 2},
	}
	if err := db.Create(&productos).Error; err != nil {
		return err
	}

	metodos := []string{"efectivo", "tarjeta", "qr"}
	rng := rand.New(rand.NewSource(42))
	now := time.Now().UTC()

	var ventas []domain.Venta
	for day := 0; day < 30; day++ {
		fecha := now.AddDate(0, 0, -day)
		numVentas := 1 + rng.Intn(4)
		for v := 0; v < numVentas; v++ {
			venta := domain.Venta{
				Fecha:      fecha,
				MetodoPago: metodos[rng.Intn(len(metodos))],
			}
			numItems := 1 + rng.Intn(3)
			for i := 0; i < numItems; i++ {
				p := productos[rng.Intn(len(productos))]
				cantidad := 1 + rng.Intn(3)
				item := domain.VentaItem{
					ProductoID:     p.ID,
					Cantidad:       cantidad,
					PrecioUnitario: p.Precio,
					Subtotal:       float64(cantidad) * p.Precio,
				}
				venta.Items = append(venta.Items, item)
				venta.Total += item.Subtotal
			}
			ventas = append(ventas, venta)
		}
	}
	if err := db.Create(&ventas).Error; err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"productos": len(productos),
		"ventas":    len(ventas),
	}).Info("[DB] Datos de demostración cargados")
	return nil
}
