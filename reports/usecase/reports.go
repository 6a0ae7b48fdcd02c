package usecase

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	assistant "github.com/ventia-app/ventia/assistant/domain"
	pkgError "github.com/ventia-app/ventia/pkg/error"
	"github.com/ventia-app/ventia/reports/domain"
)

// ReportResult is what the assistant hands back after acting on an intent.
type ReportResult struct {
	Recurso string `json:"recurso"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ServiceConfig holds the fetch-side defaults.
type ServiceConfig struct {
	DefaultDias    int
	DefaultUmbral  int
	ForecastWindow int
	TopLimit       int
}

// DefaultServiceConfig returns the stock fetch settings.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		DefaultDias:    30,
		DefaultUmbral:  5,
		ForecastWindow: 7,
		TopLimit:       10,
	}
}

type reportService struct {
	cfg  ServiceConfig
	repo domain.IReportRepository
	now  func() time.Time
}

// IReportService maps a resolved intent onto the report store.
type IReportService interface {
	Fetch(intent assistant.Intent) (ReportResult, error)
}

// NewReportService builds the fetch layer. A nil nowFn falls back to
// time.Now.
func NewReportService(cfg ServiceConfig, repo domain.IReportRepository, nowFn func() time.Time) IReportService {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &reportService{cfg: cfg, repo: repo, now: nowFn}
}

func (s *reportService) Fetch(intent assistant.Intent) (ReportResult, error) {
	logrus.WithFields(logrus.Fields{"recurso": intent.Recurso}).Debug("[REPORTS] Ejecutando consulta")

	switch intent.Recurso {
	case assistant.RecursoResumen:
		return s.resumen()
	case assistant.RecursoVentasPorDia:
		return s.ventasPorDia(intent.Params)
	case assistant.RecursoTopProductos:
		return s.topProductos(intent.Params)
	case assistant.RecursoMixPago:
		return s.mixPago()
	case assistant.RecursoStockBajo:
		return s.stockBajo(intent.Params)
	case assistant.RecursoPronosticoVentas:
		return s.pronostico(intent.Params)
	default:
		return ReportResult{}, pkgError.NotFoundError(fmt.Sprintf("recurso desconocido: %s", intent.Recurso))
	}
}

func (s *reportService) resumen() (ReportResult, error) {
	data, err := s.repo.Resumen()
	if err != nil {
		return ReportResult{}, err
	}
	msg := fmt.Sprintf("Llevas %s ventas por un total de Bs %s (ticket promedio Bs %s).",
		humanize.Comma(data.NumVentas),
		humanize.CommafWithDigits(data.TotalVentas, 2),
		humanize.CommafWithDigits(data.TicketPromedio, 2))
	return ReportResult{Recurso: assistant.RecursoResumen, Message: msg, Data: data}, nil
}

func (s *reportService) ventasPorDia(p assistant.Params) (ReportResult, error) {
	dias := s.cfg.DefaultDias
	if p.Dias != nil {
		dias = *p.Dias
	}
	rows, err := s.repo.VentasPorDia(dias, p.Start, p.End)
	if err != nil {
		return ReportResult{}, err
	}

	var total float64
	for _, r := range rows {
		total += r.Total
	}
	msg := fmt.Sprintf("Serie de ventas de %d dias: Bs %s en total.",
		len(rows), humanize.CommafWithDigits(total, 2))
	return ReportResult{Recurso: assistant.RecursoVentasPorDia, Message: msg, Data: rows}, nil
}

func (s *reportService) topProductos(p assistant.Params) (ReportResult, error) {
	filter := domain.TopProductosFilter{
		Metric:            strOr(p.Metric, "unidades"),
		Order:             strOr(p.Order, "desc"),
		Limit:             s.cfg.TopLimit,
		Start:             p.Start,
		End:               p.End,
		Year:              p.Year,
		Month:             p.Month,
		Season:            p.Season,
		Categoria:         p.Categoria,
		Exclude:           p.Exclude,
		MinMonto:          p.MinMonto,
		MaxMonto:          p.MaxMonto,
		MinPrecioUnitario: p.MinPrecioUnitario,
		MaxPrecioUnitario: p.MaxPrecioUnitario,
	}
	rows, err := s.repo.TopProductos(filter)
	if err != nil {
		return ReportResult{}, err
	}

	msg := "No hay ventas que coincidan con ese filtro."
	if len(rows) > 0 {
		lead := rows[0]
		if filter.Metric == "monto" {
			msg = fmt.Sprintf("El lider es %s con Bs %s.", lead.Nombre,
				humanize.CommafWithDigits(lead.Monto, 2))
		} else {
			msg = fmt.Sprintf("El lider es %s con %s unidades.", lead.Nombre,
				humanize.Comma(lead.Unidades))
		}
	}
	return ReportResult{Recurso: assistant.RecursoTopProductos, Message: msg, Data: rows}, nil
}

func (s *reportService) mixPago() (ReportResult, error) {
	rows, err := s.repo.MixPago()
	if err != nil {
		return ReportResult{}, err
	}
	msg := "Sin ventas registradas todavia."
	if len(rows) > 0 {
		msg = fmt.Sprintf("El metodo mas usado es %s con Bs %s.",
			rows[0].MetodoPago, humanize.CommafWithDigits(rows[0].Total, 2))
	}
	return ReportResult{Recurso: assistant.RecursoMixPago, Message: msg, Data: rows}, nil
}

func (s *reportService) stockBajo(p assistant.Params) (ReportResult, error) {
	umbral := s.cfg.DefaultUmbral
	if p.Umbral != nil {
		umbral = *p.Umbral
	}
	rows, err := s.repo.StockBajo(umbral)
	if err != nil {
		return ReportResult{}, err
	}
	msg := fmt.Sprintf("%d productos con stock en o bajo %d unidades.", len(rows), umbral)
	return ReportResult{Recurso: assistant.RecursoStockBajo, Message: msg, Data: rows}, nil
}

// ForecastData is the payload for a sales forecast.
type ForecastData struct {
	Fecha     string            `json:"fecha"`
	Estimado  float64           `json:"estimado"`
	VentanaN  int               `json:"ventana_n"`
	Historial []domain.VentaDia `json:"historial"`
}

// pronostico estimates the target day's sales as the moving average of the
// trailing window.
func (s *reportService) pronostico(p assistant.Params) (ReportResult, error) {
	fecha := s.now().AddDate(0, 0, 1).Format("2006-01-02")
	if p.Fecha != nil {
		fecha = *p.Fecha
	}

	hist, err := s.repo.VentasHistoricas(s.cfg.ForecastWindow)
	if err != nil {
		return ReportResult{}, err
	}

	var sum float64
	for _, d := range hist {
		sum += d.Total
	}
	estimado := 0.0
	if len(hist) > 0 {
		estimado = sum / float64(len(hist))
	}

	data := ForecastData{
		Fecha:     fecha,
		Estimado:  estimado,
		VentanaN:  s.cfg.ForecastWindow,
		Historial: hist,
	}
	msg := fmt.Sprintf("Para el %s se estima vender Bs %s.",
		fecha, humanize.CommafWithDigits(estimado, 2))
	return ReportResult{Recurso: assistant.RecursoPronosticoVentas, Message: msg, Data: data}, nil
}

func strOr(p *string, def string) string {
	if p != nil && *p != "" {
		return *p
	}
	return def
}
