package application

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ventia-app/ventia/assistant/domain"
	"github.com/ventia-app/ventia/pkg/textnorm"
)

// ExtractorConfig concentrates the fallback values used by the rule cascade
// so they are not scattered through the matching logic.
type ExtractorConfig struct {
	DefaultDias   int
	DefaultUmbral int
	DefaultMetric string
	DefaultOrder  string
	WeekDias      int
}

// DefaultExtractorConfig returns the stock defaults for the extractor.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		DefaultDias:   30,
		DefaultUmbral: 5,
		DefaultMetric: domain.MetricUnidades,
		DefaultOrder:  domain.OrderDesc,
		WeekDias:      7,
	}
}

var (
	reDias        = regexp.MustCompile(`(\d+)\s*d[ií]as`)
	reUmbral      = regexp.MustCompile(`umbral\s*(\d+)`)
	reYear        = regexp.MustCompile(`\b20\d{2}\b`)
	reUltimosDias = regexp.MustCompile(`ultimos?\s+(\d+)\s*dias`)
	reDateLiteral = regexp.MustCompile(`\d{2}/\d{2}/\d{4}|\d{4}-\d{2}-\d{2}`)

	reUpperLead  = regexp.MustCompile(`(?:arriba de|sobre|mayores a)\s*(\d+(?:\.\d+)?)`)
	reUpperSign  = regexp.MustCompile(`>\s*(\d+(?:\.\d+)?)`)
	reUpperTrail = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:bs\s*)?(?:arriba|sobre|mayor)`)
	reLowerLead  = regexp.MustCompile(`(?:abajo de|menos de|menores a)\s*(\d+(?:\.\d+)?)`)
	reLowerSign  = regexp.MustCompile(`<\s*(\d+(?:\.\d+)?)`)
	reLowerTrail = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:bs\s*)?(?:abajo|menos|menor)`)
)

// Season keys scanned in a fixed order; the first substring hit wins.
var seasonKeys = []string{
	domain.SeasonVerano,
	domain.SeasonOtono,
	domain.SeasonInvierno,
	domain.SeasonPrimavera,
}

// Month table over normalized (accent-stripped) names. September keeps both
// accepted spellings, so the table has 13 entries.
var monthNames = []struct {
	name string
	num  int
}{
	{"enero", 1}, {"febrero", 2}, {"marzo", 3}, {"abril", 4},
	{"mayo", 5}, {"junio", 6}, {"julio", 7}, {"agosto", 8},
	{"septiembre", 9}, {"setiembre", 9}, {"octubre", 10},
	{"noviembre", 11}, {"diciembre", 12},
}

// Exclusion triggers checked in priority order. Matching is plain substring,
// without word boundaries.
var excludeTriggers = []string{"aparte del", "aparte de", "excepto", "sin", "que no sea"}

type matchInput struct {
	norm  string // lowercased, diacritics stripped
	lower string // lowercased, diacritics preserved
	dates *RangeResolver
	rel   *DateRange // relative range detected in a pre-pass, may be nil
}

// rule pairs a predicate with a builder. The cascade is first-match: order
// in the slice is part of the contract.
type rule struct {
	name  string
	match func(*matchInput) bool
	build func(*matchInput) domain.Intent
}

// RuleExtractor resolves a query against an ordered rule cascade. It never
// fails: the terminal rule always produces a summary intent.
type RuleExtractor struct {
	cfg   ExtractorConfig
	rules []rule
}

// NewRuleExtractor builds the extractor with its fixed rule ordering.
func NewRuleExtractor(cfg ExtractorConfig) *RuleExtractor {
	e := &RuleExtractor{cfg: cfg}
	e.rules = []rule{
		{"exportar", e.matchExport, e.buildExport},
		{"ventas_por_dia", e.matchDailySales, e.buildDailySales},
		{"top_desc", e.matchTopDesc, e.buildTopDesc},
		{"top_asc", e.matchTopAsc, e.buildTopAsc},
		{"exclusion", e.matchExclusion, e.buildExclusion},
		{"mix_pago", e.matchMixPago, e.buildMixPago},
		{"stock_bajo", e.matchStockBajo, e.buildStockBajo},
		{"ventas_hoy", e.matchSalesToday, e.buildSalesToday},
		{"ventas_ayer", e.matchSalesYesterday, e.buildSalesYesterday},
		{"semana", e.matchWeek, e.buildWeek},
		{"anual", e.matchYear, e.buildYear},
		{"umbral_superior", e.matchUpperThreshold, e.buildUpperThreshold},
		{"umbral_inferior", e.matchLowerThreshold, e.buildLowerThreshold},
		{"pronostico", e.matchForecast, e.buildForecast},
		{"resumen", e.matchSummary, e.buildSummary},
		{"fallback", func(*matchInput) bool { return true }, e.buildFallback},
	}
	return e
}

// Extract resolves text into an intent. The reference instant is injected
// so date-relative phrases are deterministic.
func (e *RuleExtractor) Extract(text string, now time.Time) domain.Intent {
	in := &matchInput{
		norm:  textnorm.Fold(text),
		lower: textnorm.Lower(text),
		dates: NewRangeResolver(func() time.Time { return now }),
	}
	in.rel = e.relativeRange(in)

	for _, r := range e.rules {
		if r.match(in) {
			intent := r.build(in)
			logrus.WithFields(logrus.Fields{
				"rule":    r.name,
				"recurso": intent.Recurso,
			}).Debug("[ASSISTANT] Regla aplicada")
			return intent
		}
	}
	// Unreachable, the fallback rule always matches.
	return e.buildFallback(in)
}

// relativeRange pre-detects a relative period so later rules can reuse it.
func (e *RuleExtractor) relativeRange(in *matchInput) *DateRange {
	if m := reUltimosDias.FindStringSubmatch(in.norm); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			r := in.dates.LastNDays(n)
			return &r
		}
	}
	if strings.Contains(in.norm, "este mes") {
		r := in.dates.ThisMonth()
		return &r
	}
	if strings.Contains(in.norm, "mes pasado") {
		r := in.dates.LastMonth()
		return &r
	}
	return nil
}

// --- regla 1: exportar ---

func (e *RuleExtractor) matchExport(in *matchInput) bool {
	return textnorm.ContainsAny(in.norm, "exportar", "descargar", "guardar", "generar")
}

func (e *RuleExtractor) buildExport(in *matchInput) domain.Intent {
	recurso := domain.RecursoResumen
	switch {
	case textnorm.ContainsAny(in.norm, "top producto", "mas vendid", "mas popular"):
		recurso = domain.RecursoTopProductos
	case textnorm.ContainsAny(in.norm, "ventas por dia", "por dia"):
		recurso = domain.RecursoVentasPorDia
	case textnorm.ContainsAny(in.norm, "mix de pago", "tipo de pago"):
		recurso = domain.RecursoMixPago
	case strings.Contains(in.norm, "stock"):
		recurso = domain.RecursoStockBajo
	}

	formato := domain.FormatoPDF
	if textnorm.ContainsAny(in.norm, "excel", "xlsx", "csv") {
		formato = domain.FormatoExcel
	}

	p := domain.Params{Formato: strPtr(formato)}
	if start, end, ok := explicitRange(in.norm); ok {
		if start != "" {
			p.Start = strPtr(start)
		}
		if end != "" {
			p.End = strPtr(end)
		}
	} else if in.rel != nil {
		p.Start = strPtr(in.rel.Start)
		p.End = strPtr(in.rel.End)
	}
	return domain.Intent{Accion: strPtr(domain.AccionExportar), Recurso: recurso, Params: p}
}

// explicitRange extracts date literals written as desde X / hasta Y / X a Y.
// Dates that fail a round-trip check are treated as absent.
func explicitRange(norm string) (start, end string, ok bool) {
	var dates []string
	for _, lit := range reDateLiteral.FindAllString(norm, -1) {
		if iso, valid := parseDateLiteral(lit); valid {
			dates = append(dates, iso)
		}
	}
	switch {
	case len(dates) >= 2:
		return dates[0], dates[1], true
	case len(dates) == 1:
		if strings.Contains(norm, "hasta") && !strings.Contains(norm, "desde") {
			return "", dates[0], true
		}
		return dates[0], "", true
	}
	return "", "", false
}

func parseDateLiteral(lit string) (string, bool) {
	layout := "2006-01-02"
	if strings.Contains(lit, "/") {
		layout = "02/01/2006"
	}
	t, err := time.Parse(layout, lit)
	if err != nil || t.Format(layout) != lit {
		return "", false
	}
	return t.Format(isoDate), true
}

// --- regla 2: serie de ventas por dia ---

func (e *RuleExtractor) matchDailySales(in *matchInput) bool {
	return strings.Contains(in.norm, "ventas por dia")
}

func (e *RuleExtractor) buildDailySales(in *matchInput) domain.Intent {
	dias := e.cfg.DefaultDias
	if m := reDias.FindStringSubmatch(in.norm); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			dias = n
		}
	}
	return domain.Intent{
		Accion:  strPtr(domain.AccionReporte),
		Recurso: domain.RecursoVentasPorDia,
		Params:  domain.Params{Dias: intPtr(dias)},
	}
}

// --- reglas 3 y 4: top de productos ---

func (e *RuleExtractor) matchTopDesc(in *matchInput) bool {
	return textnorm.ContainsAny(in.norm, "mas vendid", "top producto", "mas popular", "mas comprad")
}

func (e *RuleExtractor) matchTopAsc(in *matchInput) bool {
	return textnorm.ContainsAny(in.norm, "menos vendid", "peor vendid", "menos popular")
}

func (e *RuleExtractor) buildTopDesc(in *matchInput) domain.Intent {
	return e.buildTop(in, e.cfg.DefaultOrder)
}

func (e *RuleExtractor) buildTopAsc(in *matchInput) domain.Intent {
	return e.buildTop(in, domain.OrderAsc)
}

func (e *RuleExtractor) buildTop(in *matchInput, order string) domain.Intent {
	metric := e.cfg.DefaultMetric
	if strings.Contains(in.norm, "monto") {
		metric = domain.MetricMonto
	}
	p := domain.Params{Metric: strPtr(metric), Order: strPtr(order)}

	switch {
	case strings.Contains(in.norm, "hoy"):
		r := in.dates.Today()
		p.Start, p.End = strPtr(r.Start), strPtr(r.End)
	case strings.Contains(in.norm, "ayer"):
		r := in.dates.Yesterday()
		p.Start, p.End = strPtr(r.Start), strPtr(r.End)
	case in.rel != nil:
		p.Start, p.End = strPtr(in.rel.Start), strPtr(in.rel.End)
	}

	for _, s := range seasonKeys {
		if strings.Contains(in.norm, s) {
			p.Season = strPtr(s)
			break
		}
	}
	if m := reYear.FindString(in.norm); m != "" {
		if y, err := strconv.Atoi(m); err == nil {
			p.Year = intPtr(y)
		}
	}
	for _, m := range monthNames {
		if strings.Contains(in.norm, m.name) {
			p.Month = intPtr(m.num)
			break
		}
	}
	if ex := extractExclude(in); ex != "" {
		p.Exclude = strPtr(ex)
	}
	return domain.Intent{Accion: strPtr(domain.AccionReporte), Recurso: domain.RecursoTopProductos, Params: p}
}

// --- regla 5: exclusion ---

func (e *RuleExtractor) matchExclusion(in *matchInput) bool {
	return textnorm.ContainsAny(in.norm, excludeTriggers...)
}

func (e *RuleExtractor) buildExclusion(in *matchInput) domain.Intent {
	p := domain.Params{Metric: strPtr(e.cfg.DefaultMetric)}
	if ex := extractExclude(in); ex != "" {
		p.Exclude = strPtr(ex)
	}
	return domain.Intent{Accion: strPtr(domain.AccionReporte), Recurso: domain.RecursoTopProductos, Params: p}
}

// extractExclude pulls the product name that follows the first exclusion
// trigger, cut at sentence punctuation. The value is sliced out of the
// accent-preserving text by rune offset so names keep their diacritics.
func extractExclude(in *matchInput) string {
	for _, trig := range excludeTriggers {
		idx := strings.Index(in.norm, trig)
		if idx < 0 {
			continue
		}
		runeOff := len([]rune(in.norm[:idx])) + len([]rune(trig))

		source := in.lower
		if len([]rune(in.lower)) != len([]rune(in.norm)) {
			source = in.norm
		}
		rs := []rune(source)
		if runeOff >= len(rs) {
			return ""
		}
		tail := string(rs[runeOff:])
		if cut := strings.IndexAny(tail, ".!?;,"); cut >= 0 {
			tail = tail[:cut]
		}
		return strings.TrimSpace(tail)
	}
	return ""
}

// --- regla 6: mix de pago ---

func (e *RuleExtractor) matchMixPago(in *matchInput) bool {
	if strings.Contains(in.norm, "mix de pago") {
		return true
	}
	return strings.Contains(in.norm, "tipo de pago") && strings.Contains(in.norm, "reporte")
}

func (e *RuleExtractor) buildMixPago(in *matchInput) domain.Intent {
	return domain.Intent{Accion: strPtr(domain.AccionReporte), Recurso: domain.RecursoMixPago}
}

// --- regla 7: stock bajo ---

func (e *RuleExtractor) matchStockBajo(in *matchInput) bool {
	return textnorm.ContainsAny(in.norm, "stock bajo", "poco stock", "inventario bajo")
}

func (e *RuleExtractor) buildStockBajo(in *matchInput) domain.Intent {
	umbral := e.cfg.DefaultUmbral
	if m := reUmbral.FindStringSubmatch(in.norm); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			umbral = n
		}
	}
	return domain.Intent{
		Accion:  strPtr(domain.AccionReporte),
		Recurso: domain.RecursoStockBajo,
		Params:  domain.Params{Umbral: intPtr(umbral)},
	}
}

// --- reglas 8-10: periodos fijos ---

func (e *RuleExtractor) matchSalesToday(in *matchInput) bool {
	return textnorm.ContainsAny(in.norm, "ventas de hoy", "ventas del dia", "vendimos hoy")
}

func (e *RuleExtractor) buildSalesToday(in *matchInput) domain.Intent {
	r := in.dates.Today()
	return dailyRangeIntent(r)
}

func (e *RuleExtractor) matchSalesYesterday(in *matchInput) bool {
	return textnorm.ContainsAny(in.norm, "ventas de ayer", "vendimos ayer")
}

func (e *RuleExtractor) buildSalesYesterday(in *matchInput) domain.Intent {
	r := in.dates.Yesterday()
	return dailyRangeIntent(r)
}

func dailyRangeIntent(r DateRange) domain.Intent {
	return domain.Intent{
		Accion:  strPtr(domain.AccionReporte),
		Recurso: domain.RecursoVentasPorDia,
		Params:  domain.Params{Start: strPtr(r.Start), End: strPtr(r.End)},
	}
}

func (e *RuleExtractor) matchWeek(in *matchInput) bool {
	return textnorm.ContainsAny(in.norm, "esta semana", "semana actual", "ultimos 7 dias")
}

func (e *RuleExtractor) buildWeek(in *matchInput) domain.Intent {
	return domain.Intent{
		Accion:  strPtr(domain.AccionReporte),
		Recurso: domain.RecursoVentasPorDia,
		Params:  domain.Params{Dias: intPtr(e.cfg.WeekDias)},
	}
}

// --- regla 11: periodo anual ---

// stripDateLiterals blanks out full date literals so their year digits do
// not read as a standalone year.
func stripDateLiterals(norm string) string {
	return reDateLiteral.ReplaceAllString(norm, " ")
}

func (e *RuleExtractor) matchYear(in *matchInput) bool {
	return reYear.MatchString(stripDateLiterals(in.norm)) ||
		textnorm.ContainsAny(in.norm, "del ano", "ano actual")
}

func (e *RuleExtractor) buildYear(in *matchInput) domain.Intent {
	year := in.dates.now().Year()
	if m := reYear.FindString(stripDateLiterals(in.norm)); m != "" {
		if y, err := strconv.Atoi(m); err == nil {
			year = y
		}
	}
	return domain.Intent{
		Accion:  strPtr(domain.AccionReporte),
		Recurso: domain.RecursoTopProductos,
		Params: domain.Params{
			Year:   intPtr(year),
			Metric: strPtr(domain.MetricUnidades),
		},
	}
}

// --- reglas 12 y 13: umbrales de monto / precio unitario ---

func upperThreshold(norm string) (float64, bool) {
	for _, re := range []*regexp.Regexp{reUpperLead, reUpperSign, reUpperTrail} {
		if m := re.FindStringSubmatch(norm); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

func lowerThreshold(norm string) (float64, bool) {
	for _, re := range []*regexp.Regexp{reLowerLead, reLowerSign, reLowerTrail} {
		if m := re.FindStringSubmatch(norm); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

func perUnit(norm string) bool {
	return strings.Contains(norm, "unidad")
}

func (e *RuleExtractor) matchUpperThreshold(in *matchInput) bool {
	_, ok := upperThreshold(in.norm)
	return ok
}

func (e *RuleExtractor) buildUpperThreshold(in *matchInput) domain.Intent {
	v, _ := upperThreshold(in.norm)
	p := domain.Params{}
	if perUnit(in.norm) {
		p.MinPrecioUnitario = floatPtr(v)
		p.Metric = strPtr(domain.MetricUnidades)
	} else {
		p.MinMonto = floatPtr(v)
		p.Metric = strPtr(domain.MetricMonto)
	}
	return domain.Intent{Accion: strPtr(domain.AccionReporte), Recurso: domain.RecursoTopProductos, Params: p}
}

func (e *RuleExtractor) matchLowerThreshold(in *matchInput) bool {
	_, ok := lowerThreshold(in.norm)
	return ok
}

func (e *RuleExtractor) buildLowerThreshold(in *matchInput) domain.Intent {
	v, _ := lowerThreshold(in.norm)
	p := domain.Params{}
	if perUnit(in.norm) {
		p.MaxPrecioUnitario = floatPtr(v)
		p.Metric = strPtr(domain.MetricUnidades)
	} else {
		p.MaxMonto = floatPtr(v)
		p.Metric = strPtr(domain.MetricMonto)
	}
	return domain.Intent{Accion: strPtr(domain.AccionReporte), Recurso: domain.RecursoTopProductos, Params: p}
}

// --- regla 14: pronostico ---

func (e *RuleExtractor) matchForecast(in *matchInput) bool {
	return textnorm.ContainsAny(in.norm, "pronostico", "que se vendera", "predecir")
}

func (e *RuleExtractor) buildForecast(in *matchInput) domain.Intent {
	p := domain.Params{}
	if lit := reDateLiteral.FindString(in.norm); lit != "" {
		if iso, ok := parseDateLiteral(lit); ok {
			p.Fecha = strPtr(iso)
		}
	}
	return domain.Intent{
		Accion:  strPtr(domain.AccionPronostico),
		Recurso: domain.RecursoPronosticoVentas,
		Params:  p,
	}
}

// --- reglas 15 y 16: resumen y fallback ---

func (e *RuleExtractor) matchSummary(in *matchInput) bool {
	return textnorm.ContainsAny(in.norm, "resumen", "total de ventas", "cuanto vendimos en total")
}

func (e *RuleExtractor) buildSummary(in *matchInput) domain.Intent {
	return domain.Intent{Accion: strPtr(domain.AccionReporte), Recurso: domain.RecursoResumen}
}

func (e *RuleExtractor) buildFallback(in *matchInput) domain.Intent {
	return domain.Intent{Accion: strPtr(domain.AccionReporte), Recurso: domain.RecursoResumen}
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }
