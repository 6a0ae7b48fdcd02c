package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ventia-app/ventia/assistant/domain"
)

const (
	baselineModel = "gemini-2.0-flash"

	defaultBaseURL    = "https://generativelanguage.googleapis.com"
	defaultAPIVersion = "v1beta"
)

// allowedModels is the fixed set of model identifiers the requester will
// accept; anything else is replaced by the baseline.
var allowedModels = []string{
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-1.5-flash",
	"gemini-1.5-flash-8b",
}

// fallbackModels are appended after the configured model.
var fallbackModels = []string{"gemini-2.0-flash-lite", "gemini-1.5-flash"}

// GeminiConfig configures the hosted-model requester.
type GeminiConfig struct {
	APIKey        string
	Model         string
	BaseURL       string
	APIVersion    string
	Timeout       time.Duration
	MaxInputChars int
}

// DefaultGeminiConfig returns the stock requester settings, without a key.
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		Model:         baselineModel,
		BaseURL:       defaultBaseURL,
		APIVersion:    defaultAPIVersion,
		Timeout:       15 * time.Second,
		MaxInputChars: 500,
	}
}

// GeminiRequester calls the generative-text REST endpoint directly and
// decodes the model's JSON reply into a ModelReply.
type GeminiRequester struct {
	cfg    GeminiConfig
	client *http.Client
	now    func() time.Time
}

// NewGeminiRequester builds a requester. A nil nowFn falls back to time.Now.
func NewGeminiRequester(cfg GeminiConfig, nowFn func() time.Time) *GeminiRequester {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = 500
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	return &GeminiRequester{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		now:    nowFn,
	}
}

// Wire types for the generateContent endpoint.
type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

// candidateModels builds the ordered, de-duplicated list of models to try.
// A configured model outside the allow-list is replaced by the baseline.
func (g *GeminiRequester) candidateModels() []string {
	first := baselineModel
	for _, m := range allowedModels {
		if g.cfg.Model == m {
			first = m
			break
		}
	}
	list := append([]string{first}, fallbackModels...)
	seen := make(map[string]bool, len(list))
	out := list[:0]
	for _, m := range list {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

func (g *GeminiRequester) buildPrompt(query string) string {
	now := g.now()
	hoy := now.Format("2006-01-02")
	ayer := now.AddDate(0, 0, -1).Format("2006-01-02")

	runes := []rune(query)
	if len(runes) > g.cfg.MaxInputChars {
		query = string(runes[:g.cfg.MaxInputChars])
	}

	var b strings.Builder
	b.WriteString("Eres el asistente de reportes de una tienda. Analiza la consulta del usuario ")
	b.WriteString("y responde SOLO con un objeto JSON valido, sin texto adicional, con estas claves:\n")
	b.WriteString(`{"intent": {"accion": "reporte|exportar|pronostico", "recurso": "resumen|ventas_por_dia|top_productos|mix_pago|stock_bajo|pronostico_ventas", "params": {}} , "message": "respuesta breve para el usuario"}` + "\n")
	b.WriteString("Si la consulta es solo conversacional, usa \"intent\": null y responde en \"message\".\n")
	b.WriteString("En params puedes usar: dias, metric (unidades|monto), umbral, formato (pdf|excel), order (asc|desc), ")
	b.WriteString("categoria, exclude, start, end (YYYY-MM-DD), year, month, season, fecha, min_monto, max_monto, ")
	b.WriteString("min_precio_unitario, max_precio_unitario.\n")
	fmt.Fprintf(&b, "Contexto: hoy es %s, ayer fue %s, mes actual %d, anio actual %d.\n",
		hoy, ayer, int(now.Month()), now.Year())
	fmt.Fprintf(&b, "Consulta del usuario: %s", query)
	return b.String()
}

// RequestIntent tries each candidate model in order until one returns a
// parseable JSON reply. Model-unavailable and empty/blocked responses are
// soft failures that advance to the next model; any other upstream error
// aborts immediately.
func (g *GeminiRequester) RequestIntent(ctx context.Context, query string) (domain.ModelReply, error) {
	prompt := g.buildPrompt(query)

	var lastErr error
	for _, model := range g.candidateModels() {
		text, soft, err := g.callModel(ctx, model, prompt)
		if err != nil {
			if soft {
				logrus.WithError(err).WithFields(logrus.Fields{"model": model}).Warn("[GEMINI] Modelo descartado")
				lastErr = err
				continue
			}
			return domain.ModelReply{}, fmt.Errorf("gemini request failed on %s: %w", model, err)
		}

		reply, err := parseModelReply(text)
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{"model": model}).Warn("[GEMINI] Respuesta no parseable")
			lastErr = err
			continue
		}
		return reply, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no candidate models configured")
	}
	return domain.ModelReply{}, fmt.Errorf("all gemini models exhausted: %w", lastErr)
}

func (g *GeminiRequester) callModel(ctx context.Context, model, prompt string) (string, bool, error) {
	body := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: generationConfig{
			Temperature:     0.0,
			TopK:            1,
			TopP:            0.95,
			MaxOutputTokens: 2000,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", false, err
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent?key=%s",
		g.cfg.BaseURL, g.cfg.APIVersion, model, g.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return "", true, fmt.Errorf("model %s not available (404)", model)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", false, fmt.Errorf("upstream status %d: %s", resp.StatusCode, truncateBody(raw))
	}

	var envelope map[string]any
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", true, fmt.Errorf("invalid response body: %w", err)
	}

	if reason := blockReason(envelope); reason != "" {
		return "", true, fmt.Errorf("response blocked: %s", reason)
	}

	text := extractText(envelope)
	if strings.TrimSpace(text) == "" {
		return "", true, fmt.Errorf("empty response from %s", model)
	}
	return text, false, nil
}

func truncateBody(raw []byte) string {
	s := string(raw)
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// blockReason reports why a response carries no usable content, when the
// envelope says so explicitly.
func blockReason(envelope map[string]any) string {
	if fb, ok := envelope["promptFeedback"].(map[string]any); ok {
		if reason, ok := fb["blockReason"].(string); ok && reason != "" {
			return reason
		}
	}
	if c := firstCandidate(envelope); c != nil {
		if reason, ok := c["finishReason"].(string); ok && reason == "SAFETY" {
			return "SAFETY"
		}
	}
	return ""
}

func firstCandidate(envelope map[string]any) map[string]any {
	candidates, ok := envelope["candidates"].([]any)
	if !ok || len(candidates) == 0 {
		return nil
	}
	c, _ := candidates[0].(map[string]any)
	return c
}

// envelopeExtractor pulls generated text out of one possible response
// shape. Extractors are tried in order; the first non-empty result wins.
type envelopeExtractor func(map[string]any) string

var extractors = []envelopeExtractor{
	extractCandidateParts,
	extractCandidateText,
	extractFlatText,
	extractFlatOutput,
}

func extractText(envelope map[string]any) string {
	for _, ex := range extractors {
		if text := ex(envelope); text != "" {
			return text
		}
	}
	return ""
}

// candidates[0].content.parts[*].text, joined.
func extractCandidateParts(envelope map[string]any) string {
	c := firstCandidate(envelope)
	if c == nil {
		return ""
	}
	content, ok := c["content"].(map[string]any)
	if !ok {
		return ""
	}
	parts, ok := content["parts"].([]any)
	if !ok {
		// Role-only content with no parts is a valid but empty shape.
		return ""
	}
	var b strings.Builder
	for _, p := range parts {
		if pm, ok := p.(map[string]any); ok {
			if t, ok := pm["text"].(string); ok {
				b.WriteString(t)
			}
		}
	}
	return b.String()
}

// candidates[0].text as a direct field.
func extractCandidateText(envelope map[string]any) string {
	c := firstCandidate(envelope)
	if c == nil {
		return ""
	}
	t, _ := c["text"].(string)
	return t
}

// Free-floating top-level text field.
func extractFlatText(envelope map[string]any) string {
	t, _ := envelope["text"].(string)
	return t
}

// Free-floating top-level output field.
func extractFlatOutput(envelope map[string]any) string {
	t, _ := envelope["output"].(string)
	return t
}

// normalizeJSON strips a surrounding code fence and, when the remainder is
// not a bare object, falls back to the largest brace-delimited substring.
func normalizeJSON(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		start := strings.Index(s, "{")
		end := strings.LastIndex(s, "}")
		if start >= 0 && end > start {
			s = s[start : end+1]
		}
	}
	return s
}

// parseModelReply decodes the generated text into a ModelReply. The object
// must carry an intent key (null allowed) or, for older prompt revisions,
// the intent fields directly at the top level.
func parseModelReply(text string) (domain.ModelReply, error) {
	s := normalizeJSON(text)

	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return domain.ModelReply{}, fmt.Errorf("model reply is not a JSON object: %w", err)
	}

	if intent, ok := obj["intent"]; ok {
		msg, _ := obj["message"].(string)
		return domain.ModelReply{Intent: intent, Message: msg}, nil
	}

	if _, ok := obj["accion"]; ok {
		return domain.ModelReply{Intent: obj}, nil
	}
	if _, ok := obj["recurso"]; ok {
		return domain.ModelReply{Intent: obj}, nil
	}

	return domain.ModelReply{}, fmt.Errorf("model reply carries no intent")
}
