package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/ventia-app/ventia/assistant/domain"
	"github.com/ventia-app/ventia/pkg/textnorm"
)

// OrchestratorConfig holds the user-visible defaults of the resolver.
type OrchestratorConfig struct {
	// Greeting is returned when a conversational reply carries no message.
	Greeting string
}

// Orchestrator resolves raw user text into an intent envelope. The hosted
// model is consulted first; the rule cascade is the guaranteed fallback.
type Orchestrator struct {
	cfg       OrchestratorConfig
	requester domain.IntentRequester
	extractor *RuleExtractor
	now       func() time.Time
}

// NewOrchestrator wires the resolver. requester may be nil, in which case
// every query goes straight to the rule cascade. A nil nowFn falls back to
// time.Now.
func NewOrchestrator(cfg OrchestratorConfig, requester domain.IntentRequester, extractor *RuleExtractor, nowFn func() time.Time) *Orchestrator {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Orchestrator{cfg: cfg, requester: requester, extractor: extractor, now: nowFn}
}

// Resolve produces the final envelope for a user utterance.
func (o *Orchestrator) Resolve(ctx context.Context, text string) domain.Resolution {
	traceID := uuid.NewString()
	log := logrus.WithFields(logrus.Fields{"trace_id": traceID})

	if o.requester != nil {
		reply, err := o.requester.RequestIntent(ctx, text)
		if err != nil {
			log.WithError(err).Warn("[ASSISTANT] Modelo alojado no disponible, usando reglas")
		} else {
			if reply.Intent == nil {
				// Pure conversation, no data action follows.
				msg := reply.Message
				if msg == "" {
					msg = o.cfg.Greeting
				}
				return domain.Resolution{Intent: nil, Message: msg}
			}
			if intent, ok := o.trustedIntent(reply.Intent); ok {
				log.WithFields(logrus.Fields{"recurso": intent.Recurso}).Debug("[ASSISTANT] Intent del modelo aceptado")
				return domain.Resolution{Intent: intent, Message: reply.Message}
			}
			log.Warn("[ASSISTANT] Respuesta del modelo invalida, usando reglas")
		}
	}

	intent := o.extractor.Extract(text, o.now())
	o.disambiguate(text, &intent)
	return domain.Resolution{Intent: &intent}
}

// trustedIntent vets a loosely typed model intent. Anything that is not a
// mapping with a known non-empty recurso is rejected and triggers fallback.
func (o *Orchestrator) trustedIntent(raw any) (*domain.Intent, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, false
	}
	// Role-marker objects are an echo of the request envelope, not an intent.
	if _, hasRole := m["role"]; hasRole {
		return nil, false
	}
	recurso, _ := m["recurso"].(string)
	if recurso == "" {
		return nil, false
	}

	buf, err := json.Marshal(m)
	if err != nil {
		return nil, false
	}
	var intent domain.Intent
	if err := json.Unmarshal(buf, &intent); err != nil {
		return nil, false
	}
	intent.Params.Sanitize()
	if err := intent.Validate(); err != nil {
		return nil, false
	}
	return &intent, true
}

// disambiguate applies the final keyword pass. It only runs on the rule
// path so a trusted hosted intent is never overridden.
func (o *Orchestrator) disambiguate(text string, intent *domain.Intent) {
	norm := textnorm.Fold(text)
	if textnorm.ContainsAny(norm, "mas vendid", "top producto", "mas popular") {
		intent.Recurso = domain.RecursoTopProductos
		intent.Params.Order = strPtr(domain.OrderDesc)
		return
	}
	if textnorm.ContainsAny(norm, "menos vendid", "menos popular", "peor vendid") {
		intent.Params.Order = strPtr(domain.OrderAsc)
	}
}
