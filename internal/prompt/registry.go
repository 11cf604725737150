// Package prompt holds the outbound instruction template and output contract
// of every analysis capability.
package prompt

import (
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/schema"
)

// Mode selects how a capability talks to the model.
type Mode int

const (
	// ModeProse asks for markdown; sentiment comes from a keyword scan.
	ModeProse Mode = iota
	// ModeEmbedded uses retrieval and describes the JSON layout in the
	// prompt text, since the provider cannot enforce a schema alongside search.
	ModeEmbedded
	// ModeStructured sends the schema for the provider to enforce.
	ModeStructured
	// ModePlaceholder never reaches the model.
	ModePlaceholder
)

func (m Mode) String() string {
	switch m {
	case ModeProse:
		return "prose"
	case ModeEmbedded:
		return "embedded"
	case ModeStructured:
		return "structured"
	case ModePlaceholder:
		return "placeholder"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Spec describes one capability's request shape.
type Spec struct {
	Capability domain.Capability
	Mode       Mode
	Retrieval  bool
	Schema     *schema.Schema

	tmpl *template.Template
}

// RequestSchema is the schema the provider must enforce, nil in retrieval or
// prose modes.
func (s Spec) RequestSchema() *schema.Schema {
	if s.Mode == ModeStructured {
		return s.Schema
	}
	return nil
}

var (
	ErrNoPrompt          = errors.New("capability does not call the model")
	ErrUnknownCapability = errors.New("unknown capability")
)

type Registry struct {
	specs map[domain.Capability]Spec
}

func NewRegistry() *Registry {
	r := &Registry{specs: make(map[domain.Capability]Spec, len(domain.Capabilities))}

	r.add(domain.CapabilityNews, ModeProse, true, nil, newsTemplate)
	r.add(domain.CapabilityYahooFinance, ModeProse, true, nil, yahooFinanceTemplate)
	r.add(domain.CapabilityIdeas, ModeProse, true, nil, ideasTemplate)
	r.add(domain.CapabilityQuantum, ModeProse, false, nil, quantumTemplate)

	r.add(domain.CapabilityFundamental, ModeEmbedded, true, fundamentalSchema(), fundamentalTemplate)
	r.add(domain.CapabilityTechnical, ModeEmbedded, true, technicalSchema(), technicalTemplate)
	r.add(domain.CapabilityCommunityInsight, ModeEmbedded, true, communitySchema(), communityTemplate)
	r.add(domain.CapabilityInstitutionalDeepDive, ModeEmbedded, true, institutionalSchema(), institutionalTemplate)

	r.add(domain.CapabilityClustering, ModeStructured, false, clusteringSchema(), clusteringTemplate)
	r.add(domain.CapabilityBacktest, ModeStructured, false, backtestSchema(), backtestTemplate)
	r.add(domain.CapabilityMLPrediction, ModeStructured, false, mlSchema(), mlTemplate)
	r.add(domain.CapabilityPortfolioOptimization, ModeStructured, false, portfolioSchema(), portfolioTemplate)
	r.add(domain.CapabilityFuzzyCorrelation, ModeStructured, false, fuzzySchema(), fuzzyTemplate)

	r.specs[domain.CapabilityChart] = Spec{Capability: domain.CapabilityChart, Mode: ModePlaceholder}
	return r
}

func (r *Registry) add(c domain.Capability, mode Mode, retrieval bool, s *schema.Schema, text string) {
	r.specs[c] = Spec{
		Capability: c,
		Mode:       mode,
		Retrieval:  retrieval,
		Schema:     s,
		tmpl:       mustTemplate(string(c), text),
	}
}

func (r *Registry) Spec(c domain.Capability) (Spec, bool) {
	s, ok := r.specs[c]
	return s, ok
}

// SchemaFor returns the output contract of c, or nil for prose capabilities.
func (r *Registry) SchemaFor(c domain.Capability) *schema.Schema {
	return r.specs[c].Schema
}

// Build renders the prompt for req. Parameters are substituted verbatim.
func (r *Registry) Build(req domain.AnalysisRequest) (string, error) {
	spec, ok := r.specs[req.Capability]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCapability, req.Capability)
	}
	if spec.Mode == ModePlaceholder {
		return "", ErrNoPrompt
	}

	var b strings.Builder
	if err := spec.tmpl.Execute(&b, req); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", req.Capability, err)
	}
	if spec.Mode == ModeEmbedded {
		b.WriteString(layoutInstruction)
		b.WriteString(spec.Schema.Layout())
	}
	return b.String(), nil
}
