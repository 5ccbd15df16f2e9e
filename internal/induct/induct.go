// Package induct analyzes a template's example slides and derives the
// reusable layout schemas that generation selects from. Induction runs
// once per template; its output is persisted by the schema cache.
package induct

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/kxiao02/pptweaver/internal/classify"
	"github.com/kxiao02/pptweaver/internal/deck"
	"github.com/kxiao02/pptweaver/internal/diag"
)

// RoleGuess is an assist collaborator's suggestion for a slide.
type RoleGuess struct {
	Role       Role
	Confidence float64
	Caption    string
}

// Assist is the capability seam for model-backed slide classification.
// Implementations must honor the context deadline; any error is treated
// as the collaborator being unavailable and heuristics take over.
type Assist interface {
	ClassifySlide(ctx context.Context, s deck.Slide) (RoleGuess, error)
}

// minAssistConfidence is the floor below which a model guess is ignored
// in favor of structural inference.
const minAssistConfidence = 0.5

// Config tunes the inducer.
type Config struct {
	Classify       classify.Config
	CapacityMargin float64 // widening applied to observed slot capacities
	AssistParallel int     // concurrent assist calls per template
}

// DefaultConfig returns the standard induction tuning.
func DefaultConfig() Config {
	return Config{
		Classify:       classify.DefaultConfig(),
		CapacityMargin: 0.2,
		AssistParallel: 4,
	}
}

// Inducer derives layout schemas from template slides. A nil assist means
// heuristic-only classification.
type Inducer struct {
	cfg    Config
	assist Assist
	log    *slog.Logger
}

func New(cfg Config, assist Assist, log *slog.Logger) *Inducer {
	if cfg.CapacityMargin <= 0 {
		cfg.CapacityMargin = 0.2
	}
	if cfg.AssistParallel <= 0 {
		cfg.AssistParallel = 4
	}
	return &Inducer{cfg: cfg, assist: assist, log: log}
}

// classifiedSlide pairs a template slide with its classified elements.
type classifiedSlide struct {
	slide    deck.Slide
	elements []classify.Element
	role     Role
	assigned bool
}

// Induce runs element classification and role inference over every slide
// of the template and derives the role -> schema mapping. The result is
// deterministic for identical input: slides are visited in order and all
// ties resolve to the earlier slide.
func (in *Inducer) Induce(ctx context.Context, tpl *deck.Template) (*Mapping, []diag.Warning, error) {
	mapping := &Mapping{
		Version:     MappingVersion,
		TemplateID:  tpl.ID,
		ContentHash: deck.ContentHash(tpl),
		Schemas:     map[Role][]Schema{},
	}
	var warnings []diag.Warning

	// Phase 1: classify shapes, dropping unsupported slides.
	var slides []classifiedSlide
	for _, s := range tpl.Slides {
		res := classify.Slide(s, tpl.SlideWidth, tpl.SlideHeight, in.cfg.Classify)
		if res.Skipped {
			mapping.Skipped = append(mapping.Skipped, res.Reason)
			warnings = append(warnings, diag.Warning{
				Code: diag.UnsupportedElement, Detail: res.Reason, Slide: s.Index,
			})
			continue
		}
		slides = append(slides, classifiedSlide{slide: s, elements: res.Elements})
	}

	// Phase 2: optional model-assisted guesses, fetched concurrently.
	guesses := in.assistGuesses(ctx, slides, &warnings)

	// Phase 3: role assignment, strongest source first.
	for i := range slides {
		if role, ok := hintRole(slides[i].slide); ok {
			slides[i].role, slides[i].assigned = role, true
		}
	}
	for i := range slides {
		if slides[i].assigned {
			continue
		}
		if g := guesses[i]; g != nil && g.Confidence >= minAssistConfidence {
			slides[i].role, slides[i].assigned = g.Role, true
		}
	}
	openingTaken := anyRole(slides, RoleOpening)
	for i := range slides {
		if slides[i].assigned {
			continue
		}
		if role, ok := structuralRole(slides[i].elements, openingTaken); ok {
			slides[i].role, slides[i].assigned = role, true
			if role == RoleOpening {
				openingTaken = true
			}
		}
	}
	// Positional fallback: first unassigned slide opens, last one closes.
	if !anyRole(slides, RoleOpening) {
		for i := range slides {
			if !slides[i].assigned {
				slides[i].role, slides[i].assigned = RoleOpening, true
				break
			}
		}
	}
	if !anyRole(slides, RoleEnding) {
		for i := len(slides) - 1; i >= 0; i-- {
			if !slides[i].assigned {
				slides[i].role, slides[i].assigned = RoleEnding, true
				break
			}
		}
	}
	for i := range slides {
		if !slides[i].assigned {
			slides[i].role, slides[i].assigned = RoleContent, true
		}
	}

	// Phase 4: schema derivation per role, grouped by element signature.
	for _, role := range []Role{RoleOpening, RoleTOC, RoleSectionHeader, RoleEnding, RoleContent} {
		var members []classifiedSlide
		for _, cs := range slides {
			if cs.role == role {
				members = append(members, cs)
			}
		}
		if schemas := deriveSchemas(role, members, in.cfg.CapacityMargin); len(schemas) > 0 {
			mapping.Schemas[role] = schemas
		}
	}

	if len(mapping.Schemas[RoleContent]) == 0 {
		return nil, warnings, &InductionError{
			TemplateID: tpl.ID,
			Reason:     "no content-role slide produced a usable schema",
		}
	}
	return mapping, warnings, nil
}

// assistGuesses collects model guesses for each slide with bounded
// concurrency. Failures are soft: a nil guess falls through to heuristics
// and a collaborator-timeout warning is recorded once per slide.
func (in *Inducer) assistGuesses(ctx context.Context, slides []classifiedSlide, warnings *[]diag.Warning) []*RoleGuess {
	guesses := make([]*RoleGuess, len(slides))
	if in.assist == nil || len(slides) == 0 {
		return guesses
	}

	type miss struct {
		slide int
		err   error
	}
	misses := make(chan miss, len(slides))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.cfg.AssistParallel)
	for i := range slides {
		g.Go(func() error {
			guess, err := in.assist.ClassifySlide(gctx, slides[i].slide)
			if err != nil {
				misses <- miss{slide: slides[i].slide.Index, err: err}
				return nil
			}
			guesses[i] = &guess
			return nil
		})
	}
	g.Wait()
	close(misses)

	for m := range misses {
		if in.log != nil {
			in.log.Warn("assist classification unavailable", "slide", m.slide, "error", m.err)
		}
		*warnings = append(*warnings, diag.Warning{
			Code:   diag.CollaboratorTimeout,
			Detail: "assist classification unavailable, heuristics used: " + m.err.Error(),
			Slide:  m.slide,
		})
	}
	return guesses
}

func anyRole(slides []classifiedSlide, role Role) bool {
	for _, cs := range slides {
		if cs.assigned && cs.role == role {
			return true
		}
	}
	return false
}
