// Package classify labels the shapes of a template slide ahead of layout
// induction. It is a pure function of slide geometry: no side effects, no
// collaborator calls.
package classify

import (
	"fmt"

	"github.com/kxiao02/pptweaver/internal/deck"
)

// Config holds the classifier thresholds.
type Config struct {
	// BackgroundRatio is the slide-area coverage at or above which a
	// picture is treated as a background, not a content slot.
	BackgroundRatio float64
	// DecorativeRatio is the coverage below which a picture is treated
	// as decoration (logos, corner flourishes) and excluded from slots.
	DecorativeRatio float64
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		BackgroundRatio: 0.95,
		DecorativeRatio: 0.02,
	}
}

// Element is a classified shape.
type Element struct {
	Name       string
	Kind       deck.ShapeKind
	Frame      deck.Frame
	Capacity   int    // display cells for text frames, image count (1) for pictures
	Aspect     string // "wide", "tall" or "square" for pictures
	Background bool
	Decorative bool
	Text       string
	Paragraphs []string
	Image      *deck.ImageRef
}

// Slottable reports whether the element can host mapped content.
func (e Element) Slottable() bool {
	if e.Background || e.Decorative {
		return false
	}
	switch e.Kind {
	case deck.KindTextBox, deck.KindPicture, deck.KindTable, deck.KindChart:
		return true
	}
	return false
}

// Result is the classification outcome for one slide. A skipped slide is
// excluded from induction but does not fail the template.
type Result struct {
	Elements []Element
	Skipped  bool
	Reason   string
}

// Slide classifies every shape on a template slide. Group shapes are
// flattened one level; deeper nesting, and shape kinds the generator has
// no slot semantics for, cause the whole slide to be skipped.
func Slide(s deck.Slide, slideW, slideH int64, cfg Config) Result {
	if cfg.BackgroundRatio <= 0 {
		cfg.BackgroundRatio = 0.95
	}
	var out Result
	for _, sh := range s.Shapes {
		if sh.Kind == deck.KindGroup {
			for _, child := range sh.Children {
				if child.Kind == deck.KindGroup {
					return skip(s, "group nested deeper than one level")
				}
				el, reason := one(child, slideW, slideH, cfg)
				if reason != "" {
					return skip(s, reason)
				}
				out.Elements = append(out.Elements, el)
			}
			continue
		}
		el, reason := one(sh, slideW, slideH, cfg)
		if reason != "" {
			return skip(s, reason)
		}
		out.Elements = append(out.Elements, el)
	}
	return out
}

func skip(s deck.Slide, reason string) Result {
	return Result{Skipped: true, Reason: fmt.Sprintf("slide %d: %s", s.Index, reason)}
}

// one classifies a single non-group shape. A non-empty reason means the
// slide must be skipped as unsupported input.
func one(sh deck.Shape, slideW, slideH int64, cfg Config) (Element, string) {
	el := Element{
		Name:       sh.Name,
		Kind:       sh.Kind,
		Frame:      sh.Frame,
		Text:       sh.Text,
		Paragraphs: sh.Paragraphs,
		Image:      sh.Image,
	}

	switch sh.Kind {
	case deck.KindTextBox:
		el.Capacity = deck.Cells(sh.Text)
	case deck.KindPicture:
		el.Capacity = 1
		el.Aspect = aspectClass(sh.Frame)
		ratio := areaRatio(sh.Frame, slideW, slideH)
		if ratio >= cfg.BackgroundRatio {
			el.Background = true
		} else if ratio < cfg.DecorativeRatio {
			el.Decorative = true
		}
	case deck.KindTable, deck.KindChart:
		el.Capacity = deck.Cells(sh.Text)
	case deck.KindFreeform, deck.KindMedia, deck.KindSmartArt, deck.KindUnknown:
		return el, fmt.Sprintf("unsupported shape kind %q", sh.Kind)
	default:
		return el, fmt.Sprintf("unrecognized shape kind %q", sh.Kind)
	}
	return el, ""
}

func areaRatio(f deck.Frame, slideW, slideH int64) float64 {
	slideArea := slideW * slideH
	if slideArea <= 0 {
		return 0
	}
	return float64(f.Area()) / float64(slideArea)
}

func aspectClass(f deck.Frame) string {
	if f.H <= 0 || f.W <= 0 {
		return "square"
	}
	ratio := float64(f.W) / float64(f.H)
	switch {
	case ratio > 1.25:
		return "wide"
	case ratio < 0.8:
		return "tall"
	default:
		return "square"
	}
}
