// Package compose turns ordered document sections into a generated
// presentation against a template's induced layout schemas: it selects a
// schema per section, fits section content into the schema's slots, and
// assembles the result in document order.
package compose

import (
	"context"

	"github.com/kxiao02/pptweaver/internal/deck"
	"github.com/kxiao02/pptweaver/internal/diag"
	"github.com/kxiao02/pptweaver/internal/doctree"
	"github.com/kxiao02/pptweaver/internal/induct"
	"github.com/kxiao02/pptweaver/internal/segment"
)

// Options tunes composition.
type Options struct {
	Title string // output deck title; defaults to the first section title
}

// Build generates one slide per section. Selection never fails: when no
// induced schema fits, a synthesized plain schema stands in. The context
// is honored at section boundaries; a cancelled build discards all
// partial output as a unit.
func Build(ctx context.Context, mapping *induct.Mapping, sections []segment.Section, opts Options) (*deck.Presentation, []diag.Warning, error) {
	var warnings []diag.Warning
	slides := make([]deck.GeneratedSlide, 0, len(sections))

	// Images flow through a document-ordered queue: a section whose
	// layout has no image slot hands its images to the next slide that
	// can host them.
	var pending []doctree.Image

	for i, section := range sections {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		schema := choose(section, i, len(sections), mapping)
		pending = append(pending, section.Images...)
		fills, used, ws := fill(section, schema, pending)
		pending = pending[used:]
		for j := range ws {
			ws[j].Section = section.Index
		}
		warnings = append(warnings, ws...)

		source := -1
		if len(schema.SourceSlides) > 0 {
			source = schema.SourceSlides[0]
		}
		slides = append(slides, deck.GeneratedSlide{
			Role:        string(schema.Role),
			SchemaKey:   schema.Key,
			SourceSlide: source,
			Section:     section.Index,
			Fills:       fills,
		})
	}

	if len(pending) > 0 {
		warnings = append(warnings, diag.Warningf(diag.SurplusImages,
			"%d document images had no image slot anywhere in the deck and were dropped", len(pending)))
	}

	title := opts.Title
	if title == "" && len(sections) > 0 {
		title = sections[0].Title
	}
	return &deck.Presentation{
		TemplateID: mapping.TemplateID,
		Title:      title,
		Slides:     slides,
	}, warnings, nil
}
