package compose

import (
	"github.com/kxiao02/pptweaver/internal/deck"
	"github.com/kxiao02/pptweaver/internal/induct"
	"github.com/kxiao02/pptweaver/internal/segment"
)

// imageMismatchPenalty weighs one missing or surplus image slot against
// capacity distance when scoring candidate schemas.
const imageMismatchPenalty = 200

// overflowTolerance is how far section text may exceed a schema's total
// text capacity before the plain fallback takes over.
const overflowTolerance = 3

// choose picks the schema for a section. Position constraints come
// first: the opening section takes an Opening schema whenever one exists,
// the closing section an Ending schema, dividers a SectionHeader schema.
// Among same-role candidates the minimum capacity-mismatch score wins.
func choose(section segment.Section, position, total int, mapping *induct.Mapping) induct.Schema {
	role := positionRole(section, position, total, mapping)
	candidates := mapping.SchemasFor(role)
	if len(candidates) == 0 {
		return plainSchema(role)
	}

	best := 0
	bestScore := -1
	for i, c := range candidates {
		s := score(section, c)
		if bestScore < 0 || s < bestScore {
			best, bestScore = i, s
		}
	}
	chosen := candidates[best]
	if sectionCells(section) > overflowTolerance*textCapacity(chosen) {
		// Nothing induced comes close; a plain slide beats a mangled one.
		// A zero-text-slot schema facing any text at all lands here too,
		// so a titled section never loses its title to a picture layout.
		return plainSchema(role)
	}
	return chosen
}

func positionRole(section segment.Section, position, total int, mapping *induct.Mapping) induct.Role {
	switch {
	case position == 0 && len(mapping.SchemasFor(induct.RoleOpening)) > 0:
		return induct.RoleOpening
	case position == total-1 && len(mapping.SchemasFor(induct.RoleEnding)) > 0:
		return induct.RoleEnding
	case section.Divider && len(mapping.SchemasFor(induct.RoleSectionHeader)) > 0:
		return induct.RoleSectionHeader
	default:
		return induct.RoleContent
	}
}

// score is the sum of absolute capacity mismatch across text slots plus a
// penalty per image-slot-count mismatch. Lower is better.
func score(section segment.Section, schema induct.Schema) int {
	textDist := sectionCells(section) - textCapacity(schema)
	if textDist < 0 {
		textDist = -textDist
	}
	imgDist := schema.ImageSlots() - len(section.Images)
	if imgDist < 0 {
		imgDist = -imgDist
	}
	return textDist + imgDist*imageMismatchPenalty
}

func textCapacity(schema induct.Schema) int {
	total := 0
	for _, sl := range schema.Slots {
		if sl.Kind == deck.KindTextBox {
			total += sl.MaxCells
		}
	}
	return total
}

// plainSchema synthesizes the default plain-text layout used when a role
// has no induced schema (e.g. a template missing an Opening slide) or no
// candidate fits within tolerance.
func plainSchema(role induct.Role) induct.Schema {
	return induct.Schema{
		Role:      role,
		Name:      string(role) + "-plain",
		Signature: "text|text",
		Key:       string(role) + "-fallback",
		Slots: []induct.Slot{
			{Role: "title", Kind: deck.KindTextBox, MaxCells: 80},
			{Role: "body", Kind: deck.KindTextBox, MaxCells: 4 * induct.DefaultTextCapacity},
		},
	}
}

func cells(s string) int { return deck.Cells(s) }

// sectionCells is the section's total text load, title included.
func sectionCells(section segment.Section) int {
	return cells(section.Title) + cells(section.Text)
}
