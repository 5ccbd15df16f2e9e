package induct

import (
	"crypto/sha256"
	"fmt"
	"math"
	"strings"

	"github.com/kxiao02/pptweaver/internal/classify"
	"github.com/kxiao02/pptweaver/internal/deck"
)

// MappingVersion is bumped when the persisted schema structure changes in
// a way older readers cannot tolerate. Field additions do not bump it.
const MappingVersion = 1

// DefaultTextCapacity is the assumed ceiling, in display cells, for a text
// slot whose template exemplar is an empty placeholder.
const DefaultTextCapacity = 240

// Role is the narrative purpose of a slide within a deck.
type Role string

const (
	RoleOpening       Role = "opening"
	RoleTOC           Role = "toc"
	RoleSectionHeader Role = "section_header"
	RoleEnding        Role = "ending"
	RoleContent       Role = "content"
)

// Slot is one placeholder position within a layout schema.
type Slot struct {
	Role     string         `json:"role"` // "title", "body", "image", "table", "chart"
	Kind     deck.ShapeKind `json:"kind"`
	MinCells int            `json:"min_cells"`
	MaxCells int            `json:"max_cells"`
}

// Schema is a reusable layout derived from one or more template slides
// sharing a functional role and an ordered element-type signature.
type Schema struct {
	Role         Role   `json:"role"`
	Name         string `json:"name"`
	Signature    string `json:"signature"`
	Key          string `json:"key"` // (role, signature hash), unique within a template
	SourceSlides []int  `json:"source_slides"`
	Slots        []Slot `json:"slots"`
}

// ImageSlots returns the number of image slots in the schema.
func (s Schema) ImageSlots() int {
	n := 0
	for _, sl := range s.Slots {
		if sl.Kind == deck.KindPicture {
			n++
		}
	}
	return n
}

// Mapping is the full induction result for one template, the unit stored
// in the schema cache. Readers must ignore fields they do not know.
type Mapping struct {
	Version     int               `json:"version"`
	TemplateID  string            `json:"template_id"`
	ContentHash string            `json:"content_hash"`
	Schemas     map[Role][]Schema `json:"schemas"`
	Skipped     []string          `json:"skipped_slides,omitempty"`
}

// SchemasFor returns the schemas induced for a role, or nil.
func (m *Mapping) SchemasFor(role Role) []Schema {
	if m == nil || m.Schemas == nil {
		return nil
	}
	return m.Schemas[role]
}

// InductionError means a template yielded zero usable content schemas and
// cannot be used for generation.
type InductionError struct {
	TemplateID string
	Reason     string
}

func (e *InductionError) Error() string {
	return fmt.Sprintf("template %s cannot be induced: %s", e.TemplateID, e.Reason)
}

// signature renders the ordered slottable element kinds of a slide, the
// grouping key for schema derivation.
func signature(elements []classify.Element) string {
	var kinds []string
	for _, el := range elements {
		if el.Slottable() {
			kinds = append(kinds, string(el.Kind))
		}
	}
	return strings.Join(kinds, "|")
}

func signatureHash(sig string) string {
	sum := sha256.Sum256([]byte(sig))
	return fmt.Sprintf("%x", sum[:4])
}

// deriveSchemas groups role-assigned slides by signature and computes one
// schema per distinct signature, with per-slot capacity ranges widened by
// the configured margin across all observed exemplars.
func deriveSchemas(role Role, members []classifiedSlide, margin float64) []Schema {
	var out []Schema
	index := map[string]int{} // signature -> position in out

	for _, m := range members {
		sig := signature(m.elements)
		if sig == "" {
			continue // nothing slottable on this slide
		}
		if at, ok := index[sig]; ok {
			mergeCapacities(&out[at], m.elements)
			out[at].SourceSlides = append(out[at].SourceSlides, m.slide.Index)
			continue
		}
		sch := Schema{
			Role:         role,
			Name:         schemaName(role, m.slide.Name, len(out)),
			Signature:    sig,
			Key:          fmt.Sprintf("%s-%s", role, signatureHash(sig)),
			SourceSlides: []int{m.slide.Index},
			Slots:        buildSlots(m.elements),
		}
		index[sig] = len(out)
		out = append(out, sch)
	}

	for i := range out {
		widenCapacities(&out[i], margin)
	}
	return out
}

func buildSlots(elements []classify.Element) []Slot {
	var slots []Slot
	sawTitle := false
	for _, el := range elements {
		if !el.Slottable() {
			continue
		}
		slot := Slot{Kind: el.Kind, MinCells: el.Capacity, MaxCells: el.Capacity}
		switch el.Kind {
		case deck.KindTextBox:
			if !sawTitle {
				slot.Role = "title"
				sawTitle = true
			} else {
				slot.Role = "body"
			}
		case deck.KindPicture:
			slot.Role = "image"
			slot.MinCells = 0
			slot.MaxCells = 1
		case deck.KindTable:
			slot.Role = "table"
		case deck.KindChart:
			slot.Role = "chart"
		}
		slots = append(slots, slot)
	}
	return slots
}

// mergeCapacities folds another exemplar's observed capacities into an
// existing schema with the same signature.
func mergeCapacities(sch *Schema, elements []classify.Element) {
	i := 0
	for _, el := range elements {
		if !el.Slottable() {
			continue
		}
		if i >= len(sch.Slots) {
			break
		}
		if el.Kind != deck.KindPicture {
			if el.Capacity < sch.Slots[i].MinCells {
				sch.Slots[i].MinCells = el.Capacity
			}
			if el.Capacity > sch.Slots[i].MaxCells {
				sch.Slots[i].MaxCells = el.Capacity
			}
		}
		i++
	}
}

func widenCapacities(sch *Schema, margin float64) {
	for i := range sch.Slots {
		sl := &sch.Slots[i]
		if sl.Kind == deck.KindPicture {
			continue
		}
		sl.MinCells = int(math.Floor(float64(sl.MinCells) * (1 - margin)))
		sl.MaxCells = int(math.Ceil(float64(sl.MaxCells) * (1 + margin)))
		if sl.MaxCells == 0 {
			// Empty template placeholder: no observed text to size from.
			sl.MaxCells = DefaultTextCapacity
		}
	}
}

func schemaName(role Role, slideName string, ordinal int) string {
	if slideName != "" {
		return slideName
	}
	return fmt.Sprintf("%s-%c", role, 'A'+ordinal)
}
