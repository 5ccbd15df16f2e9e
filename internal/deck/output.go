package deck

// SlotFill is the content placed into one slot of a generated slide.
type SlotFill struct {
	SlotIndex int        `json:"slot_index"`
	Kind      ShapeKind  `json:"kind"`
	Text      string     `json:"text,omitempty"`
	Images    []ImageRef `json:"images,omitempty"`
	Truncated bool       `json:"truncated,omitempty"`
	Empty     bool       `json:"empty,omitempty"` // slot intentionally left unfilled
}

// GeneratedSlide is one output slide: a layout schema instance populated
// with slot fills. SourceSlide names the template slide whose non-slotted
// styling (background, decoration) the output consumer should carry over.
type GeneratedSlide struct {
	Role        string     `json:"role"`
	SchemaKey   string     `json:"schema_key"`
	SourceSlide int        `json:"source_slide"` // template slide index, -1 for synthesized fallbacks
	Section     int        `json:"section"`      // originating document section index
	Fills       []SlotFill `json:"fills"`
}

// Presentation is the assembled output deck, ready for serialization by
// the presentation-library collaborator.
type Presentation struct {
	TemplateID string           `json:"template_id"`
	Title      string           `json:"title,omitempty"`
	Slides     []GeneratedSlide `json:"slides"`
}
