// Package deck holds the host-presentation object model shared with the
// template collaborator (which supplies parsed template trees) and the
// output consumer (which serializes generated presentations).
package deck

// ShapeKind identifies the type of a shape on a slide.
type ShapeKind string

const (
	KindTextBox  ShapeKind = "text"
	KindPicture  ShapeKind = "picture"
	KindTable    ShapeKind = "table"
	KindChart    ShapeKind = "chart"
	KindGroup    ShapeKind = "group"
	KindFreeform ShapeKind = "freeform"
	KindMedia    ShapeKind = "media"
	KindSmartArt ShapeKind = "smartart"
	KindUnknown  ShapeKind = "unknown"
)

// Frame is a shape's bounding box in EMUs (914400 per inch).
type Frame struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
	W int64 `json:"w"`
	H int64 `json:"h"`
}

// Area returns the frame area in square EMUs.
func (f Frame) Area() int64 {
	if f.W <= 0 || f.H <= 0 {
		return 0
	}
	return f.W * f.H
}

// ImageRef points at an image resource inside the template package.
type ImageRef struct {
	RelID string `json:"rel_id,omitempty"` // r:embed relationship ID
	Alt   string `json:"alt,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Shape is one element on a template slide. Group shapes carry their
// children; anything nested deeper than one level is rejected upstream.
type Shape struct {
	Name       string    `json:"name,omitempty"`
	Kind       ShapeKind `json:"kind"`
	Frame      Frame     `json:"frame"`
	Text       string    `json:"text,omitempty"`       // concatenated visible text
	Paragraphs []string  `json:"paragraphs,omitempty"` // per-paragraph text for text frames
	Image      *ImageRef `json:"image,omitempty"`      // set for pictures
	Children   []Shape   `json:"children,omitempty"`   // set for groups
}

// Slide is one slide of a template, shapes in document order.
type Slide struct {
	Index  int     `json:"index"`
	Name   string  `json:"name,omitempty"`
	Shapes []Shape `json:"shapes"`
}

// Template is a parsed template presentation tree. The core only ever
// reads it; the collaborator that produced it retains ownership of the
// underlying file.
type Template struct {
	ID          string  `json:"id"`
	Description string  `json:"description,omitempty"`
	SlideWidth  int64   `json:"slide_width"`  // EMUs
	SlideHeight int64   `json:"slide_height"` // EMUs
	Slides      []Slide `json:"slides"`
}

// Title returns the text of the first text shape on the slide, the usual
// stand-in for a title when no placeholder metadata survives parsing.
func (s Slide) Title() string {
	for _, sh := range s.Shapes {
		if sh.Kind == KindTextBox && sh.Text != "" {
			return sh.Text
		}
	}
	return ""
}
