// Package segment splits a parsed document into the ordered logical
// sections that generation maps onto slides.
package segment

import (
	"strings"

	"github.com/kxiao02/pptweaver/internal/deck"
	"github.com/kxiao02/pptweaver/internal/diag"
	"github.com/kxiao02/pptweaver/internal/doctree"
)

// ContentKind classifies a section's content profile.
type ContentKind string

const (
	TextHeavy  ContentKind = "text_heavy"
	ImageHeavy ContentKind = "image_heavy"
	Mixed      ContentKind = "mixed"
)

// Config controls segmentation behavior.
type Config struct {
	MinSections int // lower clamp when no target is given
	MaxSections int // upper clamp when no target is given

	ImageHeavyMaxText int // cells below which >=2 images makes a section image-heavy
	TextHeavyMinText  int // cells above which a no-image section is text-heavy
	DividerMaxText    int // cells at or below which a titled, image-free section is a divider

	ImageWeight int // contribution of one image to a section's volume estimate
}

// DefaultConfig returns bounds matching typical template capability.
func DefaultConfig() Config {
	return Config{
		MinSections:       3,
		MaxSections:       14,
		ImageHeavyMaxText: 300,
		TextHeavyMinText:  400,
		DividerMaxText:    40,
		ImageWeight:       120,
	}
}

// Section is an ordered span of the source document. Sections are built
// once per generation request and never mutated afterwards.
type Section struct {
	Index   int
	Title   string
	Text    string
	Images  []doctree.Image
	Kind    ContentKind
	Divider bool
	Volume  int // text cells plus weighted image count
}

// Split segments the document on heading boundaries. With target <= 0 the
// natural heading count is clamped to [MinSections, MaxSections]; a
// positive target is matched exactly when possible, merging the smallest
// adjacent pair or splitting the largest section as needed. A shortfall
// is reported as a segmentation-fallback warning, never an error.
func Split(doc *doctree.Document, target int, cfg Config) ([]Section, []diag.Warning) {
	cfg = withDefaults(cfg)
	sections := natural(doc)
	var warnings []diag.Warning

	want := target
	if want <= 0 {
		want = len(sections)
		if want < cfg.MinSections {
			want = cfg.MinSections
		}
		if want > cfg.MaxSections {
			want = cfg.MaxSections
		}
	}

	for len(sections) > want && len(sections) > 1 {
		sections = mergeSmallestAdjacent(sections)
	}
	for len(sections) < want {
		split, ok := splitLargest(sections)
		if !ok {
			warnings = append(warnings, diag.Warningf(diag.SegmentationFallback,
				"requested %d sections, achieved %d: no section left to split", want, len(sections)))
			break
		}
		sections = split
	}

	for i := range sections {
		sections[i].Index = i
		sections[i].Kind = classifyKind(&sections[i], cfg)
		sections[i].Divider = isDivider(&sections[i], cfg)
		sections[i].Volume = deck.Cells(sections[i].Text) + len(sections[i].Images)*cfg.ImageWeight
	}
	return sections, warnings
}

func withDefaults(cfg Config) Config {
	d := DefaultConfig()
	if cfg.MinSections <= 0 {
		cfg.MinSections = d.MinSections
	}
	if cfg.MaxSections <= 0 {
		cfg.MaxSections = d.MaxSections
	}
	if cfg.ImageHeavyMaxText <= 0 {
		cfg.ImageHeavyMaxText = d.ImageHeavyMaxText
	}
	if cfg.TextHeavyMinText <= 0 {
		cfg.TextHeavyMinText = d.TextHeavyMinText
	}
	if cfg.DividerMaxText <= 0 {
		cfg.DividerMaxText = d.DividerMaxText
	}
	if cfg.ImageWeight <= 0 {
		cfg.ImageWeight = d.ImageWeight
	}
	return cfg
}

// natural builds one section per top-level document node, folding nested
// subsections into their parent's text.
func natural(doc *doctree.Document) []Section {
	var sections []Section
	for _, node := range doc.Children {
		sections = append(sections, Section{
			Title:  node.Title,
			Text:   flatten(node),
			Images: collectImages(node),
		})
	}
	if len(sections) == 0 {
		// Headingless document: everything is one section.
		sections = append(sections, Section{Title: doc.Title})
	}
	return sections
}

func flatten(node *doctree.Node) string {
	var sb strings.Builder
	var walk func(n *doctree.Node, withTitle bool)
	walk = func(n *doctree.Node, withTitle bool) {
		if withTitle && n.Title != "" {
			if sb.Len() > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(n.Title)
		}
		if n.Text != "" {
			if sb.Len() > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(n.Text)
		}
		for _, c := range n.Children {
			walk(c, true)
		}
	}
	walk(node, false)
	return sb.String()
}

func collectImages(node *doctree.Node) []doctree.Image {
	images := append([]doctree.Image(nil), node.Images...)
	for _, c := range node.Children {
		images = append(images, collectImages(c)...)
	}
	return images
}

// mergeSmallestAdjacent folds the adjacent pair with the smallest
// combined text volume into one section, keeping document order.
func mergeSmallestAdjacent(sections []Section) []Section {
	best := 0
	bestSize := -1
	for i := 0; i < len(sections)-1; i++ {
		size := deck.Cells(sections[i].Text) + deck.Cells(sections[i+1].Text)
		if bestSize < 0 || size < bestSize {
			best, bestSize = i, size
		}
	}
	a, b := sections[best], sections[best+1]
	merged := Section{
		Title:  a.Title,
		Text:   joinText(a.Text, b.Title, b.Text),
		Images: append(append([]doctree.Image(nil), a.Images...), b.Images...),
	}
	out := append([]Section(nil), sections[:best]...)
	out = append(out, merged)
	out = append(out, sections[best+2:]...)
	return out
}

func joinText(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}

// splitLargest splits the largest section at the sentence boundary
// nearest its midpoint. Returns ok=false when no section has two
// sentences to split between.
func splitLargest(sections []Section) ([]Section, bool) {
	// Visit in size order so a non-splittable largest section does not
	// block a splittable runner-up.
	order := make([]int, len(sections))
	for i := range order {
		order[i] = i
	}
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			if deck.Cells(sections[order[j]].Text) > deck.Cells(sections[order[i]].Text) {
				order[i], order[j] = order[j], order[i]
			}
		}
	}

	for _, idx := range order {
		head, tail, ok := splitAtMidpoint(sections[idx].Text)
		if !ok {
			continue
		}
		first := sections[idx]
		first.Text = head
		second := Section{Title: sections[idx].Title, Text: tail}
		out := append([]Section(nil), sections[:idx]...)
		out = append(out, first, second)
		out = append(out, sections[idx+1:]...)
		return out, true
	}
	return sections, false
}

// splitAtMidpoint cuts text at the sentence boundary nearest its middle.
func splitAtMidpoint(text string) (string, string, bool) {
	sentences := splitSentences(text)
	if len(sentences) < 2 {
		return "", "", false
	}
	total := deck.Cells(text)
	mid := total / 2

	bestCut := 1
	bestDist := -1
	running := 0
	for i := 0; i < len(sentences)-1; i++ {
		running += deck.Cells(sentences[i])
		dist := running - mid
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			bestCut, bestDist = i+1, dist
		}
	}
	head := strings.TrimSpace(strings.Join(sentences[:bestCut], " "))
	tail := strings.TrimSpace(strings.Join(sentences[bestCut:], " "))
	return head, tail, true
}

func classifyKind(s *Section, cfg Config) ContentKind {
	cells := deck.Cells(s.Text)
	switch {
	case len(s.Images) >= 2 && cells < cfg.ImageHeavyMaxText:
		return ImageHeavy
	case len(s.Images) == 0 && cells > cfg.TextHeavyMinText:
		return TextHeavy
	default:
		return Mixed
	}
}

func isDivider(s *Section, cfg Config) bool {
	return s.Title != "" && len(s.Images) == 0 && deck.Cells(s.Text) <= cfg.DividerMaxText
}
