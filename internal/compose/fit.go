package compose

import (
	"regexp"
	"strings"

	"github.com/kxiao02/pptweaver/internal/deck"
	"github.com/kxiao02/pptweaver/internal/diag"
	"github.com/kxiao02/pptweaver/internal/doctree"
	"github.com/kxiao02/pptweaver/internal/induct"
	"github.com/kxiao02/pptweaver/internal/segment"
)

// TruncationMarker is appended whenever content is cut to fit a slot, so
// meaning-bearing text is never dropped silently.
const TruncationMarker = "…"

// maxShrinkRatio bounds compaction: a shrunk text keeping less than this
// share of the original is considered over-aggressive and the milder
// whitespace-only compaction is used instead.
const maxShrinkRatio = 0.3

// fill maps a section's content onto the schema's slots in schema order.
// Images are taken from the pending queue (document order, including
// images carried over from earlier sections whose layouts had no image
// slots); the number consumed is returned so the caller can advance it.
func fill(section segment.Section, schema induct.Schema, pending []doctree.Image) ([]deck.SlotFill, int, []diag.Warning) {
	var warnings []diag.Warning
	texts := distributeText(section, schema)
	if len(texts) == 0 && strings.TrimSpace(section.Title+section.Text) != "" {
		warnings = append(warnings, diag.Warningf(diag.CapacityOverflow,
			"schema %s has no text slot for section text, dropped", schema.Name))
	}

	fills := make([]deck.SlotFill, 0, len(schema.Slots))
	used := 0
	for i, slot := range schema.Slots {
		f := deck.SlotFill{SlotIndex: i, Kind: slot.Kind}
		switch slot.Kind {
		case deck.KindTextBox:
			fitted, truncated := enforceCapacity(texts[i], slot.MaxCells)
			f.Text = fitted
			f.Truncated = truncated
			if truncated {
				warnings = append(warnings, diag.Warningf(diag.CapacityOverflow,
					"slot %d (%s): content exceeded %d cells after shrink, truncated", i, slot.Role, slot.MaxCells))
			}
		case deck.KindPicture:
			if used < len(pending) {
				img := pending[used]
				f.Images = []deck.ImageRef{{Alt: img.Alt, URL: img.URL}}
				used++
			} else {
				// An unfilled image slot is a valid visual state.
				f.Empty = true
			}
		default:
			// Tables and charts have no document-side counterpart yet.
			f.Empty = true
		}
		fills = append(fills, f)
	}
	return fills, used, warnings
}

// distributeText assigns section text to the schema's text slots by slot
// index: the title slot takes the section title, body slots share the
// body text packed greedily by capacity with the remainder in the last
// one. Text that has no slot to live in is folded into the last text
// slot rather than dropped.
func distributeText(section segment.Section, schema induct.Schema) map[int]string {
	out := map[int]string{}
	var titleIdx = -1
	var bodyIdx []int
	for i, slot := range schema.Slots {
		if slot.Kind != deck.KindTextBox {
			continue
		}
		if slot.Role == "title" && titleIdx < 0 {
			titleIdx = i
		} else {
			bodyIdx = append(bodyIdx, i)
		}
	}

	title := section.Title
	body := section.Text
	if title == "" && body != "" {
		// Headingless section: promote the first sentence.
		sentences := splitSentences(body)
		title = sentences[0]
		body = strings.TrimSpace(strings.TrimPrefix(body, sentences[0]))
	}
	if titleIdx >= 0 {
		out[titleIdx] = title
	} else if title != "" && len(bodyIdx) > 0 {
		body = strings.TrimSpace(title + "\n" + body)
	}

	switch {
	case len(bodyIdx) == 0:
		if body != "" && titleIdx >= 0 {
			// No body slot: keep the text with the title so capacity
			// enforcement can mark any cut.
			out[titleIdx] = strings.TrimSpace(out[titleIdx] + "\n" + body)
		}
	case len(bodyIdx) == 1:
		out[bodyIdx[0]] = body
	default:
		parts := packSentences(body, bodyIdx, schema)
		for i, idx := range bodyIdx {
			out[idx] = parts[i]
		}
	}
	return out
}

// packSentences fills all but the last body slot greedily up to their
// capacity; the last slot takes whatever remains.
func packSentences(body string, bodyIdx []int, schema induct.Schema) []string {
	sentences := splitSentences(body)
	parts := make([]string, len(bodyIdx))
	cur := 0
	for _, sent := range sentences {
		if cur < len(bodyIdx)-1 {
			max := schema.Slots[bodyIdx[cur]].MaxCells
			if parts[cur] != "" && deck.Cells(parts[cur])+deck.Cells(sent) > max {
				cur++
			}
		}
		if parts[cur] != "" {
			parts[cur] += " "
		}
		parts[cur] += sent
	}
	return parts
}

// enforceCapacity applies the overflow ladder: content at or under the
// ceiling passes unmodified; over it, compaction is tried first and
// truncation with an explicit marker is the last resort.
func enforceCapacity(text string, maxCells int) (string, bool) {
	if maxCells <= 0 {
		maxCells = induct.DefaultTextCapacity
	}
	if deck.Cells(text) <= maxCells {
		return text, false
	}
	shrunk := compact(text)
	if deck.Cells(shrunk) <= maxCells {
		return shrunk, false
	}
	return truncateCells(shrunk, maxCells-deck.Cells(TruncationMarker)) + TruncationMarker, true
}

var (
	whitespaceRe    = regexp.MustCompile(`\s+`)
	parentheticalRe = regexp.MustCompile(`\([^()]*\)|（[^（）]*）`)
)

// compact strips redundant phrasing: whitespace runs collapse to single
// spaces and parenthetical asides are removed, bounded so that shrink
// never eats more than the configured share of the original.
func compact(text string) string {
	collapsed := strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	stripped := strings.TrimSpace(whitespaceRe.ReplaceAllString(parentheticalRe.ReplaceAllString(collapsed, " "), " "))
	if float64(deck.Cells(stripped)) < maxShrinkRatio*float64(deck.Cells(collapsed)) {
		return collapsed
	}
	return stripped
}

// truncateCells cuts s at a rune boundary so it occupies at most the
// given display cells.
func truncateCells(s string, cells int) string {
	if cells <= 0 {
		return ""
	}
	used := 0
	for i, r := range s {
		w := deck.Cells(string(r))
		if used+w > cells {
			return strings.TrimSpace(s[:i])
		}
		used += w
	}
	return s
}

// splitSentences does basic sentence splitting over Latin and CJK
// terminal punctuation.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		switch r {
		case '.', '!', '?':
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' {
				sentences = append(sentences, strings.TrimSpace(current.String()))
				current.Reset()
			}
		case '。', '！', '？':
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	if len(sentences) == 0 {
		sentences = []string{""}
	}
	return sentences
}
