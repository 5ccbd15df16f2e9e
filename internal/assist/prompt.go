package assist

import (
	"fmt"
	"strings"

	"github.com/kxiao02/pptweaver/internal/deck"
)

const classifySystemPrompt = `You classify slides from a presentation template by functional role. Answer with a single JSON object, no other text:

{"role": "...", "confidence": 0.0, "caption": "..."}

- "role": one of "opening", "toc", "section_header", "ending", "content"
- "confidence": how sure you are, from 0.0 to 1.0
- "caption": one short sentence describing what the slide is for

Role meanings:
- opening: the title slide that starts the deck
- toc: a table of contents or agenda listing the sections
- section_header: a divider introducing one section
- ending: the closing slide (thanks, contact, Q&A)
- content: everything else; body slides carrying material

Judge from the slide's layout name, element inventory, and visible text. If nothing distinguishes the slide, answer "content" with low confidence.`

// buildSlidePrompt renders one slide as the user message: layout name,
// element inventory, then whatever placeholder text the template carries.
func buildSlidePrompt(s deck.Slide) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Slide %d of the template.\n", s.Index+1)
	if s.Name != "" {
		fmt.Fprintf(&sb, "Layout name: %q\n", s.Name)
	}
	sb.WriteString("Elements:\n")
	for _, sh := range s.Shapes {
		fmt.Fprintf(&sb, "- %s at (%d,%d) size %dx%d", sh.Kind, sh.Frame.X, sh.Frame.Y, sh.Frame.W, sh.Frame.H)
		if sh.Name != "" {
			fmt.Fprintf(&sb, " named %q", sh.Name)
		}
		sb.WriteString("\n")
	}
	if text := visibleText(s); text != "" {
		sb.WriteString("Visible text:\n")
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String()
}

func visibleText(s deck.Slide) string {
	var lines []string
	for _, sh := range s.Shapes {
		t := strings.TrimSpace(sh.Text)
		if t == "" {
			continue
		}
		lines = append(lines, t)
	}
	return strings.Join(lines, "\n")
}
