package compose

import (
	"context"
	"strings"
	"testing"

	"github.com/kxiao02/pptweaver/internal/deck"
	"github.com/kxiao02/pptweaver/internal/diag"
	"github.com/kxiao02/pptweaver/internal/doctree"
	"github.com/kxiao02/pptweaver/internal/induct"
	"github.com/kxiao02/pptweaver/internal/segment"
)

func contentSchema(titleMax, bodyMax, imageSlots int) induct.Schema {
	s := induct.Schema{
		Role:      induct.RoleContent,
		Name:      "content-A",
		Key:       "content-abcd",
		Signature: "text|text",
		Slots: []induct.Slot{
			{Role: "title", Kind: deck.KindTextBox, MaxCells: titleMax},
			{Role: "body", Kind: deck.KindTextBox, MaxCells: bodyMax},
		},
	}
	for i := 0; i < imageSlots; i++ {
		s.Slots = append(s.Slots, induct.Slot{Role: "image", Kind: deck.KindPicture, MaxCells: 1})
	}
	return s
}

func TestEnforceCapacity_ExactFitUnmodified(t *testing.T) {
	text := strings.Repeat("a", 40)
	got, truncated := enforceCapacity(text, 40)
	if truncated {
		t.Error("content exactly at capacity must not be truncated")
	}
	if got != text {
		t.Errorf("content exactly at capacity must pass unmodified, got %q", got)
	}
}

func TestEnforceCapacity_OneOverShrinks(t *testing.T) {
	// 41 cells raw, but redundant double spaces compact away.
	text := strings.Repeat("a", 20) + "  " + strings.Repeat("b", 19)
	if deck.Cells(text) != 41 {
		t.Fatalf("fixture: expected 41 cells, got %d", deck.Cells(text))
	}
	got, truncated := enforceCapacity(text, 40)
	if truncated {
		t.Errorf("shrink should be sufficient, got truncation: %q", got)
	}
	if deck.Cells(got) > 40 {
		t.Errorf("shrunk content still over capacity: %d cells", deck.Cells(got))
	}
}

func TestEnforceCapacity_ShrinkInsufficientTruncatesWithMarker(t *testing.T) {
	text := strings.Repeat("x", 500)
	got, truncated := enforceCapacity(text, 40)
	if !truncated {
		t.Fatal("incompressible oversized content must be truncated")
	}
	if !strings.HasSuffix(got, TruncationMarker) {
		t.Errorf("truncated content must carry the marker, got %q", got)
	}
	if deck.Cells(got) > 40 {
		t.Errorf("truncated content exceeds capacity: %d cells", deck.Cells(got))
	}
}

func TestEnforceCapacity_ParentheticalsStrippedFirst(t *testing.T) {
	text := "The launch date moved to March (pending final sign-off from the review board)."
	max := deck.Cells("The launch date moved to March.") + 2
	got, truncated := enforceCapacity(text, max)
	if truncated {
		t.Errorf("parenthetical strip should have been enough, got %q", got)
	}
	if strings.Contains(got, "pending") {
		t.Errorf("aside should have been compacted away: %q", got)
	}
}

func TestEnforceCapacity_CJKConsumesDoubleCapacity(t *testing.T) {
	// 20 Latin characters fit a 20-cell slot; 20 CJK runes do not.
	latin := strings.Repeat("a", 20)
	cjk := strings.Repeat("字", 20)
	if _, truncated := enforceCapacity(latin, 20); truncated {
		t.Error("20 Latin chars should fit 20 cells")
	}
	if _, truncated := enforceCapacity(cjk, 20); !truncated {
		t.Error("20 CJK runes occupy 40 cells and must overflow a 20-cell slot")
	}
}

func TestFill_ImagesInOrderSurplusLeftPending(t *testing.T) {
	section := segment.Section{
		Title: "Gallery",
		Text:  "Three shots from the field.",
	}
	pending := []doctree.Image{{Alt: "first"}, {Alt: "second"}, {Alt: "third"}}
	fills, used, _ := fill(section, contentSchema(80, 400, 2), pending)

	var imageFills []deck.SlotFill
	for _, f := range fills {
		if f.Kind == deck.KindPicture {
			imageFills = append(imageFills, f)
		}
	}
	if len(imageFills) != 2 {
		t.Fatalf("expected 2 image fills, got %d", len(imageFills))
	}
	if imageFills[0].Images[0].Alt != "first" || imageFills[1].Images[0].Alt != "second" {
		t.Error("images must fill slots in original document order")
	}
	if used != 2 {
		t.Errorf("expected 2 images consumed, got %d", used)
	}
}

func TestFill_MissingImageLeavesSlotEmpty(t *testing.T) {
	section := segment.Section{Title: "T", Text: "Body."}
	fills, used, warnings := fill(section, contentSchema(80, 400, 1), nil)
	last := fills[len(fills)-1]
	if last.Kind != deck.KindPicture || !last.Empty {
		t.Errorf("image slot without an image must be empty, got %+v", last)
	}
	if used != 0 {
		t.Errorf("nothing to consume, got used=%d", used)
	}
	for _, w := range warnings {
		if w.Code == diag.SurplusImages {
			t.Error("an empty image slot is not a surplus condition")
		}
	}
}

func TestBuild_SurplusImagesReportedOnce(t *testing.T) {
	secs := []segment.Section{
		{Index: 0, Title: "A", Text: "One.", Images: []doctree.Image{{Alt: "x"}, {Alt: "y"}, {Alt: "z"}}},
		{Index: 1, Title: "B", Text: "Two."},
		{Index: 2, Title: "C", Text: "Three."},
	}
	// Schemas without any image slot: every image ends up surplus.
	mapping := &induct.Mapping{
		TemplateID: "t",
		Schemas: map[induct.Role][]induct.Schema{
			induct.RoleContent: {contentSchema(80, 400, 0)},
		},
	}
	_, warnings, err := Build(context.Background(), mapping, secs, Options{})
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, w := range warnings {
		if w.Code == diag.SurplusImages {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one surplus-images warning, got %v", warnings)
	}
}

func TestFill_TitleAndBodyLandInTheirSlots(t *testing.T) {
	section := segment.Section{Title: "Findings", Text: "Numbers went up."}
	fills, _, _ := fill(section, contentSchema(80, 400, 0), nil)
	if fills[0].Text != "Findings" {
		t.Errorf("title slot: expected Findings, got %q", fills[0].Text)
	}
	if fills[1].Text != "Numbers went up." {
		t.Errorf("body slot: got %q", fills[1].Text)
	}
}

func TestFill_HeadinglessSectionPromotesFirstSentence(t *testing.T) {
	section := segment.Section{Text: "Opening line. Second line continues."}
	fills, _, _ := fill(section, contentSchema(80, 400, 0), nil)
	if fills[0].Text != "Opening line." {
		t.Errorf("first sentence should become the title, got %q", fills[0].Text)
	}
	if !strings.Contains(fills[1].Text, "Second line") {
		t.Errorf("remainder should land in the body, got %q", fills[1].Text)
	}
}

func TestFill_NoTextSlotEmitsWarning(t *testing.T) {
	schema := induct.Schema{
		Role:      induct.RoleContent,
		Name:      "content-pic",
		Key:       "content-pic",
		Signature: "picture",
		Slots: []induct.Slot{
			{Role: "image", Kind: deck.KindPicture, MaxCells: 1},
		},
	}
	section := segment.Section{Title: "Quarterly Highlights"}
	_, _, warnings := fill(section, schema, nil)
	hasOverflow := false
	for _, w := range warnings {
		if w.Code == diag.CapacityOverflow {
			hasOverflow = true
		}
	}
	if !hasOverflow {
		t.Errorf("section text with nowhere to land must be reported, got %v", warnings)
	}
}

func TestFill_TitleOnlySchemaKeepsBodyMarked(t *testing.T) {
	// A schema with a lone text slot (an opening layout) receives a
	// section that also has body text: the text folds into the slot and
	// overflow is marked, never silently dropped.
	schema := induct.Schema{
		Role: induct.RoleOpening,
		Key:  "opening-1",
		Slots: []induct.Slot{
			{Role: "title", Kind: deck.KindTextBox, MaxCells: 30},
		},
	}
	section := segment.Section{Title: "Welcome", Text: strings.Repeat("detail ", 40)}
	fills, _, warnings := fill(section, schema, nil)
	if !fills[0].Truncated {
		t.Error("overflowing fold-in must be truncated")
	}
	hasOverflow := false
	for _, w := range warnings {
		if w.Code == diag.CapacityOverflow {
			hasOverflow = true
		}
	}
	if !hasOverflow {
		t.Errorf("expected capacity-overflow warning, got %v", warnings)
	}
}
