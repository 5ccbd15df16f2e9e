package induct

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/kxiao02/pptweaver/internal/deck"
	"github.com/kxiao02/pptweaver/internal/diag"
)

const (
	slideW = int64(9144000)
	slideH = int64(6858000)
)

func textShape(text string) deck.Shape {
	return deck.Shape{Kind: deck.KindTextBox, Text: text, Frame: deck.Frame{W: 4000000, H: 800000}}
}

func picShape() deck.Shape {
	return deck.Shape{Kind: deck.KindPicture, Image: &deck.ImageRef{RelID: "rId9"}, Frame: deck.Frame{W: 3000000, H: 2000000}}
}

func namedTemplate() *deck.Template {
	return &deck.Template{
		ID:          "tpl-basic",
		SlideWidth:  slideW,
		SlideHeight: slideH,
		Slides: []deck.Slide{
			{Index: 0, Name: "Opening", Shapes: []deck.Shape{textShape("Welcome")}},
			{Index: 1, Name: "Content-A", Shapes: []deck.Shape{textShape("Heading"), picShape()}},
			{Index: 2, Name: "Ending", Shapes: []deck.Shape{textShape("Thanks for listening")}},
		},
	}
}

func TestInduce_NamedRoles(t *testing.T) {
	in := New(DefaultConfig(), nil, nil)
	mapping, warnings, err := in.Induce(context.Background(), namedTemplate())
	if err != nil {
		t.Fatalf("induce: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}

	for _, tc := range []struct {
		role  Role
		count int
	}{
		{RoleOpening, 1},
		{RoleContent, 1},
		{RoleEnding, 1},
	} {
		if got := len(mapping.SchemasFor(tc.role)); got != tc.count {
			t.Errorf("role %s: expected %d schemas, got %d", tc.role, tc.count, got)
		}
	}

	content := mapping.SchemasFor(RoleContent)[0]
	if content.Name != "Content-A" {
		t.Errorf("content schema name: expected Content-A, got %q", content.Name)
	}
	if content.Signature != "text|picture" {
		t.Errorf("content signature: expected text|picture, got %q", content.Signature)
	}
	if content.ImageSlots() != 1 {
		t.Errorf("content image slots: expected 1, got %d", content.ImageSlots())
	}
	if len(content.Slots) == 0 {
		t.Fatal("schema must have at least one slot")
	}
}

func TestInduce_Idempotent(t *testing.T) {
	in := New(DefaultConfig(), nil, nil)
	first, _, err := in.Induce(context.Background(), namedTemplate())
	if err != nil {
		t.Fatalf("first induce: %v", err)
	}
	second, _, err := in.Induce(context.Background(), namedTemplate())
	if err != nil {
		t.Fatalf("second induce: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("induction of an unchanged template must be identical")
	}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Error("serialized mappings must be byte-identical")
	}
}

func TestInduce_NoContentSchemasFails(t *testing.T) {
	tpl := &deck.Template{
		ID:          "tpl-empty",
		SlideWidth:  slideW,
		SlideHeight: slideH,
		Slides: []deck.Slide{
			{Index: 0, Name: "Opening", Shapes: []deck.Shape{textShape("Hi")}},
			{Index: 1, Name: "Ending", Shapes: []deck.Shape{textShape("Bye")}},
		},
	}
	in := New(DefaultConfig(), nil, nil)
	_, _, err := in.Induce(context.Background(), tpl)
	var ie *InductionError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InductionError, got %v", err)
	}
	if ie.TemplateID != "tpl-empty" {
		t.Errorf("error template id: got %q", ie.TemplateID)
	}
}

func TestInduce_ChineseHintTokens(t *testing.T) {
	tpl := &deck.Template{
		ID:          "tpl-zh",
		SlideWidth:  slideW,
		SlideHeight: slideH,
		Slides: []deck.Slide{
			{Index: 0, Name: "封面", Shapes: []deck.Shape{textShape("年度汇报")}},
			{Index: 1, Name: "目录", Shapes: []deck.Shape{textShape("提纲")}},
			{Index: 2, Shapes: []deck.Shape{textShape("要点"), picShape()}},
			{Index: 3, Name: "谢谢", Shapes: []deck.Shape{textShape("感谢聆听")}},
		},
	}
	in := New(DefaultConfig(), nil, nil)
	mapping, _, err := in.Induce(context.Background(), tpl)
	if err != nil {
		t.Fatalf("induce: %v", err)
	}
	for _, role := range []Role{RoleOpening, RoleTOC, RoleEnding, RoleContent} {
		if len(mapping.SchemasFor(role)) != 1 {
			t.Errorf("role %s: expected exactly 1 schema, got %d", role, len(mapping.SchemasFor(role)))
		}
	}
}

func TestInduce_SameSignatureSlidesMerge(t *testing.T) {
	tpl := &deck.Template{
		ID:          "tpl-merge",
		SlideWidth:  slideW,
		SlideHeight: slideH,
		Slides: []deck.Slide{
			{Index: 0, Name: "Opening", Shapes: []deck.Shape{textShape("Hello")}},
			{Index: 1, Name: "Content one", Shapes: []deck.Shape{textShape("Short"), picShape()}},
			{Index: 2, Name: "Content two", Shapes: []deck.Shape{textShape("A considerably longer exemplar body"), picShape()}},
			{Index: 3, Name: "Content three", Shapes: []deck.Shape{textShape("Standalone block of body text without any image")}},
		},
	}
	in := New(DefaultConfig(), nil, nil)
	mapping, _, err := in.Induce(context.Background(), tpl)
	if err != nil {
		t.Fatalf("induce: %v", err)
	}

	content := mapping.SchemasFor(RoleContent)
	if len(content) != 2 {
		t.Fatalf("expected 2 content schemas (text|picture merged, text separate), got %d", len(content))
	}
	merged := content[0]
	if len(merged.SourceSlides) != 2 {
		t.Fatalf("expected merged schema from 2 slides, got %v", merged.SourceSlides)
	}
	// Range must cover both observations, widened by the margin.
	title := merged.Slots[0]
	if title.MinCells > len("Short") {
		t.Errorf("merged min %d should not exceed shortest observation", title.MinCells)
	}
	if title.MaxCells < len("A considerably longer exemplar body") {
		t.Errorf("merged max %d should cover longest observation", title.MaxCells)
	}
}

func TestInduce_PositionalFallback(t *testing.T) {
	// No names, no structural giveaway beyond single text frames: the
	// first slide becomes the opening, the last the ending.
	tpl := &deck.Template{
		ID:          "tpl-pos",
		SlideWidth:  slideW,
		SlideHeight: slideH,
		Slides: []deck.Slide{
			{Index: 0, Shapes: []deck.Shape{textShape("Alpha"), picShape()}},
			{Index: 1, Shapes: []deck.Shape{textShape("Beta"), picShape(), picShape()}},
			{Index: 2, Shapes: []deck.Shape{textShape("Gamma"), textShape("Delta"), picShape()}},
		},
	}
	in := New(DefaultConfig(), nil, nil)
	mapping, _, err := in.Induce(context.Background(), tpl)
	if err != nil {
		t.Fatalf("induce: %v", err)
	}
	opening := mapping.SchemasFor(RoleOpening)
	if len(opening) != 1 || opening[0].SourceSlides[0] != 0 {
		t.Errorf("first unassigned slide should open, got %+v", opening)
	}
	ending := mapping.SchemasFor(RoleEnding)
	if len(ending) != 1 || ending[0].SourceSlides[0] != 2 {
		t.Errorf("last unassigned slide should close, got %+v", ending)
	}
	if len(mapping.SchemasFor(RoleContent)) != 1 {
		t.Errorf("middle slide should remain content")
	}
}

// stubAssist answers with a fixed guess, or an error when broken.
type stubAssist struct {
	role   Role
	conf   float64
	broken bool
	calls  int
}

func (a *stubAssist) ClassifySlide(_ context.Context, _ deck.Slide) (RoleGuess, error) {
	a.calls++
	if a.broken {
		return RoleGuess{}, errors.New("deadline exceeded")
	}
	return RoleGuess{Role: a.role, Confidence: a.conf}, nil
}

func TestInduce_AssistGuessOutranksStructure(t *testing.T) {
	tpl := &deck.Template{
		ID:          "tpl-assist",
		SlideWidth:  slideW,
		SlideHeight: slideH,
		Slides: []deck.Slide{
			{Index: 0, Name: "Opening", Shapes: []deck.Shape{textShape("Hi")}},
			{Index: 1, Name: "Content-A", Shapes: []deck.Shape{textShape("Body"), picShape()}},
			// Single text frame: structure alone would call this a
			// section header, but the assist says TOC.
			{Index: 2, Shapes: []deck.Shape{textShape("1. Intro 2. Detail 3. Wrap")}},
		},
	}
	assist := &stubAssist{role: RoleTOC, conf: 0.9}
	in := New(DefaultConfig(), assist, nil)
	mapping, warnings, err := in.Induce(context.Background(), tpl)
	if err != nil {
		t.Fatalf("induce: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("healthy assist should produce no warnings, got %v", warnings)
	}
	if len(mapping.SchemasFor(RoleTOC)) != 1 {
		t.Errorf("assist guess should assign the TOC role")
	}
}

func TestInduce_BrokenAssistFallsBackWithWarning(t *testing.T) {
	assist := &stubAssist{broken: true}
	in := New(DefaultConfig(), assist, nil)
	mapping, warnings, err := in.Induce(context.Background(), namedTemplate())
	if err != nil {
		t.Fatalf("induce must succeed without the assist: %v", err)
	}
	if assist.calls == 0 {
		t.Fatal("assist was never consulted")
	}
	found := false
	for _, w := range warnings {
		if w.Code == diag.CollaboratorTimeout {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a collaborator-timeout warning, got %v", warnings)
	}
	if len(mapping.SchemasFor(RoleContent)) != 1 {
		t.Error("heuristic fallback should still induce content schemas")
	}
}

func TestInduce_UnsupportedSlideSkippedNotFatal(t *testing.T) {
	tpl := namedTemplate()
	tpl.Slides = append(tpl.Slides, deck.Slide{
		Index:  3,
		Shapes: []deck.Shape{{Kind: deck.KindSmartArt}},
	})
	in := New(DefaultConfig(), nil, nil)
	mapping, warnings, err := in.Induce(context.Background(), tpl)
	if err != nil {
		t.Fatalf("induce: %v", err)
	}
	if len(mapping.Skipped) != 1 {
		t.Errorf("expected 1 skipped slide, got %v", mapping.Skipped)
	}
	found := false
	for _, w := range warnings {
		if w.Code == diag.UnsupportedElement && w.Slide == 3 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected unsupported-element warning for slide 3, got %v", warnings)
	}
}
