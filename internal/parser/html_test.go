package parser

import (
	"strings"
	"testing"
)

func TestHTMLParser_HeadingsAndImages(t *testing.T) {
	input := `<html><head><title>Quarterly Review</title></head><body>
<h1>Results</h1>
<p>Revenue grew.</p>
<p><img src="charts/revenue.png" alt="revenue chart"> As shown above.</p>
<h2>Regions</h2>
<img src="maps/emea.png" alt="EMEA map">
<p>EMEA led growth.</p>
</body></html>`

	p := &HTMLParser{}
	tree, err := p.Parse(strings.NewReader(input), "review.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tree.Title != "Quarterly Review" {
		t.Errorf("expected title from <title>, got %q", tree.Title)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 h1 section, got %d", len(tree.Children))
	}

	results := tree.Children[0]
	if results.Title != "Results" {
		t.Errorf("expected section %q, got %q", "Results", results.Title)
	}
	if !strings.Contains(results.Text, "Revenue grew.") || !strings.Contains(results.Text, "As shown above.") {
		t.Errorf("section text = %q", results.Text)
	}
	if len(results.Images) != 1 || results.Images[0].URL != "charts/revenue.png" {
		t.Fatalf("expected revenue chart image, got %+v", results.Images)
	}
	if results.Images[0].Alt != "revenue chart" {
		t.Errorf("alt = %q", results.Images[0].Alt)
	}

	if len(results.Children) != 1 {
		t.Fatalf("expected 1 h2 under Results, got %d", len(results.Children))
	}
	regions := results.Children[0]
	if len(regions.Images) != 1 || regions.Images[0].Alt != "EMEA map" {
		t.Errorf("regions images = %+v", regions.Images)
	}
}

func TestHTMLParser_SkipsChrome(t *testing.T) {
	input := `<html><body>
<nav><p>Menu item</p></nav>
<h1>Body</h1>
<p>Real content.</p>
<footer><p>Copyright</p></footer>
</body></html>`

	p := &HTMLParser{}
	tree, err := p.Parse(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 section, got %d", len(tree.Children))
	}
	body := tree.Children[0]
	if strings.Contains(body.Text, "Menu item") || strings.Contains(body.Text, "Copyright") {
		t.Errorf("nav/footer text leaked: %q", body.Text)
	}
	if !strings.Contains(body.Text, "Real content.") {
		t.Errorf("missing body text: %q", body.Text)
	}
}

func TestHTMLParser_NoHeadings(t *testing.T) {
	input := `<p>Only a paragraph.</p>`

	p := &HTMLParser{}
	tree, err := p.Parse(strings.NewReader(input), "frag.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(tree.Children))
	}
	if !strings.Contains(tree.Children[0].Text, "Only a paragraph.") {
		t.Errorf("text = %q", tree.Children[0].Text)
	}
}
