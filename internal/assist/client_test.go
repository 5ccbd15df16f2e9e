package assist

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kxiao02/pptweaver/internal/deck"
	"github.com/kxiao02/pptweaver/internal/induct"
)

func TestParseGuess(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantRole induct.Role
		wantErr  bool
	}{
		{
			name:     "plain json",
			raw:      `{"role": "opening", "confidence": 0.9, "caption": "Title slide"}`,
			wantRole: induct.RoleOpening,
		},
		{
			name:     "fenced json",
			raw:      "```json\n{\"role\": \"toc\", \"confidence\": 0.8, \"caption\": \"Agenda\"}\n```",
			wantRole: induct.RoleTOC,
		},
		{
			name:     "role alias",
			raw:      `{"role": "table_of_contents", "confidence": 0.7, "caption": ""}`,
			wantRole: induct.RoleTOC,
		},
		{
			name:     "mixed case role",
			raw:      `{"role": "Section_Header", "confidence": 0.6, "caption": "Divider"}`,
			wantRole: induct.RoleSectionHeader,
		},
		{
			name:    "unknown role",
			raw:     `{"role": "summary", "confidence": 0.9, "caption": ""}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     "This slide looks like a title slide.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guess, err := parseGuess(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseGuess(%q) expected error, got %+v", tt.raw, guess)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseGuess(%q) failed: %v", tt.raw, err)
			}
			if guess.Role != tt.wantRole {
				t.Errorf("role = %q, want %q", guess.Role, tt.wantRole)
			}
		})
	}
}

func TestBuildSlidePrompt(t *testing.T) {
	s := deck.Slide{
		Index: 2,
		Name:  "Section Break",
		Shapes: []deck.Shape{
			{Kind: deck.KindTextBox, Name: "Title 1", Frame: deck.Frame{X: 10, Y: 20, W: 300, H: 50}, Text: "Part One"},
			{Kind: deck.KindPicture, Frame: deck.Frame{X: 0, Y: 0, W: 100, H: 100}},
		},
	}

	prompt := buildSlidePrompt(s)

	for _, want := range []string{"Slide 3", `"Section Break"`, `"Title 1"`, "picture", "Part One"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(&RetryableError{StatusCode: 429, Message: "rate limited"}) {
		t.Error("429 should be retryable")
	}
	if IsRetryable(errors.New("bad request")) {
		t.Error("plain error should not be retryable")
	}
	wrapped := fmt.Errorf("calling api: %w", &RetryableError{StatusCode: 503})
	if !IsRetryable(wrapped) {
		t.Error("wrapped retryable error should be retryable")
	}
}
