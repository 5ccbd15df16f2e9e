package induct

import (
	"strings"

	"github.com/kxiao02/pptweaver/internal/classify"
	"github.com/kxiao02/pptweaver/internal/deck"
)

// roleHints maps lowercase name/title tokens to functional roles. Tokens
// cover English and Chinese template naming conventions; matching is a
// substring test against the slide name and its title text.
var roleHints = []struct {
	token string
	role  Role
}{
	{"opening", RoleOpening},
	{"cover", RoleOpening},
	{"title slide", RoleOpening},
	{"封面", RoleOpening},
	{"开场", RoleOpening},

	{"table of contents", RoleTOC},
	{"toc", RoleTOC},
	{"contents", RoleTOC},
	{"agenda", RoleTOC},
	{"catalog", RoleTOC},
	{"目录", RoleTOC},

	{"section", RoleSectionHeader},
	{"divider", RoleSectionHeader},
	{"chapter", RoleSectionHeader},
	{"transition", RoleSectionHeader},
	{"章节", RoleSectionHeader},
	{"过渡", RoleSectionHeader},

	{"ending", RoleEnding},
	{"closing", RoleEnding},
	{"thank", RoleEnding},
	{"back cover", RoleEnding},
	{"封底", RoleEnding},
	{"谢谢", RoleEnding},
	{"结束", RoleEnding},

	{"content", RoleContent},
	{"正文", RoleContent},
}

// hintRole matches the slide name, then the slide title, against the hint
// token table. Hint matches outrank every other inference source.
func hintRole(s deck.Slide) (Role, bool) {
	for _, text := range []string{s.Name, s.Title()} {
		lower := strings.ToLower(text)
		if lower == "" {
			continue
		}
		for _, h := range roleHints {
			if strings.Contains(lower, h.token) {
				return h.role, true
			}
		}
	}
	return "", false
}

// structuralRole infers a role from the slide's element composition.
// A repeated list-like text frame suggests a table of contents; a lone
// large text frame suggests an opening or section header, disambiguated
// by whether an opening has already been claimed (earlier slide wins).
func structuralRole(elements []classify.Element, openingTaken bool) (Role, bool) {
	var texts, others int
	listLike := false
	for _, el := range elements {
		if !el.Slottable() {
			continue
		}
		if el.Kind == deck.KindTextBox {
			texts++
			if len(el.Paragraphs) >= 3 && shortParagraphs(el.Paragraphs) {
				listLike = true
			}
		} else {
			others++
		}
	}

	if listLike && others == 0 {
		return RoleTOC, true
	}
	if texts == 1 && others == 0 {
		if openingTaken {
			return RoleSectionHeader, true
		}
		return RoleOpening, true
	}
	return "", false
}

func shortParagraphs(paragraphs []string) bool {
	for _, p := range paragraphs {
		if deck.Cells(p) > 60 {
			return false
		}
	}
	return true
}
