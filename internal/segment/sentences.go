package segment

import "strings"

// splitSentences does basic sentence splitting on terminal punctuation,
// covering both Latin and CJK sentence enders.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if !sentenceEnd(r) {
			continue
		}
		// Latin enders need trailing whitespace to count as a boundary;
		// CJK enders are boundaries on their own.
		if isCJKEnd(r) || i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func sentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?':
		return true
	}
	return isCJKEnd(r)
}

func isCJKEnd(r rune) bool {
	switch r {
	case '。', '！', '？':
		return true
	}
	return false
}
