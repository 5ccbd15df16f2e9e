package deck

import "golang.org/x/text/width"

// Cells returns the display width of s in terminal-style cells: East Asian
// wide and fullwidth runes count as two, everything else as one. Slot
// capacities and content volumes are both measured in cells, so a
// Latin-derived capacity estimate is effectively halved for CJK content
// (and doubled in the other direction) without a separate ratio table.
func Cells(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}
