package similarity

import (
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Ratio returns the normalized Indel similarity of a and b on a 0-100
// scale: 100 * (1 - d / (len(a)+len(b))) where d counts the insertions and
// deletions needed to turn a into b. Lengths are in runes.
func Ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 100
	}
	if a == b {
		return 100
	}
	d := edlib.LCSEditDistance(a, b)
	return 100 * (1 - float64(d)/float64(total))
}
