package layout

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatValue prints a chart value without trailing zeros.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatYearMonth renders t as a localized year-month. Chinese locales get
// "2026年10月"; anything else gets "October 2026".
func FormatYearMonth(t time.Time, locale string) string {
	if locale == "" || strings.HasPrefix(strings.ToLower(locale), "zh") {
		return fmt.Sprintf("%d年%d月", t.Year(), int(t.Month()))
	}
	return t.Format("January 2006")
}

// SegmentColor normalizes an explicit chart color to RRGGBB, falling back to
// the category cycle when the color is absent or not a hex triplet.
func SegmentColor(color string, index int) string {
	c := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(color), "#"))
	if len(c) == 3 {
		c = string([]byte{c[0], c[0], c[1], c[1], c[2], c[2]})
	}
	if len(c) == 6 && isHex(c) {
		return c
	}
	return CategoryColors[index%len(CategoryColors)]
}

func isHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'A' || r > 'F') {
			return false
		}
	}
	return true
}
