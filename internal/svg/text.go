package svg

import (
	"fmt"
	"strconv"
	"strings"
)

// widthFactor estimates rendered glyph width as a fraction of font size.
const widthFactor = 0.8

// FitFontSize shrinks baseSize until text at that size fits the available
// width, using a flat per-glyph width estimate.
func FitFontSize(baseSize float64, text string, width float64) float64 {
	n := len([]rune(text))
	if n == 0 {
		return baseSize
	}
	needed := float64(n) * baseSize * widthFactor
	if needed > width && width > 0 {
		return width / (float64(n) * widthFactor)
	}
	return baseSize
}

// TextElement renders a centered SVG <text> element. weight may be empty.
func TextElement(text string, x, y, size float64, weight string) string {
	var sb strings.Builder
	sb.WriteString(`<text x="`)
	sb.WriteString(trimFloat(x))
	sb.WriteString(`" y="`)
	sb.WriteString(trimFloat(y))
	sb.WriteString(`" font-family="Arial" font-size="`)
	sb.WriteString(trimFloat(size))
	sb.WriteString(`"`)
	if weight != "" {
		fmt.Fprintf(&sb, ` font-weight="%s"`, weight)
	}
	sb.WriteString(` fill="black" text-anchor="middle" alignment-baseline="central">`)
	sb.WriteString(escapeText(text))
	sb.WriteString(`</text>`)
	return sb.String()
}

// trimFloat formats a float without trailing zeros.
func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
