// package width provides methods to get text width defined by unicode east asisn width.
// It is used to align text columns on the terminal.
// see http://unicode.org/reports/tr11/
package width

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/width"
)

// default Condition which can calucate east asian width depended on running system environment.
// you can check your system's east asian condition using by:
//
//	isEastAsian = Default.IsEastAsian
var Default = NewCondition(runewidth.EastAsianWidth)

// Condition holds isEastAsian flag and
// can calucate east asian width using that flag.
type Condition struct {
	IsEastAsian bool
}

// return new condition
func NewCondition(isEastAsian bool) *Condition {
	return &Condition{IsEastAsian: isEastAsian}
}

// return unicode east asian width in given string.
// Each byte of invalid utf8 encoding is counted as width 1.
func (c Condition) StringWidth(s string) int {
	w := 0
	for len(s) > 0 {
		_w, size := c.firstWidth(s)
		w += _w
		s = s[size:]
	}
	return w
}

// return unicode east asian width in a rune.
func (c Condition) RuneWidth(r rune) int {
	if !utf8.ValidRune(r) {
		return 1
	}
	w, _ := c.firstWidth(string(r))
	return w
}

// return width of first character and its used bytes.
func (c Condition) firstWidth(s string) (int, int) {
	p, size := width.LookupString(s)
	if size == 0 {
		return 0, 0
	}
	if r, _ := utf8.DecodeRuneInString(s); r == utf8.RuneError && size == 1 {
		return 1, 1
	}

	switch p.Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2, size
	case width.EastAsianAmbiguous:
		if c.IsEastAsian {
			return 2, size
		}
		return 1, size
	case width.Neutral:
		if s[0] == 0 {
			return 0, size // Null character \x00
		}
		return 1, size
	default: // narrow and halfwidth
		return 1, size
	}
}

// PadRight appends spaces to s so that its width becomes w.
// s is returned as is when it is already wider than w.
func (c Condition) PadRight(s string, w int) string {
	if sw := c.StringWidth(s); sw < w {
		return s + strings.Repeat(" ", w-sw)
	}
	return s
}

// Truncate cuts s so that s with tail fits in width w.
// s is returned as is when it fits in w.
func (c Condition) Truncate(s string, w int, tail string) string {
	if c.StringWidth(s) <= w {
		return s
	}
	limit := w - c.StringWidth(tail)
	if limit < 0 {
		limit = 0
	}
	var (
		b   strings.Builder
		cur int
	)
	for len(s) > 0 {
		rw, size := c.firstWidth(s)
		if cur+rw > limit {
			break
		}
		b.WriteString(s[:size])
		cur += rw
		s = s[size:]
	}
	b.WriteString(tail)
	return b.String()
}

// return unicode east asian width in given string,
// using default condition.
func StringWidth(s string) int {
	return Default.StringWidth(s)
}

// return unicode east asian width in a rune,
// using default condition.
func RuneWidth(r rune) int {
	return Default.RuneWidth(r)
}

// PadRight pads s using default condition.
func PadRight(s string, w int) string {
	return Default.PadRight(s, w)
}

// Truncate cuts s using default condition.
func Truncate(s string, w int, tail string) string {
	return Default.Truncate(s, w, tail)
}
