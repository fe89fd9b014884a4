package app

import (
	"bufio"
	"io"
	"strings"

	"github.com/mzki/erasave/width"
)

const columnSep = "  "

// table aligns columns by display width so that east asian
// save names are aligned too.
type table struct {
	header []string
	rows   [][]string
}

// newTable creates table. header may be empty.
func newTable(header ...string) *table {
	return &table{header: header}
}

func (t *table) Add(cols ...string) {
	t.rows = append(t.rows, cols)
}

func (t *table) Write(w io.Writer) error {
	rows := t.rows
	if len(t.header) > 0 {
		rows = append([][]string{t.header}, rows...)
	}

	var widths []int
	for _, row := range rows {
		for i, col := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if cw := width.StringWidth(col); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	bw := bufio.NewWriter(w)
	for _, row := range rows {
		var line strings.Builder
		for i, col := range row {
			if i > 0 {
				line.WriteString(columnSep)
			}
			line.WriteString(width.PadRight(col, widths[i]))
		}
		bw.WriteString(strings.TrimRight(line.String(), " "))
		bw.WriteString("\n")
	}
	return bw.Flush()
}
