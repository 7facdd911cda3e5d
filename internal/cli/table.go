package cli

import (
	"bufio"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const tablePadding = 2

// writeTable renders rows as aligned columns. Cell widths account for
// wide runes and ignore ANSI color sequences. Columns holding nothing
// but counts are right-aligned so the digits line up.
func writeTable(out io.Writer, headers []string, rows [][]string) error {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	updateWidth := func(index int, value string) {
		if index >= colCount {
			return
		}
		displayWidth := runewidth.StringWidth(stripANSI(value))
		if displayWidth > widths[index] {
			widths[index] = displayWidth
		}
	}

	for idx, header := range headers {
		updateWidth(idx, header)
	}
	for _, row := range rows {
		for idx, cell := range row {
			updateWidth(idx, cell)
		}
	}

	rightAlign := countColumns(rows, colCount)

	writer := bufio.NewWriter(out)
	var writeErr error
	writeString := func(value string) {
		if writeErr != nil {
			return
		}
		_, writeErr = writer.WriteString(value)
	}
	writeRow := func(row []string) {
		if writeErr != nil {
			return
		}
		for idx := 0; idx < colCount; idx++ {
			cell := ""
			if idx < len(row) {
				cell = row[idx]
			}
			cellWidth := runewidth.StringWidth(stripANSI(cell))
			padding := widths[idx] - cellWidth
			if padding < 0 {
				padding = 0
			}
			if rightAlign[idx] {
				writeString(strings.Repeat(" ", padding))
				writeString(cell)
				if idx < colCount-1 {
					writeString(strings.Repeat(" ", tablePadding))
				}
				continue
			}
			writeString(cell)
			if idx < colCount-1 {
				writeString(strings.Repeat(" ", padding+tablePadding))
			}
		}
		writeString("\n")
	}

	if len(headers) > 0 {
		writeRow(headers)
	}
	for _, row := range rows {
		writeRow(row)
	}
	if writeErr != nil {
		return writeErr
	}
	return writer.Flush()
}

// countColumns reports, per column, whether every non-empty cell is a
// count. Headers are not considered, so a column of numbers under a
// text header still right-aligns.
func countColumns(rows [][]string, colCount int) []bool {
	align := make([]bool, colCount)
	for idx := range align {
		seen := false
		numeric := true
		for _, row := range rows {
			if idx >= len(row) {
				continue
			}
			cell := stripANSI(row[idx])
			if cell == "" {
				continue
			}
			seen = true
			if !isCount(cell) {
				numeric = false
				break
			}
		}
		align[idx] = seen && numeric
	}
	return align
}

// isCount matches plain digit cells and the @n mention shorthand.
func isCount(cell string) bool {
	cell = strings.TrimPrefix(cell, "@")
	if cell == "" {
		return false
	}
	for _, r := range cell {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func stripANSI(value string) string {
	if value == "" {
		return value
	}
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		if value[i] != 0x1b || i+1 >= len(value) || value[i+1] != '[' {
			b.WriteByte(value[i])
			continue
		}
		i += 2
		for i < len(value) {
			ch := value[i]
			if ch >= 0x40 && ch <= 0x7e {
				break
			}
			i++
		}
	}
	return b.String()
}
