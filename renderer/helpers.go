// Package renderer renders tradebook reports as markdown.
//
// Amounts are formatted in the display currency given to each function;
// no conversion happens.
package renderer

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/tradebook"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// tableHeader writes the header and the alignment row of a table. Columns
// starting with '>' are right aligned.
func tableHeader(w io.Writer, columns ...string) {
	var head, align strings.Builder
	head.WriteString("|")
	align.WriteString("|")
	for _, c := range columns {
		if strings.HasPrefix(c, ">") {
			fmt.Fprintf(&head, " %s |", c[1:])
			align.WriteString("---:|")
			continue
		}
		fmt.Fprintf(&head, " %s |", c)
		align.WriteString(":---|")
	}
	fmt.Fprintln(w, head.String())
	fmt.Fprintln(w, align.String())
}

// tableRow writes a row of cells.
func tableRow(w io.Writer, cells ...string) {
	var b strings.Builder
	b.WriteString("|")
	for _, c := range cells {
		fmt.Fprintf(&b, " %s |", cell(c))
	}
	fmt.Fprintln(w, b.String())
}

// cell escapes the characters that would break a table cell.
func cell(s string) string {
	if s == "" {
		return " "
	}
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// signed formats m with an explicit sign, "-" for zero.
func signed(m tradebook.Money, currency string) string {
	switch {
	case m.IsZero():
		return "-"
	case m.IsPositive():
		return "+" + m.Format(currency)
	default:
		return m.Format(currency)
	}
}

// price formats a per share price, which keeps 4 decimal places.
func price(m tradebook.Money) string {
	return m.Decimal().StringFixed(4)
}

func bold(s string) string { return "**" + s + "**" }
