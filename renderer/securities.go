package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/tradebook"
)

// SecuritiesMarkdown renders the security directory. Held securities are
// marked with an X.
func SecuritiesMarkdown(secs []tradebook.SecurityInfo, held map[string]bool) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Securities\n\n")
	fmt.Fprintln(&b, "| Code | Held | Name | Exchange | Product |")
	fmt.Fprintln(&b, "|:---|:---:|:---|:---|:---|")
	for _, s := range secs {
		mark := ""
		if held[s.Code] {
			mark = "X"
		}
		tableRow(&b, s.Code, mark, s.Name, string(s.Exchange), string(s.ProductType))
	}
	return b.String()
}

// WarningsMarkdown renders the warnings of a session, or nothing without any.
func WarningsMarkdown(warnings []tradebook.Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprint(&b, "## Warnings\n\n")
	tableHeader(&b, "Kind", "Date", "Code", "Message")
	for _, w := range warnings {
		day := ""
		if !w.Date.IsZero() {
			day = w.Date.String()
		}
		tableRow(&b, w.Kind.String(), day, w.Code, w.Message)
	}
	return b.String()
}
