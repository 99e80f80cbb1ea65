// Package menu renders the numbered application menu and parses the
// user's numeric selection.
package menu

import (
	"fmt"
	"strconv"
	"strings"
)

// Render formats the menu: the title followed by one numbered line per
// label, 1-based.
func Render(title string, labels []string) string {
	var b strings.Builder
	b.WriteString(title)
	for i, label := range labels {
		b.WriteString(fmt.Sprintf("\n%d) %s", i+1, label))
	}
	return b.String()
}

// ParseChoice parses content as a 1-based menu choice. It returns the
// choice and true when the trimmed content is a base-10 integer within
// [lo, hi], and false for everything else.
func ParseChoice(content string, lo, hi int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(content))
	if err != nil {
		return 0, false
	}
	if n < lo || n > hi {
		return 0, false
	}
	return n, true
}

// ChooseEndpoint maps the user's input to an endpoint from the presented
// menu snapshot. Returns false when the input is not a valid choice.
func ChooseEndpoint(content string, endpoints []string) (string, bool) {
	n, ok := ParseChoice(content, 1, len(endpoints))
	if !ok {
		return "", false
	}
	return endpoints[n-1], true
}
