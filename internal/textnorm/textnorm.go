// Package textnorm cleans free text pasted into form fields, typically copied
// out of PDFs or web pages: markup is reduced to text, Unicode is normalized
// to NFC and stray line breaks and spacing are collapsed.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// tagPattern captures the closing slash, the tag name, the attribute list and
// the self-closing slash of a well-formed tag. Attributes must look like name
// or name=value, so "<K, V>" is not a tag.
var tagPattern = regexp.MustCompile(
	`<(/?)([a-zA-Z][a-zA-Z0-9]*)((?:\s+[a-zA-Z_:][-a-zA-Z0-9_:.]*(?:\s*=\s*(?:"[^"]*"|'[^']*'|[^\s"'<>=]+))?)*)\s*(/?)>`)

var (
	newlineRuns    = regexp.MustCompile(`\n+`)
	spaceRuns      = regexp.MustCompile(`[ \t\f\v]+`)
	invisibleChars = strings.NewReplacer(
		"\u00a0", " ",
		"\u200b", "",
		"\ufeff", "",
		"\r\n", "\n",
		"\r", "\n",
	)
)

// Normalizer applies the package functions; the zero value is ready to use.
type Normalizer struct{}

// Clean collapses a free-text value onto a single line.
func (Normalizer) Clean(s string) string { return Clean(s) }

// CleanItem cleans one list item, keeping manual line breaks.
func (Normalizer) CleanItem(s string) string { return CleanItem(s) }

// Clean reduces markup to text, normalizes to NFC, turns any run of line
// breaks into one space, collapses spacing and trims.
func Clean(s string) string {
	s = prepare(s)
	s = newlineRuns.ReplaceAllString(s, " ")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CleanItem is Clean applied per line: a list item keeps the line breaks its
// author typed, but blank lines are dropped.
func CleanItem(s string) string {
	lines := strings.Split(prepare(s), "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(spaceRuns.ReplaceAllString(line, " "))
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// CleanAll cleans every item and drops the ones left blank.
func CleanAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if c := CleanItem(item); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func prepare(s string) string {
	if LooksLikeHTML(s) {
		s = HTMLToText(s)
	}
	return invisibleChars.Replace(norm.NFC.String(s))
}

// LooksLikeHTML reports whether s contains real markup: a tag naming a known
// HTML element that is either a closing tag, carries attributes, closes
// itself or is a void element. Generic-type notation such as List<T>,
// vector<int> or Optional<U> is plain text.
func LooksLikeHTML(s string) bool {
	for _, m := range tagPattern.FindAllStringSubmatch(s, -1) {
		a := atom.Lookup([]byte(strings.ToLower(m[2])))
		if !markupAtoms[a] {
			continue
		}
		if m[1] == "/" || strings.TrimSpace(m[3]) != "" || m[4] == "/" || voidAtoms[a] {
			return true
		}
	}
	return false
}
