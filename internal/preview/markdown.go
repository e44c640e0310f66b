package preview

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/syllabusbuilder/internal/docmodel"
)

var (
	numberedItem = regexp.MustCompile(`(?s)^(\d+)\.\s+(.*)$`)
	outcomeItem  = regexp.MustCompile(`(?s)^(CO\d+)\s+(.*)$`)
)

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
	`>`, `\>`,
	`#`, `\#`,
	`|`, `\|`,
)

type blockKind int

const (
	kindNone blockKind = iota
	kindParagraph
	kindHeading
	kindNumbered
	kindOutcome
)

// Body renders outline blocks as Markdown. Bold paragraphs become headings,
// numbered and CO-labelled paragraphs become lists. Blank paragraphs are
// dropped.
func Body(blocks []docmodel.Block) string {
	var sb strings.Builder
	prev := kindNone

	for _, b := range blocks {
		text := strings.TrimSpace(b.Text)
		if text == "" {
			continue
		}

		var kind blockKind
		var line string
		switch {
		case !b.InTable && numberedItem.MatchString(text):
			m := numberedItem.FindStringSubmatch(text)
			kind, line = kindNumbered, m[1]+". "+inline(m[2], "   ")
		case outcomeItem.MatchString(text):
			m := outcomeItem.FindStringSubmatch(text)
			kind, line = kindOutcome, "- **"+m[1]+"** "+inline(m[2], "  ")
		case b.Bold && !b.InTable && strings.HasPrefix(text, "UNIT "):
			kind, line = kindHeading, "### "+inline(text, "")
		case b.Bold && !b.InTable:
			kind, line = kindHeading, "## "+inline(text, "")
		default:
			kind, line = kindParagraph, inline(text, "")
		}

		if prev != kindNone && (kind != prev || (kind != kindNumbered && kind != kindOutcome)) {
			sb.WriteString("\n")
		}
		sb.WriteString(line)
		sb.WriteString("\n")
		prev = kind
	}
	return sb.String()
}

// inline escapes Markdown syntax and turns manual line breaks into hard
// breaks, indenting continuation lines by indent.
func inline(s, indent string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		l = mdEscaper.Replace(strings.TrimSpace(l))
		if i == 0 && startsLikeList(l) {
			l = `\` + l
		}
		lines[i] = l
	}
	return strings.Join(lines, "\\\n"+indent)
}

func startsLikeList(s string) bool {
	return strings.HasPrefix(s, "- ") || strings.HasPrefix(s, "+ ") || numberedItem.MatchString(s)
}
