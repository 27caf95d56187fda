package docs

import (
	"errors"
	"fmt"
	"strings"

	docs "google.golang.org/api/docs/v1"
)

// headingLevels maps named paragraph styles to Markdown heading levels.
var headingLevels = map[string]int{
	"TITLE":     1,
	"SUBTITLE":  2,
	"HEADING_1": 1,
	"HEADING_2": 2,
	"HEADING_3": 3,
	"HEADING_4": 4,
	"HEADING_5": 5,
	"HEADING_6": 6,
}

// DocumentToMarkdown converts a Google Doc to Markdown. Tabbed documents get
// one heading per tab; child tabs are nested one heading level deeper.
func DocumentToMarkdown(doc *docs.Document) (string, error) {
	if doc == nil {
		return "", errors.New("document is nil")
	}

	w := &markdownWriter{lists: doc.Lists}
	if doc.Title != "" {
		w.sb.WriteString("# " + doc.Title + "\n\n")
	}

	if len(doc.Tabs) == 0 {
		if doc.Body != nil {
			w.content(doc.Body.Content)
		}
		return w.sb.String(), nil
	}

	walkTabs(doc.Tabs, 0, func(tab *docs.Tab, index, depth int) {
		w.endList()
		title := tabTitle(tab)
		switch {
		case depth == 0 && title != "":
			w.sb.WriteString("## Tab: " + title + "\n\n")
		case depth == 0 && index > 0:
			fmt.Fprintf(&w.sb, "## Tab %d\n\n", index+1)
		case depth > 0 && title != "":
			w.sb.WriteString(strings.Repeat("#", depth+2) + " " + title + "\n\n")
		case depth > 0:
			fmt.Fprintf(&w.sb, "%s Subtab %d\n\n", strings.Repeat("#", depth+2), index+1)
		}
		if tab.DocumentTab != nil {
			w.lists = tab.DocumentTab.Lists
			if tab.DocumentTab.Body != nil {
				w.content(tab.DocumentTab.Body.Content)
			}
		}
	})
	return w.sb.String(), nil
}

// DocumentToPlainText extracts the text of a Google Doc without formatting.
func DocumentToPlainText(doc *docs.Document) (string, error) {
	if doc == nil {
		return "", errors.New("document is nil")
	}

	var sb strings.Builder
	if doc.Title != "" {
		sb.WriteString(doc.Title + "\n\n")
	}

	if len(doc.Tabs) == 0 {
		if doc.Body != nil {
			writePlainText(&sb, doc.Body.Content)
		}
		return sb.String(), nil
	}

	walkTabs(doc.Tabs, 0, func(tab *docs.Tab, index, depth int) {
		title := tabTitle(tab)
		switch {
		case depth == 0 && title != "":
			sb.WriteString("=== " + title + " ===\n\n")
		case depth == 0 && index > 0:
			fmt.Fprintf(&sb, "=== Tab %d ===\n\n", index+1)
		case depth > 0:
			if title == "" {
				title = fmt.Sprintf("Subtab %d", index+1)
			}
			sb.WriteString(strings.Repeat("  ", depth) + "--- " + title + " ---\n\n")
		}
		if tab.DocumentTab != nil && tab.DocumentTab.Body != nil {
			writePlainText(&sb, tab.DocumentTab.Body.Content)
		}
		sb.WriteString("\n")
	})
	return sb.String(), nil
}

// walkTabs visits tabs depth first.
func walkTabs(tabs []*docs.Tab, depth int, visit func(tab *docs.Tab, index, depth int)) {
	for i, tab := range tabs {
		if tab == nil {
			continue
		}
		visit(tab, i, depth)
		walkTabs(tab.ChildTabs, depth+1, visit)
	}
}

func tabTitle(tab *docs.Tab) string {
	if tab.TabProperties == nil {
		return ""
	}
	return tab.TabProperties.Title
}

type markdownWriter struct {
	sb     strings.Builder
	lists  map[string]docs.List
	inList bool
}

func (w *markdownWriter) content(elements []*docs.StructuralElement) {
	for _, element := range elements {
		switch {
		case element == nil:
		case element.Paragraph != nil:
			w.paragraph(element.Paragraph)
		case element.Table != nil:
			w.endList()
			processTable(&w.sb, element.Table)
		}
	}
	w.endList()
}

// endList closes a running list with a blank line.
func (w *markdownWriter) endList() {
	if w.inList {
		w.sb.WriteString("\n")
		w.inList = false
	}
}

func (w *markdownWriter) paragraph(para *docs.Paragraph) {
	var text strings.Builder
	for _, elem := range para.Elements {
		switch {
		case elem.TextRun != nil:
			writeTextRun(&text, elem.TextRun)
		case elem.InlineObjectElement != nil:
			text.WriteString("[inline object]")
		}
	}
	line := strings.TrimRight(text.String(), "\n")
	if strings.TrimSpace(line) == "" {
		return
	}

	if para.Bullet != nil {
		w.inList = true
		level := para.Bullet.NestingLevel
		marker := "- "
		if w.ordered(para.Bullet.ListId, level) {
			marker = "1. "
		}
		w.sb.WriteString(strings.Repeat("  ", int(level)) + marker + line + "\n")
		return
	}

	w.endList()
	if para.ParagraphStyle != nil {
		if level, ok := headingLevels[para.ParagraphStyle.NamedStyleType]; ok {
			w.sb.WriteString(strings.Repeat("#", level) + " ")
		}
	}
	w.sb.WriteString(line + "\n\n")
}

// ordered reports whether a list level uses numbered glyphs.
func (w *markdownWriter) ordered(listID string, level int64) bool {
	list, ok := w.lists[listID]
	if !ok || list.ListProperties == nil {
		return false
	}
	levels := list.ListProperties.NestingLevels
	if int(level) >= len(levels) || levels[level] == nil {
		return false
	}
	glyph := levels[level].GlyphType
	return glyph != "" && glyph != "GLYPH_TYPE_UNSPECIFIED" && glyph != "NONE"
}

// writeTextRun applies Markdown formatting to a run. Markers wrap the text
// without its surrounding whitespace so "**word** " stays valid Markdown.
func writeTextRun(sb *strings.Builder, run *docs.TextRun) {
	content := run.Content
	core := strings.TrimSpace(content)
	if run.TextStyle == nil || core == "" {
		sb.WriteString(content)
		return
	}

	start := strings.Index(content, core)
	lead, trail := content[:start], content[start+len(core):]
	style := run.TextStyle

	switch {
	case style.Link != nil && style.Link.Url != "":
		core = "[" + core + "](" + style.Link.Url + ")"
	case style.WeightedFontFamily != nil && isMonospace(style.WeightedFontFamily.FontFamily):
		core = "`" + core + "`"
	case style.Bold && style.Italic:
		core = "***" + core + "***"
	case style.Bold:
		core = "**" + core + "**"
	case style.Italic:
		core = "*" + core + "*"
	}
	if style.Strikethrough {
		core = "~~" + core + "~~"
	}
	sb.WriteString(lead + core + trail)
}

func isMonospace(family string) bool {
	switch family {
	case "Courier New", "Consolas", "Roboto Mono", "Source Code Pro", "Inconsolata":
		return true
	}
	return strings.Contains(family, "Courier") || strings.Contains(family, "Mono")
}

// processTable renders a table; the first row becomes the header.
func processTable(sb *strings.Builder, table *docs.Table) {
	if table == nil || len(table.TableRows) == 0 {
		return
	}

	for rowIndex, row := range table.TableRows {
		sb.WriteString("|")
		for _, cell := range row.TableCells {
			text := strings.Join(strings.Fields(cellText(cell)), " ")
			sb.WriteString(" " + strings.ReplaceAll(text, "|", `\|`) + " |")
		}
		sb.WriteString("\n")

		if rowIndex == 0 {
			sb.WriteString("|" + strings.Repeat(" --- |", len(row.TableCells)) + "\n")
		}
	}
	sb.WriteString("\n")
}

func cellText(cell *docs.TableCell) string {
	var sb strings.Builder
	for _, element := range cell.Content {
		if element != nil && element.Paragraph != nil {
			writeParagraphText(&sb, element.Paragraph)
		}
	}
	return sb.String()
}

func writePlainText(sb *strings.Builder, elements []*docs.StructuralElement) {
	for _, element := range elements {
		switch {
		case element == nil:
		case element.Paragraph != nil:
			writeParagraphText(sb, element.Paragraph)
		case element.Table != nil:
			for _, row := range element.Table.TableRows {
				cells := make([]string, 0, len(row.TableCells))
				for _, cell := range row.TableCells {
					cells = append(cells, strings.TrimSpace(cellText(cell)))
				}
				sb.WriteString(strings.Join(cells, "\t") + "\n")
			}
		}
	}
}

func writeParagraphText(sb *strings.Builder, para *docs.Paragraph) {
	for _, elem := range para.Elements {
		if elem.TextRun != nil {
			sb.WriteString(elem.TextRun.Content)
		}
	}
}
