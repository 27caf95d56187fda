package docs

import (
	"strings"
	"testing"

	docs "google.golang.org/api/docs/v1"
)

func run(text string, style *docs.TextStyle) *docs.ParagraphElement {
	return &docs.ParagraphElement{TextRun: &docs.TextRun{Content: text, TextStyle: style}}
}

func para(elements ...*docs.ParagraphElement) *docs.StructuralElement {
	return &docs.StructuralElement{Paragraph: &docs.Paragraph{Elements: elements}}
}

func styled(namedStyle string, text string) *docs.StructuralElement {
	el := para(run(text, nil))
	el.Paragraph.ParagraphStyle = &docs.ParagraphStyle{NamedStyleType: namedStyle}
	return el
}

func bullet(listID string, level int64, text string) *docs.StructuralElement {
	el := para(run(text, nil))
	el.Paragraph.Bullet = &docs.Bullet{ListId: listID, NestingLevel: level}
	return el
}

func body(elements ...*docs.StructuralElement) *docs.Body {
	return &docs.Body{Content: elements}
}

func TestDocumentToMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		doc      *docs.Document
		expected string
		wantErr  bool
	}{
		{
			name:    "Nil document",
			wantErr: true,
		},
		{
			name:     "Simple document with title",
			doc:      &docs.Document{Title: "Test Document", Body: body(para(run("This is a test.\n", nil)))},
			expected: "# Test Document\n\nThis is a test.\n\n",
		},
		{
			name: "Headings and empty paragraphs",
			doc: &docs.Document{Title: "Document", Body: body(
				&docs.StructuralElement{SectionBreak: &docs.SectionBreak{}},
				styled("HEADING_1", "Heading 1\n"),
				para(run("\n", nil)),
				styled("HEADING_3", "Heading 3\n"),
			)},
			expected: "# Document\n\n# Heading 1\n\n### Heading 3\n\n",
		},
		{
			name: "Bold, italic and strikethrough keep surrounding spaces",
			doc: &docs.Document{Title: "Formatted", Body: body(para(
				run("Some ", nil),
				run("bold ", &docs.TextStyle{Bold: true}),
				run("and ", nil),
				run("both", &docs.TextStyle{Bold: true, Italic: true}),
				run(" ", nil),
				run("gone", &docs.TextStyle{Strikethrough: true}),
				run("\n", nil),
			))},
			expected: "# Formatted\n\nSome **bold** and ***both*** ~~gone~~\n\n",
		},
		{
			name:     "Link and code",
			doc:      &docs.Document{Body: body(para(run("Click here", &docs.TextStyle{Link: &docs.Link{Url: "https://example.com"}}), run(" or run ", nil), run("make", &docs.TextStyle{WeightedFontFamily: &docs.WeightedFontFamily{FontFamily: "Roboto Mono"}})))},
			expected: "[Click here](https://example.com) or run `make`\n\n",
		},
		{
			name: "Bullet list closes before next paragraph",
			doc: &docs.Document{Title: "List Document", Body: body(
				bullet("list1", 0, "Item 1\n"),
				bullet("list1", 1, "Nested\n"),
				bullet("list1", 0, "Item 2\n"),
				para(run("After\n", nil)),
			)},
			expected: "# List Document\n\n- Item 1\n  - Nested\n- Item 2\n\nAfter\n\n",
		},
		{
			name: "Numbered list from list properties",
			doc: &docs.Document{
				Lists: map[string]docs.List{
					"steps": {ListProperties: &docs.ListProperties{NestingLevels: []*docs.NestingLevel{{GlyphType: "DECIMAL"}}}},
				},
				Body: body(bullet("steps", 0, "First\n"), bullet("steps", 0, "Second\n")),
			},
			expected: "1. First\n1. Second\n\n",
		},
		{
			name: "Tabs with child tabs",
			doc: &docs.Document{Title: "Tabbed", Tabs: []*docs.Tab{
				{
					TabProperties: &docs.TabProperties{Title: "Overview"},
					DocumentTab:   &docs.DocumentTab{Body: body(para(run("Intro\n", nil)))},
					ChildTabs: []*docs.Tab{
						{DocumentTab: &docs.DocumentTab{Body: body(para(run("Detail\n", nil)))}},
					},
				},
				{DocumentTab: &docs.DocumentTab{Body: body(para(run("Second\n", nil)))}},
			}},
			expected: "# Tabbed\n\n## Tab: Overview\n\nIntro\n\n### Subtab 1\n\nDetail\n\n## Tab 2\n\nSecond\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DocumentToMarkdown(tt.doc)

			if tt.wantErr {
				if err == nil {
					t.Errorf("DocumentToMarkdown() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("DocumentToMarkdown() unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("DocumentToMarkdown() =\n%q\nwant:\n%q", result, tt.expected)
			}
		})
	}
}

func TestDocumentToPlainText(t *testing.T) {
	tests := []struct {
		name     string
		doc      *docs.Document
		expected string
		wantErr  bool
	}{
		{
			name:    "Nil document",
			wantErr: true,
		},
		{
			name:     "Multiple paragraphs",
			doc:      &docs.Document{Title: "Multi Paragraph", Body: body(para(run("First paragraph.\n", nil)), para(run("Second paragraph.\n", nil)))},
			expected: "Multi Paragraph\n\nFirst paragraph.\nSecond paragraph.\n",
		},
		{
			name:     "Formatting is stripped",
			doc:      &docs.Document{Title: "Formatted", Body: body(para(run("Bold text", &docs.TextStyle{Bold: true})))},
			expected: "Formatted\n\nBold text",
		},
		{
			name: "Tabs",
			doc: &docs.Document{Tabs: []*docs.Tab{
				{
					TabProperties: &docs.TabProperties{Title: "Main"},
					DocumentTab:   &docs.DocumentTab{Body: body(para(run("Hello\n", nil)))},
					ChildTabs:     []*docs.Tab{{TabProperties: &docs.TabProperties{Title: "Notes"}}},
				},
			}},
			expected: "=== Main ===\n\nHello\n\n  --- Notes ---\n\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DocumentToPlainText(tt.doc)

			if tt.wantErr {
				if err == nil {
					t.Errorf("DocumentToPlainText() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("DocumentToPlainText() unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("DocumentToPlainText() =\n%q\nwant:\n%q", result, tt.expected)
			}
		})
	}
}

func tableOf(rows ...[]string) *docs.Table {
	table := &docs.Table{}
	for _, cells := range rows {
		row := &docs.TableRow{}
		for _, text := range cells {
			row.TableCells = append(row.TableCells, &docs.TableCell{
				Content: []*docs.StructuralElement{para(run(text+"\n", nil))},
			})
		}
		table.TableRows = append(table.TableRows, row)
	}
	return table
}

func TestProcessTable(t *testing.T) {
	var md strings.Builder
	processTable(&md, tableOf(
		[]string{"Header 1", "Header 2"},
		[]string{"Cell 1", "a|b"},
	))

	want := "| Header 1 | Header 2 |\n| --- | --- |\n| Cell 1 | a\\|b |\n\n"
	if md.String() != want {
		t.Errorf("processTable() =\n%q\nwant:\n%q", md.String(), want)
	}
}

func TestPlainTextTable(t *testing.T) {
	var sb strings.Builder
	writePlainText(&sb, []*docs.StructuralElement{{Table: tableOf([]string{"a", "b"}, []string{"c", "d"})}})

	if sb.String() != "a\tb\nc\td\n" {
		t.Errorf("writePlainText() = %q", sb.String())
	}
}
