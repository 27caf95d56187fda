package slides

import (
	"fmt"
	"strings"

	slides "google.golang.org/api/slides/v1"
)

// Presentation is a deck with a text summary of each slide.
type Presentation struct {
	ID         string  `json:"presentationId"`
	Title      string  `json:"title"`
	Locale     string  `json:"locale,omitempty"`
	RevisionID string  `json:"revisionId,omitempty"`
	PageSize   string  `json:"pageSize,omitempty"`
	URL        string  `json:"url"`
	Slides     []Slide `json:"slides"`
}

// Slide summarizes one slide.
type Slide struct {
	ObjectID string `json:"objectId"`
	Number   int    `json:"number"`
	Elements int    `json:"elements"`
	Text     string `json:"text,omitempty"`
}

// Page is a single page with its elements.
type Page struct {
	ObjectID string    `json:"objectId"`
	PageType string    `json:"pageType"`
	Elements []Element `json:"elements"`
}

// Element is one page element. Kind is shape, table, image, video, line,
// chart, group or unknown.
type Element struct {
	ObjectID string `json:"objectId"`
	Kind     string `json:"kind"`
	Text     string `json:"text,omitempty"`
}

// PresentationURL returns the edit link of a presentation.
func PresentationURL(id string) string {
	return "https://docs.google.com/presentation/d/" + id + "/edit"
}

func toPresentation(p *slides.Presentation) *Presentation {
	if p == nil {
		return &Presentation{}
	}
	out := &Presentation{
		ID:         p.PresentationId,
		Title:      p.Title,
		Locale:     p.Locale,
		RevisionID: p.RevisionId,
		PageSize:   formatSize(p.PageSize),
		URL:        PresentationURL(p.PresentationId),
		Slides:     make([]Slide, 0, len(p.Slides)),
	}
	for i, s := range p.Slides {
		if s == nil {
			continue
		}
		var texts []string
		for _, el := range s.PageElements {
			if t := elementText(el); t != "" {
				texts = append(texts, t)
			}
		}
		out.Slides = append(out.Slides, Slide{
			ObjectID: s.ObjectId,
			Number:   i + 1,
			Elements: len(s.PageElements),
			Text:     strings.Join(texts, "\n"),
		})
	}
	return out
}

func toPage(p *slides.Page) *Page {
	if p == nil {
		return &Page{}
	}
	out := &Page{
		ObjectID: p.ObjectId,
		PageType: p.PageType,
		Elements: make([]Element, 0, len(p.PageElements)),
	}
	for _, el := range p.PageElements {
		if el == nil {
			continue
		}
		out.Elements = append(out.Elements, Element{
			ObjectID: el.ObjectId,
			Kind:     elementKind(el),
			Text:     elementText(el),
		})
	}
	return out
}

func elementKind(el *slides.PageElement) string {
	switch {
	case el.Shape != nil:
		return "shape"
	case el.Table != nil:
		return "table"
	case el.Image != nil:
		return "image"
	case el.Video != nil:
		return "video"
	case el.Line != nil:
		return "line"
	case el.SheetsChart != nil:
		return "chart"
	case el.ElementGroup != nil:
		return "group"
	default:
		return "unknown"
	}
}

// elementText returns the trimmed text of a shape, table or group.
func elementText(el *slides.PageElement) string {
	if el == nil {
		return ""
	}
	switch {
	case el.Shape != nil:
		return textContent(el.Shape.Text)
	case el.Table != nil:
		var rows []string
		for _, row := range el.Table.TableRows {
			var cells []string
			for _, cell := range row.TableCells {
				cells = append(cells, textContent(cell.Text))
			}
			rows = append(rows, strings.Join(cells, " | "))
		}
		return strings.TrimSpace(strings.Join(rows, "\n"))
	case el.ElementGroup != nil:
		var parts []string
		for _, child := range el.ElementGroup.Children {
			if t := elementText(child); t != "" {
				parts = append(parts, t)
			}
		}
		return strings.Join(parts, "\n")
	}
	return ""
}

func textContent(tc *slides.TextContent) string {
	if tc == nil {
		return ""
	}
	var b strings.Builder
	for _, te := range tc.TextElements {
		if te != nil && te.TextRun != nil {
			b.WriteString(te.TextRun.Content)
		}
	}
	return strings.TrimSpace(b.String())
}

func formatSize(s *slides.Size) string {
	if s == nil || s.Width == nil || s.Height == nil {
		return ""
	}
	return fmt.Sprintf("%.0fx%.0f %s", s.Width.Magnitude, s.Height.Magnitude, s.Width.Unit)
}
