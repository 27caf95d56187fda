package search

import (
	"encoding/json"

	customsearch "google.golang.org/api/customsearch/v1"
)

// Result is one search hit.
type Result struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	DisplayLink string `json:"displayLink,omitempty"`
	Snippet     string `json:"snippet,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// Results is one page of search hits.
type Results struct {
	Query        string   `json:"query"`
	TotalResults string   `json:"totalResults,omitempty"`
	SearchTime   float64  `json:"searchTime,omitempty"`
	NextStart    int64    `json:"nextStart,omitempty"`
	Items        []Result `json:"items"`
}

// EngineInfo describes the configured search engine.
type EngineInfo struct {
	EngineID     string   `json:"engineId"`
	Title        string   `json:"title,omitempty"`
	Facets       []string `json:"facets,omitempty"`
	TotalResults string   `json:"totalResults,omitempty"`
}

// Options narrow a search. Zero values are not sent.
type Options struct {
	Num          int64
	Start        int64
	SafeSearch   bool
	SiteSearch   string
	FileType     string
	DateRestrict string
	Language     string
}

// engineContext is the untyped "context" member of a search response.
type engineContext struct {
	Title  string `json:"title"`
	Facets [][]struct {
		Label  string `json:"label"`
		Anchor string `json:"anchor"`
	} `json:"facets"`
}

func toResults(query string, s *customsearch.Search) *Results {
	out := &Results{Query: query, Items: []Result{}}
	if s == nil {
		return out
	}
	if s.SearchInformation != nil {
		out.TotalResults = s.SearchInformation.TotalResults
		out.SearchTime = s.SearchInformation.SearchTime
	}
	if s.Queries != nil && len(s.Queries.NextPage) > 0 && s.Queries.NextPage[0] != nil {
		out.NextStart = s.Queries.NextPage[0].StartIndex
	}
	for _, item := range s.Items {
		if item == nil {
			continue
		}
		out.Items = append(out.Items, Result{
			Title:       item.Title,
			Link:        item.Link,
			DisplayLink: item.DisplayLink,
			Snippet:     item.Snippet,
			MimeType:    item.Mime,
		})
	}
	return out
}

func toEngineInfo(engineID string, s *customsearch.Search) *EngineInfo {
	info := &EngineInfo{EngineID: engineID}
	if s == nil {
		return info
	}
	if len(s.Context) > 0 {
		var ec engineContext
		if err := json.Unmarshal(s.Context, &ec); err == nil {
			info.Title = ec.Title
			for _, group := range ec.Facets {
				for _, f := range group {
					if f.Label != "" {
						info.Facets = append(info.Facets, f.Label)
					}
				}
			}
		}
	}
	if s.SearchInformation != nil {
		info.TotalResults = s.SearchInformation.TotalResults
	}
	return info
}
