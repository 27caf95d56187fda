package search

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), "engine-1",
		option.WithEndpoint(srv.URL+"/"),
		option.WithAPIKey("key-1"),
	)
	require.NoError(t, err)
	return c
}

func respond(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func TestNewClient_NoEngine(t *testing.T) {
	_, err := NewClient(context.Background(), "", option.WithAPIKey("k"))
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantQuery url.Values
	}{
		{
			name:      "defaults",
			wantQuery: url.Values{"num": {"10"}},
		},
		{
			name: "all options",
			opts: Options{Num: 25, Start: 200, SafeSearch: true, SiteSearch: "go.dev", FileType: "pdf", DateRestrict: "m1", Language: "en"},
			wantQuery: url.Values{
				"num":              {"10"},
				"start":            {"91"},
				"safe":             {"active"},
				"siteSearch":       {"go.dev"},
				"siteSearchFilter": {"i"},
				"fileType":         {"pdf"},
				"dateRestrict":     {"m1"},
				"lr":               {"lang_en"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/customsearch/v1", r.URL.Path)
				q := r.URL.Query()
				assert.Equal(t, "engine-1", q.Get("cx"))
				assert.Equal(t, "golang generics", q.Get("q"))
				assert.Equal(t, "key-1", q.Get("key"))
				for k, v := range tt.wantQuery {
					assert.Equal(t, v, q[k], "query parameter %s", k)
				}
				respond(w, `{
					"searchInformation": {"totalResults": "1200", "searchTime": 0.21},
					"queries": {"nextPage": [{"startIndex": 11}]},
					"items": [{"title": "Tutorial", "link": "https://go.dev/doc/tutorial/generics", "displayLink": "go.dev", "snippet": "Generics"}]
				}`)
			})

			res, err := c.Search(context.Background(), " golang generics ", tt.opts)
			require.NoError(t, err)
			assert.Equal(t, "1200", res.TotalResults)
			assert.Equal(t, int64(11), res.NextStart)
			require.Len(t, res.Items, 1)
			assert.Equal(t, "go.dev", res.Items[0].DisplayLink)
		})
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	})
	_, err := c.Search(context.Background(), "  ", Options{})
	assert.EqualError(t, err, "query is required")
}

func TestEngineInfo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("num"))
		respond(w, `{
			"context": {"title": "Docs search", "facets": [[{"label": "reference", "anchor": "Reference"}], [{"label": "blog"}]]},
			"searchInformation": {"totalResults": "42"}
		}`)
	})

	info, err := c.EngineInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &EngineInfo{EngineID: "engine-1", Title: "Docs search", Facets: []string{"reference", "blog"}, TotalResults: "42"}, info)
}
