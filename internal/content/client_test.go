package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mosaic-hrd/website/internal/cache"
	"github.com/mosaic-hrd/website/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient points a Client at handler and returns it with a request counter.
func newTestClient(t *testing.T, handler http.HandlerFunc, store cache.Store) (*Client, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := New(Options{
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
		Store:   store,
		Logger:  discardLogger(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c, &hits
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":     "Success",
		"message":    "ok",
		"data":       data,
		"statusCode": 200,
	})
}

func projectsJSON(n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{
			"id":   i + 1,
			"name": fmt.Sprintf("Project %d", i+1),
			"tags": []map[string]any{{"id": 5, "name": "Health"}},
		}
	}
	return out
}

func assertEmptyPage[T any](t *testing.T, got domain.PageResult[T], tags []domain.Tag) {
	t.Helper()
	want := domain.EmptyPage[T]()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("page = %+v; want %+v", got, want)
	}
	if tags == nil || len(tags) != 0 {
		t.Errorf("tags = %v; want empty non-nil slice", tags)
	}
}

func TestNew_BaseURL(t *testing.T) {
	c, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL() = %q; want %q", c.BaseURL(), DefaultBaseURL)
	}

	c, err = New(Options{BaseURL: "http://example.test/api/"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.BaseURL() != "http://example.test/api" {
		t.Errorf("trailing slash should be trimmed, got %q", c.BaseURL())
	}

	if _, err := New(Options{BaseURL: "not a url"}); err == nil {
		t.Error("expected error for invalid base url")
	}
}

func TestFetchPage_FailSoft(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status":"Error","message":"missing","data":null}`))
		}},
		{"client error status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"status":"Error","data":{"projects":[{"id":1}]}}`))
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data": {"projects": [`))
		}},
		{"wrong item shape", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(t, w, map[string]any{"projects": []any{"not-an-object"}})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, tt.handler, nil)
			got, tags := FetchPage[domain.Project](context.Background(), c, Projects, 1, 4, nil, domain.LocaleAR)
			assertEmptyPage(t, got, tags)
		})
	}
}

func TestFetchPage_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: base, Timeout: time.Second, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got, tags := FetchPage[domain.Project](context.Background(), c, Projects, 1, 4, nil, domain.LocaleEN)
	assertEmptyPage(t, got, tags)

	item, detailTags := FetchByID[domain.Project](context.Background(), c, Projects, 3, domain.LocaleEN)
	if item != nil || len(detailTags) != 0 {
		t.Errorf("FetchByID() = %v, %v; want nil, empty", item, detailTags)
	}
}

func TestFetchPage_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, _ := New(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond, Logger: discardLogger()})
	got, tags := FetchPage[domain.Project](context.Background(), c, Projects, 1, 4, nil, domain.LocaleAR)
	assertEmptyPage(t, got, tags)
}

func TestFetchPage_RequestShape(t *testing.T) {
	var gotQuery map[string][]string
	var gotPath, gotLang, gotAccept string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotLang = r.Header.Get("Accept-Language")
		gotAccept = r.Header.Get("Accept")
		writeEnvelope(t, w, map[string]any{"projects": []any{}})
	}, nil)

	FetchPage[domain.Project](context.Background(), c, Projects, 0, 0, Filters{"sector_id": "7", "center_id": ""}, domain.LocaleEN)

	if gotPath != "/projects/paginated" {
		t.Errorf("path = %q; want /projects/paginated", gotPath)
	}
	if gotLang != "en" || gotAccept != "application/json" {
		t.Errorf("headers Accept-Language=%q Accept=%q", gotLang, gotAccept)
	}
	want := map[string]string{
		"page":      "1",
		"per_page":  "4",
		"search":    "",
		"center_id": "",
		"tag_id":    "",
		"sector_id": "7",
	}
	for k, v := range want {
		vals, ok := gotQuery[k]
		if !ok {
			t.Errorf("query param %q missing; empty filters must still be sent", k)
			continue
		}
		if vals[0] != v {
			t.Errorf("query %s = %q; want %q", k, vals[0], v)
		}
	}
}

func TestFetchPage_NamedTags(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, map[string]any{
			"projects":     projectsJSON(2),
			"project_tags": []map[string]any{{"id": 1, "name": "Water"}, {"id": 2, "name": "Education"}},
			"tags":         []map[string]any{{"id": 9, "name": "Ignored"}},
		})
	}, nil)

	_, tags := FetchPage[domain.Project](context.Background(), c, Projects, 1, 4, nil, domain.LocaleAR)
	want := []domain.Tag{{ID: 1, Name: "Water"}, {ID: 2, Name: "Education"}}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("tags = %+v; want %+v", tags, want)
	}
}

func TestFetchPage_AlternateTags(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, map[string]any{
			"centers":              []map[string]any{{"id": 1, "name": "Story"}},
			"success_stories_tags": []any{},
			"tags":                 []map[string]any{{"id": 3, "name": "Livelihood"}},
		})
	}, nil)

	page, tags := FetchPage[domain.SuccessStory](context.Background(), c, SuccessStories, 1, 6, nil, domain.LocaleAR)
	if len(page.Items) != 1 || page.Items[0].Name != "Story" {
		t.Errorf("legacy centers key should be read as success stories, got %+v", page.Items)
	}
	want := []domain.Tag{{ID: 3, Name: "Livelihood"}}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("tags = %+v; want %+v", tags, want)
	}
}

func TestFetchPage_EmbeddedTagsDeduplicated(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, map[string]any{
			"statistics": []map[string]any{
				{"id": 1, "name": "A", "tags": []map[string]any{{"id": 5, "name": "Health"}, {"id": 6, "name": "Shelter"}}},
				{"id": 2, "name": "B", "tags": []map[string]any{{"id": 5, "name": "Health"}}},
				{"id": 3, "name": "C", "tags": []map[string]any{{"id": 7, "name": "Food"}, {"id": 5, "name": "Health"}}},
			},
		})
	}, nil)

	_, tags := FetchPage[domain.Statistic](context.Background(), c, Statistics, 1, 10, nil, domain.LocaleAR)
	want := []domain.Tag{{ID: 5, Name: "Health"}, {ID: 6, Name: "Shelter"}, {ID: 7, Name: "Food"}}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("tags = %+v; want %+v", tags, want)
	}

	count := 0
	for _, tag := range tags {
		if tag.ID == 5 {
			count++
		}
	}
	if count != 1 {
		t.Errorf("tag 5 appears %d times; want 1", count)
	}
}

func TestFetchPage_MalformedTagListFallsThrough(t *testing.T) {
	reports := []map[string]any{{"id": 1, "name": "R1", "tags": []map[string]any{{"id": 5, "name": "Health"}}}}
	tests := []struct {
		name string
		data map[string]any
		want []domain.Tag
	}{
		{
			name: "named list of strings",
			data: map[string]any{"reports": reports, "report_tags": []string{"Health"}},
			want: []domain.Tag{{ID: 5, Name: "Health"}},
		},
		{
			name: "named list broken, alternate used",
			data: map[string]any{"reports": reports, "report_tags": []any{1, 2}, "tags": []map[string]any{{"id": 8, "name": "Shelter"}}},
			want: []domain.Tag{{ID: 8, Name: "Shelter"}},
		},
		{
			name: "both lists broken",
			data: map[string]any{"reports": reports, "report_tags": []string{"x"}, "tags": []any{true}},
			want: []domain.Tag{{ID: 5, Name: "Health"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(t, w, tt.data)
			}, nil)
			page, tags := FetchPage[domain.Report](context.Background(), c, Reports, 1, 6, nil, domain.LocaleEN)
			if len(page.Items) != 1 || page.Items[0].ID != 1 || page.Total != 1 {
				t.Fatalf("page = %+v; want report 1 kept", page)
			}
			if !reflect.DeepEqual(tags, tt.want) {
				t.Errorf("tags = %+v; want %+v", tags, tt.want)
			}
		})
	}
}

func TestFetchPage_ClientSideSlicing(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, map[string]any{"reports": projectsJSON(37)})
	}, nil)

	tests := []struct {
		name        string
		page        int
		wantFirstID int
		wantLen     int
		wantCurrent int
	}{
		{"page 2", 2, 11, 10, 2},
		{"last page", 4, 31, 7, 4},
		{"past the end clamps", 9, 31, 7, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := FetchPage[domain.Report](context.Background(), c, Reports, tt.page, 10, nil, domain.LocaleAR)
			if len(got.Items) != tt.wantLen {
				t.Fatalf("len(Items) = %d; want %d", len(got.Items), tt.wantLen)
			}
			if got.Items[0].ID != tt.wantFirstID {
				t.Errorf("first id = %d; want %d", got.Items[0].ID, tt.wantFirstID)
			}
			if got.TotalPages != 4 || got.Total != 37 || got.CurrentPage != tt.wantCurrent {
				t.Errorf("meta = current %d total_pages %d total %d; want %d/4/37", got.CurrentPage, got.TotalPages, got.Total, tt.wantCurrent)
			}
		})
	}
}

func TestFetchPage_ServerMetadata(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want [3]int // current, totalPages, total
	}{
		{
			name: "complete metadata",
			data: map[string]any{"projects": projectsJSON(4), "current_page": 2, "total_pages": 5, "total": 18},
			want: [3]int{2, 5, 18},
		},
		{
			name: "string metadata",
			data: map[string]any{"projects": projectsJSON(4), "current_page": "3", "total_pages": "5", "total": "18"},
			want: [3]int{3, 5, 18},
		},
		{
			name: "missing pages derived from total",
			data: map[string]any{"projects": projectsJSON(4), "total": 9},
			want: [3]int{1, 3, 9},
		},
		{
			name: "no metadata",
			data: map[string]any{"projects": projectsJSON(3)},
			want: [3]int{1, 1, 3},
		},
		{
			name: "inconsistent total pages recomputed",
			data: map[string]any{"projects": projectsJSON(4), "total_pages": 1, "total": 37},
			want: [3]int{1, 10, 37},
		},
		{
			name: "only total pages known",
			data: map[string]any{"projects": projectsJSON(4), "current_page": 2, "total_pages": 3},
			want: [3]int{2, 3, 4},
		},
		{
			name: "current beyond total pages",
			data: map[string]any{"projects": projectsJSON(1), "current_page": 8, "total_pages": 2, "total": 5},
			want: [3]int{2, 2, 5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(t, w, tt.data)
			}, nil)
			got, _ := FetchPage[domain.Project](context.Background(), c, Projects, 1, 4, nil, domain.LocaleAR)
			if gotMeta := [3]int{got.CurrentPage, got.TotalPages, got.Total}; gotMeta != tt.want {
				t.Errorf("meta = %v; want %v", gotMeta, tt.want)
			}
		})
	}
}

func TestFetchPage_ActivitiesDataKey(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, map[string]any{"data": []map[string]any{{"id": 4, "name": "Distribution"}}})
	}, nil)
	got, _ := FetchPage[domain.Activity](context.Background(), c, Activities, 1, 6, Filters{"project_id": "2"}, domain.LocaleAR)
	if len(got.Items) != 1 || got.Items[0].ID != 4 {
		t.Errorf("Items = %+v; want activity 4", got.Items)
	}
}

func TestFetchPage_Idempotent(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, map[string]any{"projects": projectsJSON(4), "total": 12, "total_pages": 3, "current_page": 1})
	}, nil)

	ctx := context.Background()
	p1, t1 := FetchPage[domain.Project](ctx, c, Projects, 1, 4, Filters{"search": "x"}, domain.LocaleAR)
	p2, t2 := FetchPage[domain.Project](ctx, c, Projects, 1, 4, Filters{"search": "x"}, domain.LocaleAR)
	if !reflect.DeepEqual(p1, p2) || !reflect.DeepEqual(t1, t2) {
		t.Error("identical calls against an unchanged backend should yield equal results")
	}
}

func TestFetchPage_UsesCache(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, map[string]any{"projects": projectsJSON(2)})
	}, cache.NewMemory(16, time.Minute))

	ctx := context.Background()
	FetchPage[domain.Project](ctx, c, Projects, 1, 4, nil, domain.LocaleAR)
	FetchPage[domain.Project](ctx, c, Projects, 1, 4, nil, domain.LocaleAR)
	if n := hits.Load(); n != 1 {
		t.Errorf("upstream hits = %d; want 1 with a warm cache", n)
	}

	FetchPage[domain.Project](ctx, c, Projects, 1, 4, nil, domain.LocaleEN)
	if n := hits.Load(); n != 2 {
		t.Errorf("upstream hits = %d; a different locale must miss the cache", n)
	}
}

func TestFetchPage_FailuresAreNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeEnvelope(t, w, map[string]any{"projects": projectsJSON(1)})
	}, cache.NewMemory(16, time.Minute))

	ctx := context.Background()
	FetchPage[domain.Project](ctx, c, Projects, 1, 4, nil, domain.LocaleAR)
	fail.Store(false)
	got, _ := FetchPage[domain.Project](ctx, c, Projects, 1, 4, nil, domain.LocaleAR)
	if len(got.Items) != 1 || hits.Load() != 2 {
		t.Errorf("a failed response must not be cached; items=%d hits=%d", len(got.Items), hits.Load())
	}
}
