package pkg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mosaic-hrd/website/internal/domain"
)

func queryContext(rawQuery string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/en/projects?"+rawQuery, nil)
	return c
}

func TestParsePage(t *testing.T) {
	tests := map[string]int{
		"":                1,
		"page=3":          3,
		"page=0":          1,
		"page=-2":         1,
		"page=abc":        1,
		"projects_page=4": 1,
		"page=2&page=9":   2,
	}
	for q, want := range tests {
		if got := ParsePage(queryContext(q), "page"); got != want {
			t.Errorf("ParsePage(%q) = %d; want %d", q, got, want)
		}
	}
	if got := ParsePage(queryContext("projects_page=4"), "projects_page"); got != 4 {
		t.Errorf("named page param = %d; want 4", got)
	}
}

func TestParsePageRequest(t *testing.T) {
	allowed := []string{"search", "center_id", "tag_id"}
	tests := []struct {
		name  string
		query string
		want  domain.PageRequest
	}{
		{"defaults", "", domain.PageRequest{Page: 1, PerPage: 6, Filter: map[string]string{}}},
		{"explicit", "page=2&per_page=12", domain.PageRequest{Page: 2, PerPage: 12, Filter: map[string]string{}}},
		{"capped", "per_page=500", domain.PageRequest{Page: 1, PerPage: MaxPerPage, Filter: map[string]string{}}},
		{"invalid per_page", "per_page=-1", domain.PageRequest{Page: 1, PerPage: 6, Filter: map[string]string{}}},
		{"allowed keys only, empty kept", "center_id=4&search=&evil=1", domain.PageRequest{
			Page: 1, PerPage: 6, Filter: map[string]string{"center_id": "4", "search": ""},
		}},
		{"values trimmed", "search=%20well%20", domain.PageRequest{Page: 1, PerPage: 6, Filter: map[string]string{"search": "well"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParsePageRequest(queryContext(tt.query), 6, allowed); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePageRequest() = %+v; want %+v", got, tt.want)
			}
		})
	}
}

func TestParseFilterState(t *testing.T) {
	f := ParseFilterState(queryContext("q=Water&tag=7"))
	if f.SearchQuery != "Water" || f.SelectedTagID == nil || *f.SelectedTagID != 7 {
		t.Errorf("ParseFilterState() = %+v", f)
	}
	if f := ParseFilterState(queryContext("tag=seven")); f.SelectedTagID != nil || f.Active() {
		t.Errorf("non-numeric tag should be ignored: %+v", f)
	}
}

func TestPaginateQuery(t *testing.T) {
	db := newTxTestDB(t)
	for i := 1; i <= 25; i++ {
		db.Create(&testItem{Name: "item"})
	}

	tests := []struct {
		name        string
		req         domain.PageRequest
		wantIDs     []uint
		wantCurrent int
		wantPages   int
	}{
		{"first page", domain.PageRequest{Page: 1, PerPage: 10}, []uint{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 1, 3},
		{"remainder", domain.PageRequest{Page: 3, PerPage: 10}, []uint{21, 22, 23, 24, 25}, 3, 3},
		{"page zero is first", domain.PageRequest{Page: 0, PerPage: 2}, []uint{1, 2}, 1, 13},
		{"past the end clamps", domain.PageRequest{Page: 9, PerPage: 10}, []uint{21, 22, 23, 24, 25}, 3, 3},
		{"zero per page treated as one", domain.PageRequest{Page: 2}, []uint{2}, 2, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PaginateQuery[testItem](context.Background(), db.Model(&testItem{}), tt.req, "id")
			if err != nil {
				t.Fatalf("PaginateQuery: %v", err)
			}
			var ids []uint
			for _, r := range got.Items {
				ids = append(ids, r.ID)
			}
			if !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Errorf("ids = %v; want %v", ids, tt.wantIDs)
			}
			if got.CurrentPage != tt.wantCurrent || got.TotalPages != tt.wantPages || got.Total != 25 {
				t.Errorf("meta = %d/%d/%d; want %d/%d/25", got.CurrentPage, got.TotalPages, got.Total, tt.wantCurrent, tt.wantPages)
			}
		})
	}
}

func TestPaginateQuery_EmptyTable(t *testing.T) {
	db := newTxTestDB(t)
	got, err := PaginateQuery[testItem](context.Background(), db.Model(&testItem{}).Where("name = ?", "none"), domain.PageRequest{Page: 4, PerPage: 10}, "")
	if err != nil {
		t.Fatalf("PaginateQuery: %v", err)
	}
	if got.Items == nil || len(got.Items) != 0 || got.CurrentPage != 1 || got.TotalPages != 1 || got.Total != 0 {
		t.Errorf("PaginateQuery() = %+v; want one empty page", got)
	}
}

func TestPaginateQuery_ClosedPool(t *testing.T) {
	db := newTxTestDB(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB(): %v", err)
	}
	_ = sqlDB.Close()

	if _, err := PaginateQuery[testItem](context.Background(), db.Model(&testItem{}), domain.PageRequest{Page: 1, PerPage: 5}, "id"); err == nil {
		t.Error("expected error from a closed pool")
	}
}
