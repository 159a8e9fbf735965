package catalog

import (
	"github.com/gin-gonic/gin"

	"github.com/mosaic-hrd/website/internal/content"
	"github.com/mosaic-hrd/website/internal/domain"
	"github.com/mosaic-hrd/website/internal/middleware"
	"github.com/mosaic-hrd/website/internal/pkg"
)

// CollectionInfo describes one collection in GET /api/v1/collections.
type CollectionInfo struct {
	Slug           string   `json:"slug"`
	DefaultPerPage int      `json:"defaultPerPage,omitempty"`
	Filters        []string `json:"filters"`
}

// MapCenter is one pin of the centers map.
type MapCenter struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// APIHandler serves the collections as JSON.
type APIHandler struct {
	client   *content.Client
	sections map[string]section
}

// NewAPIHandler creates an APIHandler reading from client.
func NewAPIHandler(client *content.Client) *APIHandler {
	return &APIHandler{client: client, sections: sections()}
}

// Collections handles GET /api/v1/collections.
func (h *APIHandler) Collections(c *gin.Context) {
	out := make([]CollectionInfo, 0, len(h.sections))
	for _, slug := range menu() {
		sec := h.sections[slug]
		filters := append([]string{"q", "tag"}, sec.remoteKeys()...)
		out = append(out, CollectionInfo{Slug: slug, DefaultPerPage: sec.perPage(), Filters: filters})
	}
	pkg.Success(c, out)
}

// List handles GET /api/v1/collections/:collection.
func (h *APIHandler) List(c *gin.Context) {
	sec, ok := h.lookup(c)
	if !ok {
		return
	}
	req := pkg.ParsePageRequest(c, sec.perPage(), sec.remoteKeys())
	pkg.Success(c, sec.page(c.Request.Context(), h.client, req, pkg.ParseFilterState(c), middleware.GetLocale(c)))
}

// Get handles GET /api/v1/collections/:collection/:id.
func (h *APIHandler) Get(c *gin.Context) {
	sec, ok := h.lookup(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		pkg.Error(c, domain.NewAppError(domain.CodeNotFound, "entity not found", nil))
		return
	}
	entity, tags, found := sec.detail(c.Request.Context(), h.client, id, middleware.GetLocale(c))
	if !found {
		pkg.Error(c, domain.NewAppError(domain.CodeNotFound, "entity not found", nil))
		return
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	pkg.Success(c, pkg.DetailData[any]{Entity: &entity, RelatedTags: tags})
}

// CentersMap handles GET /api/v1/centers/map. Centers without coordinates
// are left out.
func (h *APIHandler) CentersMap(c *gin.Context) {
	all := content.FetchList[domain.Center](c.Request.Context(), h.client, content.CenterList, nil, middleware.GetLocale(c))
	pins := make([]MapCenter, 0, len(all))
	for _, ctr := range all {
		if !ctr.Located() {
			continue
		}
		pins = append(pins, MapCenter{
			ID:      ctr.ID,
			Name:    ctr.Name,
			Address: ctr.Address,
			Lat:     float64(ctr.Lat),
			Lon:     float64(ctr.Lon),
		})
	}
	pkg.Success(c, pins)
}

func (h *APIHandler) lookup(c *gin.Context) (section, bool) {
	sec, ok := h.sections[c.Param("collection")]
	if !ok {
		pkg.Error(c, domain.NewAppError(domain.CodeNotFound, "collection not found", nil))
		return nil, false
	}
	return sec, true
}
