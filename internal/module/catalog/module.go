package catalog

import "github.com/gin-gonic/gin"

// Module exposes every content collection as pages and JSON.
type Module struct {
	handler    *Handler
	apiHandler *APIHandler
}

// NewModule panics if either handler is nil.
func NewModule(h *Handler, api *APIHandler) *Module {
	if h == nil {
		panic("catalog.NewModule: handler must not be nil")
	}
	if api == nil {
		panic("catalog.NewModule: apiHandler must not be nil")
	}
	return &Module{handler: h, apiHandler: api}
}

// RegisterRoutes mounts one list and one detail route per collection under
// pages, and the JSON endpoints under api.
func (m *Module) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	api.GET("/collections", m.apiHandler.Collections)
	api.GET("/collections/:collection", m.apiHandler.List)
	api.GET("/collections/:collection/:id", m.apiHandler.Get)
	api.GET("/centers/map", m.apiHandler.CentersMap)

	for _, slug := range menu() {
		pages.GET("/"+slug, m.handler.List(slug))
		pages.GET("/"+slug+"/:id", m.handler.Detail(slug))
	}
}
