package home

import "github.com/gin-gonic/gin"

// Module mounts the landing and about pages.
type Module struct {
	handler *Handler
}

// NewModule panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("home.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes mounts the pages. The module has no JSON API.
func (m *Module) RegisterRoutes(_ *gin.RouterGroup, pages *gin.RouterGroup) {
	pages.GET("", m.handler.Home)
	pages.GET("/about", m.handler.About)
}
