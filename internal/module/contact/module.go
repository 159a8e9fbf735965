package contact

import "github.com/gin-gonic/gin"

// Module exposes the contact form and its JSON API.
type Module struct {
	handler     *Handler
	pageHandler *PageHandler
}

// NewModule panics if either handler is nil.
func NewModule(h *Handler, ph *PageHandler) *Module {
	if h == nil {
		panic("contact.NewModule: handler must not be nil")
	}
	if ph == nil {
		panic("contact.NewModule: pageHandler must not be nil")
	}
	return &Module{handler: h, pageHandler: ph}
}

// RegisterRoutes mounts the API under api and the pages under the /:locale group.
func (m *Module) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	api.POST("/contact", m.handler.Submit)

	pages.GET("/contact", m.pageHandler.Form)
	pages.POST("/contact", m.pageHandler.Submit)
}
