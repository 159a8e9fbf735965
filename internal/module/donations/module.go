package donations

import "github.com/gin-gonic/gin"

// Module mounts the donations page.
type Module struct {
	handler *Handler
}

// NewModule panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("donations.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

func (m *Module) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	api.GET("/donations/accounts", m.handler.Accounts)
	pages.GET("/donations", m.handler.Page)
}
