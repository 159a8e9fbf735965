package joinus

import "github.com/gin-gonic/gin"

// Module mounts the join-us form.
type Module struct {
	handler *Handler
}

// NewModule panics if h is nil or the form rules cannot be registered.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("joinus.NewModule: handler must not be nil")
	}
	if err := RegisterValidations(); err != nil {
		panic("joinus.NewModule: " + err.Error())
	}
	return &Module{handler: h}
}

// RegisterRoutes mounts the form under pages.
func (m *Module) RegisterRoutes(_ *gin.RouterGroup, pages *gin.RouterGroup) {
	pages.GET("/joinus", m.handler.Form)
	pages.POST("/joinus", m.handler.Submit)
}
