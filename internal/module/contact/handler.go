package contact

import (
	"github.com/gin-gonic/gin"

	"github.com/mosaic-hrd/website/internal/domain"
	"github.com/mosaic-hrd/website/internal/middleware"
	"github.com/mosaic-hrd/website/internal/pkg"
)

// Handler serves the contact JSON API.
type Handler struct {
	svc domain.ContactService
}

// NewHandler creates a Handler for svc.
func NewHandler(svc domain.ContactService) *Handler {
	return &Handler{svc: svc}
}

// Submit handles POST /api/v1/contact. The message locale is the one
// negotiated from Accept-Language.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	msg, err := h.svc.Submit(c.Request.Context(), toInput(req, middleware.GetLocale(c)))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, SubmitResponse{Reference: msg.Reference})
}

func toInput(req SubmitRequest, locale string) domain.ContactInput {
	return domain.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
		Locale:  locale,
	}
}
