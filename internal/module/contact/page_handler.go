package contact

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/mosaic-hrd/website/internal/domain"
	"github.com/mosaic-hrd/website/internal/middleware"
	"github.com/mosaic-hrd/website/internal/pkg"
)

const pageTemplate = "pages/contact.html"

// PageHandler renders the contact page and accepts its form.
type PageHandler struct {
	svc domain.ContactService
}

// NewPageHandler creates a PageHandler for svc.
func NewPageHandler(svc domain.ContactService) *PageHandler {
	return &PageHandler{svc: svc}
}

// Form handles GET /:locale/contact. After a successful submission the
// visitor lands here with ?sent=<reference> and sees a confirmation.
func (h *PageHandler) Form(c *gin.Context) {
	data := gin.H{}
	if ref := c.Query("sent"); ref != "" {
		if msg, err := h.svc.Get(c.Request.Context(), ref); err == nil {
			data["Sent"] = msg
		}
	}
	h.render(c, http.StatusOK, data)
}

// Submit handles POST /:locale/contact using post/redirect/get.
func (h *PageHandler) Submit(c *gin.Context) {
	dict := middleware.GetDictionary(c)

	var req SubmitRequest
	if err := c.ShouldBind(&req); err != nil {
		slog.DebugContext(c.Request.Context(), "contact form: bind error", "error", err)
		h.render(c, http.StatusBadRequest, gin.H{
			"Form":   req,
			"Errors": pkg.FieldErrors(err, &req),
			"Error":  dict.T("contact.invalid"),
		})
		return
	}

	locale := middleware.GetLocale(c)
	msg, err := h.svc.Submit(c.Request.Context(), toInput(req, locale))
	if err != nil {
		status, text := http.StatusInternalServerError, dict.T("contact.failed")
		if domain.IsValidation(err) {
			status, text = http.StatusBadRequest, dict.T("contact.invalid")
		} else {
			slog.ErrorContext(c.Request.Context(), "contact form: store failed", "error", err)
		}
		h.render(c, status, gin.H{"Form": req, "Error": text})
		return
	}

	c.Redirect(http.StatusSeeOther, "/"+locale+"/contact?sent="+url.QueryEscape(msg.Reference))
}

func (h *PageHandler) render(c *gin.Context, status int, data gin.H) {
	data["Title"] = middleware.GetDictionary(c).T("contact.title")
	data["Nav"] = "contact"
	c.HTML(status, pageTemplate, middleware.PageData(c, data))
}
