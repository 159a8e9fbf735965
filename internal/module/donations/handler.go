// Package donations renders the bank transfer details from the site config.
package donations

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mosaic-hrd/website/internal/config"
	"github.com/mosaic-hrd/website/internal/middleware"
	"github.com/mosaic-hrd/website/internal/pkg"
)

const pageTemplate = "pages/donations.html"

// Handler serves the donations page and its account list.
type Handler struct {
	banks []config.BankAccount
}

// NewHandler creates a Handler for banks. A nil list renders an empty page.
func NewHandler(banks []config.BankAccount) *Handler {
	if banks == nil {
		banks = []config.BankAccount{}
	}
	return &Handler{banks: banks}
}

// Page handles GET /:locale/donations.
func (h *Handler) Page(c *gin.Context) {
	c.HTML(http.StatusOK, pageTemplate, middleware.PageData(c, gin.H{
		"Title": middleware.GetDictionary(c).T("donations.title"),
		"Nav":   "donations",
		"Banks": h.banks,
	}))
}

// Accounts handles GET /api/v1/donations/accounts.
func (h *Handler) Accounts(c *gin.Context) {
	pkg.Success(c, h.banks)
}
