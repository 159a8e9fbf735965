package joinus

import (
	"context"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mosaic-hrd/website/internal/content"
	"github.com/mosaic-hrd/website/internal/domain"
	"github.com/mosaic-hrd/website/internal/middleware"
	"github.com/mosaic-hrd/website/internal/pkg"
)

const (
	pageTemplate = "pages/joinus.html"

	// MaxCVBytes is the largest CV accepted.
	MaxCVBytes = 5 << 20
	// maxBodyBytes leaves room for the text fields around a full-size CV.
	maxBodyBytes = MaxCVBytes + 1<<20
)

var cvExtensions = map[string]bool{".pdf": true, ".doc": true, ".docx": true}

// Submitter forwards an application. *content.Client implements it.
type Submitter interface {
	SubmitJobApplication(ctx context.Context, app content.JobApplication, locale string) error
}

// Handler renders the join-us page and accepts its form.
type Handler struct {
	submitter Submitter
}

// NewHandler creates a Handler forwarding to s.
func NewHandler(s Submitter) *Handler {
	return &Handler{submitter: s}
}

// Form handles GET /:locale/joinus.
func (h *Handler) Form(c *gin.Context) {
	h.render(c, http.StatusOK, gin.H{"Sent": c.Query("sent") != ""})
}

// Submit handles POST /:locale/joinus.
func (h *Handler) Submit(c *gin.Context) {
	dict := middleware.GetDictionary(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var req ApplicationRequest
	bindErr := c.ShouldBind(&req)
	errs := pkg.FieldErrors(bindErr, &req)
	if bindErr != nil && errs == nil {
		slog.DebugContext(c.Request.Context(), "joinus form: bind error", "error", bindErr)
		h.render(c, http.StatusBadRequest, gin.H{"Form": req, "Error": dict.T("joinus.invalid")})
		return
	}
	if errs == nil {
		errs = map[string]string{}
	}

	file, cvKey := checkCV(c)
	if cvKey != "" {
		errs["cv"] = cvKey
	}
	if len(errs) > 0 {
		h.render(c, http.StatusBadRequest, gin.H{"Form": req, "Errors": errs, "Error": dict.T("joinus.invalid")})
		return
	}

	cv, err := file.Open()
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "joinus form: open cv", "error", err)
		h.render(c, http.StatusInternalServerError, gin.H{"Form": req, "Error": dict.T("joinus.failed")})
		return
	}
	defer cv.Close()

	locale := middleware.GetLocale(c)
	err = h.submitter.SubmitJobApplication(c.Request.Context(), content.JobApplication{
		Name:           req.Name,
		Email:          strings.TrimSpace(req.Email),
		Phone:          req.Phone,
		Field:          req.Field,
		AdditionalInfo: req.AdditionalInfo,
		CVFilename:     filepath.Base(file.Filename),
		CV:             cv,
	}, locale)
	if err != nil {
		slog.WarnContext(c.Request.Context(), "joinus form: forward failed", "error", err)
		h.render(c, domain.HTTPStatusCode(err), gin.H{"Form": req, "Error": dict.T("joinus.failed")})
		return
	}

	c.Redirect(http.StatusSeeOther, "/"+locale+"/joinus?sent=1")
}

// checkCV returns the uploaded CV, or the dictionary key explaining the
// refusal. The key doubles as the "cv" entry of the form errors.
func checkCV(c *gin.Context) (*multipart.FileHeader, string) {
	file, err := c.FormFile("cv")
	if err != nil {
		return nil, "joinus.missing_cv"
	}
	if !cvExtensions[strings.ToLower(filepath.Ext(file.Filename))] {
		return nil, "joinus.invalid_cv_type"
	}
	if file.Size > MaxCVBytes {
		return nil, "joinus.invalid_cv_size"
	}
	return file, ""
}

func (h *Handler) render(c *gin.Context, status int, data gin.H) {
	data["Title"] = middleware.GetDictionary(c).T("joinus.title")
	data["Nav"] = "joinus"
	data["MaxCVBytes"] = MaxCVBytes
	c.HTML(status, pageTemplate, middleware.PageData(c, data))
}
