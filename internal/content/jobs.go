package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/mosaic-hrd/website/internal/domain"
	"github.com/mosaic-hrd/website/internal/metrics"
)

// JobApplication is a join-us form submission forwarded to the content API.
type JobApplication struct {
	Name           string
	Email          string
	Phone          string
	Field          string
	AdditionalInfo string
	CVFilename     string
	CV             io.Reader
}

// SubmitJobApplication posts app as multipart form data. Unlike the read
// operations it reports failures, including 2xx bodies whose status is "Error".
func (c *Client) SubmitJobApplication(ctx context.Context, app JobApplication, locale string) error {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	fields := []struct{ name, value string }{
		{"name", strings.TrimSpace(app.Name)},
		{"email", app.Email},
		{"phone", app.Phone},
		{"expertise", app.Field},
		{"bio", app.AdditionalInfo},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return domain.NewAppError(domain.CodeInternal, "encode application", err)
		}
	}
	if app.CV != nil {
		part, err := w.CreateFormFile("cv", app.CVFilename)
		if err != nil {
			return domain.NewAppError(domain.CodeInternal, "encode application", err)
		}
		if _, err := io.Copy(part, app.CV); err != nil {
			return domain.NewAppError(domain.CodeInternal, "encode application", err)
		}
	}
	if err := w.Close(); err != nil {
		return domain.NewAppError(domain.CodeInternal, "encode application", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+jobRequestPath, body)
	if err != nil {
		return domain.NewAppError(domain.CodeInternal, "build application request", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", locale)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.JobApplicationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return domain.NewAppError(domain.CodeUpstream, "content service unavailable", err)
	}
	defer resp.Body.Close()

	var reply struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	decodeErr := json.Unmarshal(raw, &reply)

	if resp.StatusCode < 200 || resp.StatusCode > 299 || strings.EqualFold(reply.Status, "error") {
		metrics.JobApplicationsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		msg := strings.TrimSpace(reply.Message)
		if msg == "" {
			msg = "application rejected"
		}
		return domain.NewAppError(domain.CodeUpstream, msg, &statusError{code: resp.StatusCode})
	}
	if decodeErr != nil {
		metrics.JobApplicationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return domain.NewAppError(domain.CodeUpstream, "unreadable reply from content service", fmt.Errorf("decode reply: %w", decodeErr))
	}

	metrics.JobApplicationsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	return nil
}
