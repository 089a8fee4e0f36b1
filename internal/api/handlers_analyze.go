// handlers_analyze.go - Document analysis handlers
package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/lexanalytica/backend/internal/models"
	"github.com/lexanalytica/backend/internal/report"
)

// Multipart field names accepted for uploaded documents. A request uses one of them.
var uploadFields = []string{"files", "file"}

// AnalyzeHandlerImpl implements the AnalyzeHandler interface
type AnalyzeHandlerImpl struct {
	analyzer Analyzer
}

// NewAnalyzeHandler creates a new analyze handler instance
func NewAnalyzeHandler(analyzer Analyzer) AnalyzeHandler {
	return &AnalyzeHandlerImpl{analyzer: analyzer}
}

// HandleAnalyzePDF accepts one or more PDFs (multipart/form-data) and returns
// the generated analysis.
func (h *AnalyzeHandlerImpl) HandleAnalyzePDF(c echo.Context) error {
	var opts analyzeOptions
	if err := opts.bind(c); err != nil {
		return err
	}

	files, err := readUploadedFiles(c)
	if err != nil {
		return err
	}

	result, err := h.analyzer.Handle(c.Request().Context(), files)
	if err != nil {
		return err
	}

	resp := models.AnalysisResponse{Analysis: result.Analysis}
	if opts.Structured {
		summary := report.Parse(result.Analysis)
		resp.Timeline = summary.Timeline
		resp.Score = summary.Score
		resp.Justification = summary.Justification
	}
	if opts.HTML {
		html, err := report.RenderHTML(result.Analysis)
		if err != nil {
			return NewInternalError("failed to render analysis", err)
		}
		resp.HTML = html
	}

	return respond(c, http.StatusOK, resp)
}

// analyzeOptions selects the optional views added to the response.
type analyzeOptions struct {
	Structured bool
	HTML       bool
}

func (o *analyzeOptions) bind(c echo.Context) error {
	if raw := c.QueryParam("structured"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return NewBadRequestError("structured must be a boolean", err)
		}
		o.Structured = v
	}

	switch format := strings.ToLower(c.QueryParam("format")); format {
	case "", "markdown":
	case "html":
		o.HTML = true
	default:
		return NewBadRequestError(fmt.Sprintf("unsupported format: %s", format), nil)
	}
	return nil
}

// readUploadedFiles reads every uploaded part fully, preserving upload order.
func readUploadedFiles(c echo.Context) ([]models.UploadedFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, NewBadRequestError("expected a multipart/form-data upload", err)
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, NewPayloadTooLargeError(fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
		}
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return nil, httpErr
		}
		return nil, NewBadRequestError("invalid multipart form", err)
	}
	defer form.RemoveAll()

	var (
		headers []*multipart.FileHeader
		used    string
	)
	for _, field := range uploadFields {
		fh := form.File[field]
		if len(fh) == 0 {
			continue
		}
		// parts under different fields lose their relative order
		if used != "" {
			return nil, NewBadRequestError(fmt.Sprintf("upload documents under a single field, got both %q and %q", used, field), nil)
		}
		headers, used = fh, field
	}
	if len(headers) == 0 {
		return nil, NewNoFilesError()
	}

	files := make([]models.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		data, err := readFormFile(fh)
		if err != nil {
			return nil, NewBadRequestError(fmt.Sprintf("failed to read uploaded file %s", fh.Filename), err)
		}
		files = append(files, models.UploadedFile{Filename: fh.Filename, Data: data})
	}
	return files, nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}
