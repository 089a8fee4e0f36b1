// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/lexanalytica/backend/internal/models"
)

// AnalyzeHandler handles document analysis requests
type AnalyzeHandler interface {
	HandleAnalyzePDF(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// Analyzer runs the extraction and model pipeline.
// This allows mocking in tests
type Analyzer interface {
	Handle(ctx context.Context, files []models.UploadedFile) (*models.AnalysisResult, error)
}
