package pipeline

import (
	"strings"

	"github.com/lexanalytica/backend/internal/models"
)

// DocumentMarker returns the separator line written ahead of each document.
func DocumentMarker(filename string) string {
	return "\n\n--- DOCUMENT: " + filename + " ---\n\n"
}

// AssembleText concatenates documents in order, each prefixed by its marker.
func AssembleText(docs []models.DocumentText) string {
	var sb strings.Builder
	for _, d := range docs {
		sb.WriteString(DocumentMarker(d.Filename))
		sb.WriteString(d.Text)
	}
	return sb.String()
}
