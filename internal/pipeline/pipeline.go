// Package pipeline turns uploaded documents into one model-generated report:
// extract text, assemble the prompt, invoke the model, relay the answer.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lexanalytica/backend/internal/extract"
	"github.com/lexanalytica/backend/internal/llm"
	"github.com/lexanalytica/backend/internal/models"
	"github.com/lexanalytica/backend/internal/prompt"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Limits bound a single request. Zero disables a check.
type Limits struct {
	MaxFiles     int
	MaxFileBytes int64
	MaxTextChars int
}

// Options configure a Pipeline.
type Options struct {
	Limits       Limits
	ModelTimeout time.Duration
	// MaxConcurrent caps simultaneous model calls across requests; zero means unlimited.
	MaxConcurrent int64
}

// Pipeline is safe for concurrent use; all fields are read-only after New.
type Pipeline struct {
	extractor extract.Extractor
	generator llm.Generator
	template  *prompt.Template
	limits    Limits
	timeout   time.Duration
	sem       *semaphore.Weighted
	logger    *zap.Logger
}

// New creates a Pipeline.
func New(extractor extract.Extractor, generator llm.Generator, template *prompt.Template, opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		extractor: extractor,
		generator: generator,
		template:  template,
		limits:    opts.Limits,
		timeout:   opts.ModelTimeout,
		logger:    logger,
	}
	if opts.MaxConcurrent > 0 {
		p.sem = semaphore.NewWeighted(opts.MaxConcurrent)
	}
	return p
}

// Handle runs the pipeline over files in order. It returns an
// *ExtractionError, *PayloadTooLargeError, *ModelError or ErrNoFiles on failure.
func (p *Pipeline) Handle(ctx context.Context, files []models.UploadedFile) (*models.AnalysisResult, error) {
	start := time.Now()

	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if p.limits.MaxFiles > 0 && len(files) > p.limits.MaxFiles {
		return nil, &PayloadTooLargeError{
			Reason: fmt.Sprintf("%d files exceeds the limit of %d", len(files), p.limits.MaxFiles),
		}
	}

	docs, err := p.extractAll(files)
	if err != nil {
		p.logger.Warn("document rejected", zap.Error(err))
		return nil, err
	}

	buffer := AssembleText(docs)
	chars := utf8.RuneCountInString(buffer)
	if p.limits.MaxTextChars > 0 && chars > p.limits.MaxTextChars {
		return nil, &PayloadTooLargeError{
			Reason: fmt.Sprintf("extracted text has %d characters, limit is %d", chars, p.limits.MaxTextChars),
		}
	}

	analysis, err := p.invoke(ctx, p.template.Build(buffer))
	if err != nil {
		p.logger.Warn("model invocation failed",
			zap.String("model", p.generator.Model()),
			zap.Int("documents", len(docs)),
			zap.Error(err),
		)
		return nil, err
	}

	result := &models.AnalysisResult{
		Analysis:      analysis,
		Model:         p.generator.Model(),
		PromptVersion: p.template.Version,
		Documents:     len(docs),
		TextChars:     chars,
		Duration:      time.Since(start),
	}
	p.logger.Info("analysis complete",
		zap.String("model", result.Model),
		zap.String("promptVersion", result.PromptVersion),
		zap.Int("documents", result.Documents),
		zap.Int("textChars", result.TextChars),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// extractAll stops at the first failing document; nothing extracted before it is kept.
func (p *Pipeline) extractAll(files []models.UploadedFile) ([]models.DocumentText, error) {
	docs := make([]models.DocumentText, 0, len(files))
	for _, f := range files {
		if p.limits.MaxFileBytes > 0 && int64(len(f.Data)) > p.limits.MaxFileBytes {
			return nil, &PayloadTooLargeError{
				Reason: fmt.Sprintf("file %s is %d bytes, limit is %d", f.Filename, len(f.Data), p.limits.MaxFileBytes),
			}
		}

		text, err := p.extractor.Extract(f.Data)
		if err != nil {
			return nil, &ExtractionError{Filename: f.Filename, Err: err}
		}
		docs = append(docs, models.DocumentText{Filename: f.Filename, Text: text})
	}
	return docs, nil
}

// invoke calls the model once; there is no retry. The answer is returned with
// surrounding whitespace removed.
func (p *Pipeline) invoke(ctx context.Context, fullPrompt string) (string, error) {
	if p.sem != nil {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return "", &ModelError{Err: fmt.Errorf("waiting for model capacity: %w", err)}
		}
		defer p.sem.Release(1)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	text, err := p.generator.Generate(ctx, fullPrompt)
	if err != nil {
		return "", &ModelError{Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ModelError{Err: llm.ErrEmptyResponse}
	}
	return text, nil
}
