// Package extract orchestrates per-image calls to the vision model and
// accumulates normalized extraction results.
package extract

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/hyperjump/yomitori/internal/models"
	"github.com/hyperjump/yomitori/internal/normalize"
	"github.com/hyperjump/yomitori/internal/vision"
	"go.uber.org/zap"
)

// File is one uploaded source: raw bytes plus the client-supplied name and
// content type.
type File struct {
	Name     string
	Data     []byte
	MIMEType string
}

// Skip records a per-file soft failure: the file produced no text but did not
// abort the batch.
type Skip struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Extractor runs files through the vision model strictly in sequence.
type Extractor struct {
	model  vision.Model
	logger *zap.Logger
}

// NewExtractor creates an extractor bound to one model client.
func NewExtractor(model vision.Model, logger *zap.Logger) *Extractor {
	return &Extractor{model: model, logger: logger}
}

// ExtractAll processes files in order with batch-fatal semantics: a model
// error aborts the remaining files and is returned alongside whatever items
// were accumulated before the failure. Empty responses are soft skips, not
// errors.
func (e *Extractor) ExtractAll(ctx context.Context, files []File, prompt string) ([]models.ExtractionItem, []Skip, error) {
	var items []models.ExtractionItem
	var skips []Skip
	for _, f := range files {
		item, err := e.extract(ctx, f, prompt)
		if err != nil {
			return items, skips, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		if item == nil {
			e.logger.Info("no text detected", zap.String("file", f.Name))
			skips = append(skips, Skip{Name: f.Name, Reason: "no text detected"})
			continue
		}
		e.logger.Info("text extracted", zap.String("file", f.Name), zap.Int("chars", len(item.Text)))
		items = append(items, *item)
	}
	return items, skips, nil
}

// ExtractOne processes a single file. A nil item with nil error means the
// model detected no text.
func (e *Extractor) ExtractOne(ctx context.Context, f File, prompt string) (*models.ExtractionItem, error) {
	return e.extract(ctx, f, prompt)
}

func (e *Extractor) extract(ctx context.Context, f File, prompt string) (*models.ExtractionItem, error) {
	var raw string
	if isPDF(f) {
		// Born-digital PDFs carry their own text layer; read it locally
		// instead of burning a model call.
		text, err := pdfText(f.Data)
		if err != nil {
			return nil, err
		}
		raw = text
	} else {
		text, err := e.model.Generate(ctx, prompt, f.Data, mimeType(f))
		if err != nil {
			return nil, err
		}
		raw = text
	}

	text := normalize.Normalize(strings.TrimSpace(raw))
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return &models.ExtractionItem{
		SourceName: f.Name,
		Image:      f.Data,
		MIMEType:   f.MIMEType,
		Text:       text,
	}, nil
}

// mimeType falls back to the filename extension when the client did not send
// a content type, as CLI callers do not.
func mimeType(f File) string {
	if f.MIMEType != "" {
		return f.MIMEType
	}
	if t := mime.TypeByExtension(filepath.Ext(f.Name)); t != "" {
		return t
	}
	return "image/png"
}

func isPDF(f File) bool {
	if f.MIMEType == "application/pdf" {
		return true
	}
	return strings.EqualFold(filepath.Ext(f.Name), ".pdf")
}
