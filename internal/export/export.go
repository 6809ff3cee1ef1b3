// Package export turns accumulated extraction items into downloadable
// artifacts: DOCX, plain text, or XLSX.
package export

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/hyperjump/yomitori/internal/docx"
	"github.com/hyperjump/yomitori/internal/models"
	"go.uber.org/zap"
)

// title is the first line of every export header.
const title = "Yomitori Text Extraction"

// headingRuleMaxLen bounds the all-caps heading heuristic.
const headingRuleMaxLen = 100

// imageDisplayWidthIn is the fixed display width for embedded images.
const imageDisplayWidthIn = 4.0

// Assembler builds export artifacts.
type Assembler struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewAssembler creates an assembler. The clock is injectable for tests.
func NewAssembler(logger *zap.Logger) *Assembler {
	return &Assembler{logger: logger, now: time.Now}
}

// PairItems rebuilds extraction items from the parallel text and source-name
// arrays of a saved document. It fails fast when the arrays are misaligned.
func PairItems(texts, names []string) ([]models.ExtractionItem, error) {
	if len(texts) != len(names) {
		return nil, fmt.Errorf("export: %d texts but %d source names", len(texts), len(names))
	}
	items := make([]models.ExtractionItem, len(texts))
	for i := range texts {
		items[i] = models.ExtractionItem{SourceName: names[i], Text: texts[i]}
	}
	return items, nil
}

// AssembleDocx builds the word-processing document.
func (a *Assembler) AssembleDocx(name string, items []models.ExtractionItem, settings models.ExtractionSettings, formatting models.FormattingConfig) ([]byte, error) {
	doc := docx.New(docx.Options{
		FontName:     formatting.FontName,
		FontSize:     formatting.FontSize,
		LineSpacing:  formatting.LineSpacing,
		MarginTop:    formatting.Margins.Top,
		MarginBottom: formatting.Margins.Bottom,
		MarginLeft:   formatting.Margins.Left,
		MarginRight:  formatting.Margins.Right,
	})

	doc.AddParagraph(docx.StyleTitle, title)
	doc.AddParagraph(docx.StyleBody, "Document: "+name)
	doc.AddParagraph(docx.StyleBody, "Generated: "+a.now().Format("2006-01-02 15:04:05"))
	doc.AddParagraph(docx.StyleBody, "Language: "+settings.TargetLanguage)
	doc.AddParagraph(docx.StyleBody, "OCR Mode: "+settings.OCRMode)

	for i, item := range items {
		if formatting.SeparatePages && i > 0 {
			doc.AddPageBreak()
		}
		doc.AddParagraph(docx.StyleHeading, fmt.Sprintf("Image %d: %s", i+1, item.SourceName))

		if formatting.IncludeImages && len(item.Image) > 0 {
			a.embedImage(doc, item)
		}

		if formatting.PreserveOriginalFormatting {
			for _, line := range strings.Split(item.Text, "\n") {
				a.addFormattedLine(doc, line)
			}
		} else {
			doc.AddParagraph(docx.StyleBody, item.Text)
		}
	}

	if formatting.AddPageNumbers {
		// Footer injection failure would degrade the export, not abort it;
		// numbering is cosmetic.
		doc.EnablePageNumberFooter(formatting.FontSize - 2)
	}

	return doc.Bytes()
}

// embedImage re-encodes the source image as PNG at a fixed 4-inch display
// width. Any decode or encode failure degrades to a bracketed placeholder
// line instead of failing the export.
func (a *Assembler) embedImage(doc *docx.Document, item models.ExtractionItem) {
	png, w, h, err := encodePNG(item.Image)
	if err != nil {
		a.logger.Warn("image embedding failed", zap.String("file", item.SourceName), zap.Error(err))
		doc.AddParagraph(docx.StyleBody, fmt.Sprintf("[Image: %s could not be embedded]", item.SourceName))
		return
	}
	displayH := imageDisplayWidthIn * float64(h) / float64(w)
	doc.AddImage(png, imageDisplayWidthIn, displayH)
	doc.AddEmptyParagraph()
}

// addFormattedLine applies the per-line heuristics used when the caller asks
// to preserve the original formatting.
func (a *Assembler) addFormattedLine(doc *docx.Document, line string) {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		doc.AddEmptyParagraph()
	case isUpperHeading(trimmed):
		doc.AddBoldParagraph(trimmed)
	case line != trimmed && (line[0] == ' ' || line[0] == '\t'):
		doc.AddParagraph(docx.StyleBody, line)
	default:
		doc.AddParagraph(docx.StyleBody, trimmed)
	}
}

// isUpperHeading reports whether a trimmed line looks like a heading: entirely
// upper-case, contains at least one letter, and under 100 characters.
func isUpperHeading(trimmed string) bool {
	if len(trimmed) >= headingRuleMaxLen {
		return false
	}
	hasLetter := false
	for _, r := range trimmed {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// AssembleText builds the plain-text artifact.
func (a *Assembler) AssembleText(name string, items []models.ExtractionItem, settings models.ExtractionSettings) string {
	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString("Document: " + name + "\n")
	b.WriteString("Generated: " + a.now().Format("2006-01-02 15:04:05") + "\n")
	b.WriteString("Language: " + settings.TargetLanguage + "\n")
	b.WriteString("OCR Mode: " + settings.OCRMode + "\n")
	b.WriteString(strings.Repeat("-", 60) + "\n\n")
	for i, item := range items {
		fmt.Fprintf(&b, "Image %d: %s\n", i+1, item.SourceName)
		b.WriteString(item.Text + "\n\n")
	}
	return b.String()
}
