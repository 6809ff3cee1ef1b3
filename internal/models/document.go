// Package models defines core data structures for extraction results, saved
// documents, and export configuration.
package models

import "time"

// ExtractionItem is one (image, recognized text) pair produced by one model
// call. Image bytes live only in session memory; they are never persisted.
type ExtractionItem struct {
	SourceName string `json:"source_name"`
	Image      []byte `json:"-"`
	MIMEType   string `json:"-"`
	Text       string `json:"text"`
}

// ExtractionSettings is an immutable snapshot of the processing toggles at the
// moment extraction or saving occurs. It is serialized verbatim into saved
// document records and export headers.
type ExtractionSettings struct {
	TargetLanguage      string `json:"target_language"`
	OCRMode             string `json:"ocr_mode"`
	PreserveFormatting  bool   `json:"preserve_formatting"`
	FixGrammar          bool   `json:"fix_grammar"`
	IncludeConfidence   bool   `json:"include_confidence"`
	SeparatePages       bool   `json:"separate_pages"`
	IncludeImagesInDocx bool   `json:"include_images_in_docx"`
}

// SavedDocument is a persisted extraction session. Texts and source names are
// stored; image payloads are not, so re-exports of saved documents cannot
// embed images.
type SavedDocument struct {
	ID        string             `json:"id"`
	OwnerID   string             `json:"owner_id"`
	Name      string             `json:"name"`
	Texts     []string           `json:"texts"`
	Names     []string           `json:"image_names"`
	Settings  ExtractionSettings `json:"settings"`
	CreatedAt time.Time          `json:"created_at"`
}

// Margins holds page margins in inches.
type Margins struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// FormattingConfig holds export-time typographic and layout options. It is
// supplied fresh for each export and never persisted.
type FormattingConfig struct {
	FontName                   string  `json:"font_name"`
	FontSize                   int     `json:"font_size"`
	LineSpacing                float64 `json:"line_spacing"`
	Margins                    Margins `json:"margins"`
	SeparatePages              bool    `json:"separate_pages"`
	IncludeImages              bool    `json:"include_images"`
	PreserveOriginalFormatting bool    `json:"preserve_original_formatting"`
	AddPageNumbers             bool    `json:"add_page_numbers"`
}

// DefaultFormatting returns the baseline export configuration used when the
// caller has not opened the advanced panel.
func DefaultFormatting() FormattingConfig {
	return FormattingConfig{
		FontName:    "Calibri",
		FontSize:    11,
		LineSpacing: 1.15,
		Margins:     Margins{Top: 1, Bottom: 1, Left: 1, Right: 1},
	}
}

// User is a registered account.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
