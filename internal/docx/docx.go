// Package docx assembles a minimal WordprocessingML package. DOCX is a ZIP of
// XML parts; we write the parts directly rather than depending on a full
// office suite library, mirroring how the rest of this codebase reads OOXML.
package docx

import (
	"fmt"
	"strings"
)

// Style identifiers for the three paragraph styles every document defines.
const (
	StyleTitle   = "Title"
	StyleHeading = "Heading1"
	StyleBody    = "BodyText"
)

// Layout units.
const (
	twipsPerInch = 1440
	emuPerInch   = 914400
)

// Options holds document-wide typography and page geometry.
type Options struct {
	FontName    string
	FontSize    int     // points; Title renders at +4, Heading at +2
	LineSpacing float64 // 1.0 = single
	// Margins in inches.
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64
}

type run struct {
	text     string
	bold     bool
	pageBrk  bool
	imageIdx int // index into Document.images, -1 for none
	cx, cy   int64
}

type paragraph struct {
	style  string
	center bool
	runs   []run
}

// Document accumulates content and renders the package with Bytes.
type Document struct {
	opts       Options
	paragraphs []paragraph
	images     [][]byte
	footerPt   int // page-number footer font size; 0 disables the footer
}

// New creates an empty document. Zero-value options fall back to
// Calibri/11pt/single spacing/1in margins.
func New(opts Options) *Document {
	if opts.FontName == "" {
		opts.FontName = "Calibri"
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 11
	}
	if opts.LineSpacing <= 0 {
		opts.LineSpacing = 1.0
	}
	if opts.MarginTop <= 0 {
		opts.MarginTop = 1
	}
	if opts.MarginBottom <= 0 {
		opts.MarginBottom = 1
	}
	if opts.MarginLeft <= 0 {
		opts.MarginLeft = 1
	}
	if opts.MarginRight <= 0 {
		opts.MarginRight = 1
	}
	return &Document{opts: opts}
}

// AddParagraph appends one paragraph of plain text in the given style.
func (d *Document) AddParagraph(style, text string) {
	d.paragraphs = append(d.paragraphs, paragraph{
		style: style,
		runs:  []run{{text: text, imageIdx: -1}},
	})
}

// AddBoldParagraph appends a Body paragraph whose single run is bold.
func (d *Document) AddBoldParagraph(text string) {
	d.paragraphs = append(d.paragraphs, paragraph{
		style: StyleBody,
		runs:  []run{{text: text, bold: true, imageIdx: -1}},
	})
}

// AddEmptyParagraph appends a blank Body paragraph.
func (d *Document) AddEmptyParagraph() {
	d.paragraphs = append(d.paragraphs, paragraph{style: StyleBody})
}

// AddPageBreak appends a paragraph containing a hard page break.
func (d *Document) AddPageBreak() {
	d.paragraphs = append(d.paragraphs, paragraph{
		style: StyleBody,
		runs:  []run{{pageBrk: true, imageIdx: -1}},
	})
}

// AddImage embeds PNG data as a centered inline picture with the given
// display size in inches.
func (d *Document) AddImage(png []byte, widthIn, heightIn float64) {
	idx := len(d.images)
	d.images = append(d.images, png)
	d.paragraphs = append(d.paragraphs, paragraph{
		style:  StyleBody,
		center: true,
		runs: []run{{
			imageIdx: idx,
			cx:       int64(widthIn * emuPerInch),
			cy:       int64(heightIn * emuPerInch),
		}},
	})
}

// EnablePageNumberFooter adds a centered footer whose PAGE field the consuming
// word processor evaluates at render time.
func (d *Document) EnablePageNumberFooter(sizePt int) {
	if sizePt <= 0 {
		sizePt = d.opts.FontSize
	}
	d.footerPt = sizePt
}

// escape replaces the five XML special characters in text content.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escape(s string) string {
	return escaper.Replace(s)
}

// halfPoints converts a point size to the sz attribute value.
func halfPoints(pt int) int {
	return pt * 2
}

func twips(inches float64) int {
	return int(inches * twipsPerInch)
}

func imageRelID(idx int) string {
	return fmt.Sprintf("rIdImage%d", idx+1)
}
