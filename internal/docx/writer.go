package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

const (
	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"

	relTypeDoc    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeStyles = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relTypeFooter = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
	relTypeImage  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	ctDocument = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	ctStyles   = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	ctFooter   = "application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"
)

// Bytes renders the package and returns the .docx file contents.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", d.contentTypes()},
		{"_rels/.rels", d.packageRels()},
		{"word/_rels/document.xml.rels", d.documentRels()},
		{"word/styles.xml", d.stylesPart()},
		{"word/document.xml", d.documentPart()},
	}
	if d.footerPt > 0 {
		parts = append(parts, struct {
			name string
			data []byte
		}{"word/footer1.xml", d.footerPart()})
	}
	for i, img := range d.images {
		parts = append(parts, struct {
			name string
			data []byte
		}{fmt.Sprintf("word/media/image%d.png", i+1), img})
	}

	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("docx: create %s: %w", p.name, err)
		}
		if _, err := w.Write(p.data); err != nil {
			return nil, fmt.Errorf("docx: write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx: close package: %w", err)
	}
	return buf.Bytes(), nil
}

func (d *Document) contentTypes() []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Default Extension="png" ContentType="image/png"/>`)
	b.WriteString(`<Override PartName="/word/document.xml" ContentType="` + ctDocument + `"/>`)
	b.WriteString(`<Override PartName="/word/styles.xml" ContentType="` + ctStyles + `"/>`)
	if d.footerPt > 0 {
		b.WriteString(`<Override PartName="/word/footer1.xml" ContentType="` + ctFooter + `"/>`)
	}
	b.WriteString(`</Types>`)
	return []byte(b.String())
}

func (d *Document) packageRels() []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="` + relTypeDoc + `" Target="word/document.xml"/>`)
	b.WriteString(`</Relationships>`)
	return []byte(b.String())
}

func (d *Document) documentRels() []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="` + relTypeStyles + `" Target="styles.xml"/>`)
	if d.footerPt > 0 {
		b.WriteString(`<Relationship Id="rId2" Type="` + relTypeFooter + `" Target="footer1.xml"/>`)
	}
	for i := range d.images {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="media/image%d.png"/>`, imageRelID(i), relTypeImage, i+1)
	}
	b.WriteString(`</Relationships>`)
	return []byte(b.String())
}

// stylesPart defines the three named paragraph styles once per document.
// Title: base+4 bold centered; Heading1: base+2 bold; BodyText: base size with
// the configured line spacing.
func (d *Document) stylesPart() []byte {
	base := d.opts.FontSize
	font := escape(d.opts.FontName)
	// w:line is in 240ths of a line.
	line := int(d.opts.LineSpacing * 240)

	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:styles xmlns:w="` + nsW + `">`)
	fmt.Fprintf(&b, `<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="%s" w:hAnsi="%s"/><w:sz w:val="%d"/></w:rPr></w:rPrDefault></w:docDefaults>`,
		font, font, halfPoints(base))

	fmt.Fprintf(&b, `<w:style w:type="paragraph" w:styleId="%s"><w:name w:val="%s"/><w:pPr><w:jc w:val="center"/></w:pPr><w:rPr><w:b/><w:sz w:val="%d"/></w:rPr></w:style>`,
		StyleTitle, StyleTitle, halfPoints(base+4))
	fmt.Fprintf(&b, `<w:style w:type="paragraph" w:styleId="%s"><w:name w:val="heading 1"/><w:rPr><w:b/><w:sz w:val="%d"/></w:rPr></w:style>`,
		StyleHeading, halfPoints(base+2))
	fmt.Fprintf(&b, `<w:style w:type="paragraph" w:styleId="%s"><w:name w:val="Body Text"/><w:pPr><w:spacing w:line="%d" w:lineRule="auto"/></w:pPr><w:rPr><w:sz w:val="%d"/></w:rPr></w:style>`,
		StyleBody, line, halfPoints(base))

	b.WriteString(`</w:styles>`)
	return []byte(b.String())
}

func (d *Document) documentPart() []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<w:document xmlns:w="%s" xmlns:r="%s"><w:body>`, nsW, nsR)

	for _, p := range d.paragraphs {
		d.writeParagraph(&b, p)
	}

	// Letter page with the configured margins; footer reference only when the
	// page-number footer is enabled.
	b.WriteString(`<w:sectPr>`)
	if d.footerPt > 0 {
		b.WriteString(`<w:footerReference w:type="default" r:id="rId2"/>`)
	}
	b.WriteString(`<w:pgSz w:w="12240" w:h="15840"/>`)
	fmt.Fprintf(&b, `<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d"/>`,
		twips(d.opts.MarginTop), twips(d.opts.MarginRight), twips(d.opts.MarginBottom), twips(d.opts.MarginLeft))
	b.WriteString(`</w:sectPr>`)

	b.WriteString(`</w:body></w:document>`)
	return []byte(b.String())
}

func (d *Document) writeParagraph(b *strings.Builder, p paragraph) {
	b.WriteString(`<w:p>`)
	if p.style != "" || p.center {
		b.WriteString(`<w:pPr>`)
		if p.style != "" {
			fmt.Fprintf(b, `<w:pStyle w:val="%s"/>`, p.style)
		}
		if p.center {
			b.WriteString(`<w:jc w:val="center"/>`)
		}
		b.WriteString(`</w:pPr>`)
	}
	for _, r := range p.runs {
		switch {
		case r.pageBrk:
			b.WriteString(`<w:r><w:br w:type="page"/></w:r>`)
		case r.imageIdx >= 0:
			d.writeImageRun(b, r)
		case r.text != "":
			b.WriteString(`<w:r>`)
			if r.bold {
				b.WriteString(`<w:rPr><w:b/></w:rPr>`)
			}
			fmt.Fprintf(b, `<w:t xml:space="preserve">%s</w:t>`, escape(r.text))
			b.WriteString(`</w:r>`)
		}
	}
	b.WriteString(`</w:p>`)
}

func (d *Document) writeImageRun(b *strings.Builder, r run) {
	id := r.imageIdx + 1
	relID := imageRelID(r.imageIdx)
	fmt.Fprintf(b, `<w:r><w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0" xmlns:wp="%s">`, nsWP)
	fmt.Fprintf(b, `<wp:extent cx="%d" cy="%d"/>`, r.cx, r.cy)
	fmt.Fprintf(b, `<wp:docPr id="%d" name="Picture %d"/>`, id, id)
	fmt.Fprintf(b, `<a:graphic xmlns:a="%s"><a:graphicData uri="%s">`, nsA, nsPic)
	fmt.Fprintf(b, `<pic:pic xmlns:pic="%s">`, nsPic)
	fmt.Fprintf(b, `<pic:nvPicPr><pic:cNvPr id="%d" name="image%d.png"/><pic:cNvPicPr/></pic:nvPicPr>`, id, id)
	fmt.Fprintf(b, `<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`, relID)
	fmt.Fprintf(b, `<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`, r.cx, r.cy)
	b.WriteString(`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`)
}

// footerPart renders a centered paragraph with a live PAGE field.
func (d *Document) footerPart() []byte {
	sz := halfPoints(d.footerPt)
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<w:ftr xmlns:w="%s">`, nsW)
	b.WriteString(`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>`)
	fmt.Fprintf(&b, `<w:r><w:rPr><w:sz w:val="%d"/></w:rPr><w:fldChar w:fldCharType="begin"/></w:r>`, sz)
	fmt.Fprintf(&b, `<w:r><w:rPr><w:sz w:val="%d"/></w:rPr><w:instrText xml:space="preserve"> PAGE </w:instrText></w:r>`, sz)
	fmt.Fprintf(&b, `<w:r><w:rPr><w:sz w:val="%d"/></w:rPr><w:fldChar w:fldCharType="end"/></w:r>`, sz)
	b.WriteString(`</w:p></w:ftr>`)
	return []byte(b.String())
}
