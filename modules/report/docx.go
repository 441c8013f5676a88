package report

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/creativity-code/planora/domain/task"
	"github.com/creativity-code/planora/modules/taskstore"
)

// DOCXRenderer renders reports as WordprocessingML documents. The package
// is assembled by hand: a report is a flat list of styled paragraphs, which
// needs only a fraction of the OOXML spec.
type DOCXRenderer struct{}

// NewDOCXRenderer creates a DOCXRenderer.
func NewDOCXRenderer() *DOCXRenderer {
	return &DOCXRenderer{}
}

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// paragraph is one line of the document with minimal run formatting.
type paragraph struct {
	text     string
	bold     bool
	halfSize int // font size in half-points, zero for default
	rtl      bool
}

// Render produces a DOCX report for the given tasks and date range.
func (r *DOCXRenderer) Render(rep taskstore.ReportResponse, startDate, endDate, lang string) ([]byte, error) {
	labels := LabelsFor(lang)
	rtl := lang == LangArabic

	paras := []paragraph{
		{text: labels.Title, bold: true, halfSize: 48, rtl: rtl},
		{text: fmt.Sprintf("%s: %s", labels.From, startDate), rtl: rtl},
		{text: fmt.Sprintf("%s: %s", labels.To, endDate), rtl: rtl},
		{},
		{text: fmt.Sprintf("%s: %d", labels.TotalTasks, rep.Summary.Total), rtl: rtl},
		{text: fmt.Sprintf("%s: %d", labels.CompletedTasks, rep.Summary.Completed), rtl: rtl},
		{text: fmt.Sprintf("%s: %d", labels.PendingTasks, rep.Summary.Pending), rtl: rtl},
		{},
		{text: labels.TaskDetails, bold: true, halfSize: 32, rtl: rtl},
	}

	for _, t := range rep.Tasks {
		status := labels.Pending
		if t.Status == task.StatusCompleted {
			status = labels.Completed
		}
		paras = append(paras,
			paragraph{text: fmt.Sprintf("%s: %s", labels.TaskTitle, t.Title), bold: true, rtl: rtl},
			paragraph{text: fmt.Sprintf("%s: %s", labels.Description, orNotSpecified(t.Description, labels)), rtl: rtl},
			paragraph{text: fmt.Sprintf("%s: %s", labels.StartTime, formatTime(t.StartTime, labels)), rtl: rtl},
			paragraph{text: fmt.Sprintf("%s: %s", labels.EndTime, formatTime(t.EndTime, labels)), rtl: rtl},
			paragraph{text: fmt.Sprintf("%s: %s", labels.Status, status), rtl: rtl},
			paragraph{},
		)
	}

	paras = append(paras, paragraph{text: labels.Footer, rtl: rtl})

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	files := []struct {
		name    string
		content []byte
	}{
		{"[Content_Types].xml", []byte(docxContentTypes)},
		{"_rels/.rels", []byte(docxRels)},
		{"word/document.xml", buildDocumentXML(paras)},
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", f.name, err)
		}
		if _, err := w.Write(f.content); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize docx: %w", err)
	}
	return buf.Bytes(), nil
}

func buildDocumentXML(paras []paragraph) []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	for _, p := range paras {
		b.WriteString("<w:p>")
		if p.rtl {
			b.WriteString(`<w:pPr><w:bidi/><w:jc w:val="right"/></w:pPr>`)
		}
		if p.text != "" {
			b.WriteString("<w:r>")
			if p.bold || p.halfSize > 0 || p.rtl {
				b.WriteString("<w:rPr>")
				if p.bold {
					b.WriteString("<w:b/>")
				}
				if p.halfSize > 0 {
					fmt.Fprintf(&b, `<w:sz w:val="%d"/>`, p.halfSize)
				}
				if p.rtl {
					b.WriteString("<w:rtl/>")
				}
				b.WriteString("</w:rPr>")
			}
			b.WriteString(`<w:t xml:space="preserve">`)
			xml.EscapeText(&b, []byte(p.text))
			b.WriteString("</w:t></w:r>")
		}
		b.WriteString("</w:p>")
	}

	// 1440 twips = one inch margins, matching the desktop app's export.
	b.WriteString(`<w:sectPr><w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440"/></w:sectPr>`)
	b.WriteString("</w:body></w:document>")
	return b.Bytes()
}
