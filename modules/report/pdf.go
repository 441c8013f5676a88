package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/creativity-code/planora/domain/task"
	"github.com/creativity-code/planora/modules/taskstore"
	"github.com/jung-kurt/gofpdf"
)

const pdfTimeLayout = "2006-01-02 15:04"

// PDFRenderer renders reports as PDF documents. Arabic output needs a
// Unicode TTF font on disk (the built-in PDF fonts cover Latin only); when
// no font is configured, Arabic requests fall back to English labels.
type PDFRenderer struct {
	fontPath string
}

// NewPDFRenderer creates a PDFRenderer. fontPath may be empty.
func NewPDFRenderer(fontPath string) *PDFRenderer {
	return &PDFRenderer{fontPath: fontPath}
}

// Render produces a PDF report for the given tasks and date range.
func (r *PDFRenderer) Render(rep taskstore.ReportResponse, startDate, endDate, lang string) ([]byte, error) {
	useUnicode := r.fontPath != ""
	if lang == LangArabic && !useUnicode {
		lang = LangEnglish
	}
	labels := LabelsFor(lang)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	fontName := "Helvetica"
	if useUnicode {
		fontName = "report"
		pdf.AddUTF8Font(fontName, "", r.fontPath)
	}
	text := func(s string) string { return s }
	if !useUnicode {
		translate := pdf.UnicodeTranslatorFromDescriptor("")
		text = translate
	}

	alignment := "L"
	if lang == LangArabic {
		alignment = "R"
	}

	pageWidth, pageHeight := pdf.GetPageSize()
	pdf.SetLineWidth(0.5)
	pdf.Rect(10, 10, pageWidth-20, pageHeight-20, "D")

	pdf.SetFont(fontName, "", 24)
	pdf.CellFormat(0, 12, text(labels.Title), "", 1, alignment, false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(fontName, "", 12)
	pdf.CellFormat(0, 7, text(fmt.Sprintf("%s: %s", labels.From, startDate)), "", 1, alignment, false, 0, "")
	pdf.CellFormat(0, 7, text(fmt.Sprintf("%s: %s", labels.To, endDate)), "", 1, alignment, false, 0, "")
	pdf.Ln(4)

	pdf.CellFormat(0, 7, text(fmt.Sprintf("%s: %d", labels.TotalTasks, rep.Summary.Total)), "", 1, alignment, false, 0, "")
	pdf.CellFormat(0, 7, text(fmt.Sprintf("%s: %d", labels.CompletedTasks, rep.Summary.Completed)), "", 1, alignment, false, 0, "")
	pdf.CellFormat(0, 7, text(fmt.Sprintf("%s: %d", labels.PendingTasks, rep.Summary.Pending)), "", 1, alignment, false, 0, "")
	pdf.Ln(6)

	pdf.SetFont(fontName, "", 18)
	pdf.CellFormat(0, 10, text(labels.TaskDetails), "", 1, alignment, false, 0, "")
	pdf.Ln(2)

	for _, t := range rep.Tasks {
		if pdf.GetY() > pageHeight-45 {
			pdf.AddPage()
		}

		status := labels.Pending
		if t.Status == task.StatusCompleted {
			status = labels.Completed
		}

		pdf.SetFont(fontName, "", 12)
		pdf.CellFormat(0, 7, text(fmt.Sprintf("%s: %s", labels.TaskTitle, t.Title)), "", 1, alignment, false, 0, "")
		pdf.SetFont(fontName, "", 10)
		pdf.CellFormat(0, 6, text(fmt.Sprintf("%s: %s", labels.Description, orNotSpecified(t.Description, labels))), "", 1, alignment, false, 0, "")
		pdf.CellFormat(0, 6, text(fmt.Sprintf("%s: %s", labels.StartTime, formatTime(t.StartTime, labels))), "", 1, alignment, false, 0, "")
		pdf.CellFormat(0, 6, text(fmt.Sprintf("%s: %s", labels.EndTime, formatTime(t.EndTime, labels))), "", 1, alignment, false, 0, "")
		pdf.CellFormat(0, 6, text(fmt.Sprintf("%s: %s", labels.Status, status)), "", 1, alignment, false, 0, "")
		pdf.Ln(3)
	}

	pdf.SetY(pageHeight - 22)
	pdf.SetFont(fontName, "", 10)
	pdf.CellFormat(0, 6, text(labels.Footer), "", 1, alignment, false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func orNotSpecified(s string, labels Labels) string {
	if s == "" {
		return labels.NotSpecified
	}
	return s
}

func formatTime(t *time.Time, labels Labels) string {
	if t == nil {
		return labels.NotSpecified
	}
	return t.Format(pdfTimeLayout)
}
