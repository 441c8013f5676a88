package report

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/creativity-code/planora/modules/taskstore"
)

func sampleReport() taskstore.ReportResponse {
	start := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 10, 11, 0, 0, 0, time.UTC)
	return taskstore.ReportResponse{
		Tasks: []taskstore.TaskResponse{
			{
				ID:          1,
				UserID:      7,
				Title:       "Write quarterly summary",
				Description: "Numbers & charts",
				DueDate:     "2025-01-10",
				Status:      "completed",
				StartTime:   &start,
				EndTime:     &end,
			},
			{
				ID:      2,
				UserID:  7,
				Title:   "Review pull requests",
				DueDate: "2025-01-12",
				Status:  "pending",
			},
		},
		Summary: taskstore.SummaryResponse{Total: 2, Completed: 1, Pending: 1},
	}
}

func TestPDFRenderer_Render(t *testing.T) {
	renderer := NewPDFRenderer("")

	data, err := renderer.Render(sampleReport(), "2025-01-01", "2025-01-31", LangEnglish)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Render() returned empty document")
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("Render() output does not start with a PDF header")
	}
}

func TestPDFRenderer_ArabicFallsBackWithoutFont(t *testing.T) {
	renderer := NewPDFRenderer("")

	// Without a Unicode font the renderer must not emit Arabic glyphs the
	// built-in fonts cannot encode.
	data, err := renderer.Render(sampleReport(), "2025-01-01", "2025-01-31", LangArabic)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Render() returned empty document")
	}
}

func TestDOCXRenderer_Render(t *testing.T) {
	renderer := NewDOCXRenderer()

	data, err := renderer.Render(sampleReport(), "2025-01-01", "2025-01-31", LangEnglish)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	doc := readDocumentXML(t, data)

	for _, want := range []string{
		"Planora Reports",
		"Total Tasks: 2",
		"Completed Tasks: 1",
		"Pending Tasks: 1",
		"Write quarterly summary",
		"Numbers &amp; charts", // XML escaping applied
		"Review pull requests",
		"Status: Pending",
		"© Creativity Code 2025",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document.xml missing %q", want)
		}
	}
}

func TestDOCXRenderer_ArabicLabels(t *testing.T) {
	renderer := NewDOCXRenderer()

	data, err := renderer.Render(sampleReport(), "2025-01-01", "2025-01-31", LangArabic)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	doc := readDocumentXML(t, data)

	if !strings.Contains(doc, LabelsFor(LangArabic).TotalTasks) {
		t.Error("document.xml missing Arabic total-tasks label")
	}
	if !strings.Contains(doc, "<w:bidi/>") {
		t.Error("document.xml missing right-to-left paragraph property")
	}
}

func TestLabelsFor_UnknownLanguage(t *testing.T) {
	if got := LabelsFor("fr"); got.Title != labelTable[LangEnglish].Title {
		t.Errorf("LabelsFor(fr) = %q, want English fallback", got.Title)
	}
}

// readDocumentXML unzips a rendered docx and returns word/document.xml.
func readDocumentXML(t *testing.T, data []byte) string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("rendered docx is not a zip archive: %v", err)
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open document.xml: %v", err)
		}
		defer rc.Close()
		content, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("failed to read document.xml: %v", err)
		}
		return string(content)
	}

	t.Fatal("rendered docx has no word/document.xml")
	return ""
}
