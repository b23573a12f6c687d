// Package extractor turns a source file into the single text blob and
// page count the ingestion pipeline consumes. Pagination is only real
// for PDFs; sheet- and slide-based formats count sheets and slides as
// pages, everything else is one page.
package extractor

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"document-chat/internal/models"
)

// Result is the extraction collaborator's output.
type Result struct {
	Text      string
	PageCount int
	Title     string
}

// Extract reads the file at path and returns its text content. An
// unreadable or unsupported source fails with ErrExtractionFailed; the
// caller must not start ingestion in that case.
func Extract(path string) (*Result, error) {
	var (
		text  string
		pages int
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, pages, err = extractPDF(path)
	case ".docx":
		text, pages, err = extractDOCX(path)
	case ".pptx":
		text, pages, err = extractPPTX(path)
	case ".xlsx":
		text, pages, err = extractXLSX(path)
	case ".ods":
		text, pages, err = extractODS(path)
	case ".md", ".markdown":
		text, pages, err = extractMarkdown(path)
	case ".txt":
		text, pages, err = extractText(path)
	default:
		err = fmt.Errorf("unsupported file format: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrExtractionFailed, path, err)
	}
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &Result{Text: text, PageCount: pages, Title: title}, nil
}

func extractPDF(path string) (string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", 0, err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return "", 0, err
	}

	var text strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		pageText, err := reader.Page(i).GetPlainText(nil)
		if err != nil {
			return "", 0, err
		}
		if text.Len() > 0 {
			text.WriteString("\n")
		}
		text.WriteString(pageText)
	}
	return text.String(), numPages, nil
}

func extractDOCX(path string) (string, int, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", 0, err
	}
	defer r.Close()

	var text strings.Builder
	for _, paragraph := range strings.Split(r.Editable().GetContent(), "\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		text.WriteString(paragraph)
		text.WriteString("\n")
	}
	return text.String(), 1, nil
}

func extractPPTX(path string) (string, int, error) {
	f, err := zip.OpenReader(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	var text strings.Builder
	slides := 0
	for _, file := range f.File {
		if !strings.HasPrefix(file.Name, "ppt/slides/slide") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		slideText := strings.TrimSpace(extractTextFromXML(string(data)))
		if slideText == "" {
			continue
		}
		slides++
		if text.Len() > 0 {
			text.WriteString("\n")
		}
		text.WriteString(slideText)
	}
	if slides == 0 {
		slides = 1
	}
	return text.String(), slides, nil
}

func extractXLSX(path string) (string, int, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return "", 0, err
	}

	var text strings.Builder
	for _, sheet := range f.Sheets {
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
	}
	pages := len(f.Sheets)
	if pages == 0 {
		pages = 1
	}
	return text.String(), pages, nil
}

func extractODS(path string) (string, int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	var text strings.Builder
	sheets := f.GetSheetList()
	for _, sheetName := range sheets {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
	}
	pages := len(sheets)
	if pages == 0 {
		pages = 1
	}
	return text.String(), pages, nil
}

func extractMarkdown(path string) (string, int, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", 0, err
	}

	md := goldmark.New()
	root := md.Parser().Parse(gmtext.NewReader(source))

	var text strings.Builder
	err = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*ast.Text); ok {
			text.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				text.WriteString("\n")
			}
		} else if _, ok := n.(*ast.Paragraph); ok && text.Len() > 0 {
			text.WriteString("\n")
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", 0, err
	}
	return text.String(), 1, nil
}

func extractText(path string) (string, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, err
	}
	return string(data), 1, nil
}

func extractTextFromXML(xmlContent string) string {
	var text strings.Builder
	parts := strings.Split(xmlContent, "<a:t>")
	for i, part := range parts {
		if i == 0 {
			continue
		}
		endIdx := strings.Index(part, "</a:t>")
		if endIdx >= 0 {
			text.WriteString(part[:endIdx] + " ")
		}
	}
	return text.String()
}
