// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"ja-redact/internal/observability"
)

// MaxPDFPages limits how many pages are read from one PDF.
const MaxPDFPages = 200

const pageBreak = "\n--- PAGE BREAK ---\n"

// PDFTextPreprocessor extracts the text layer of a PDF. The redacted output
// of a PDF is a plain text file.
type PDFTextPreprocessor struct {
	observer *observability.StandardObserver
}

// NewPDFTextPreprocessor creates a new PDF text preprocessor
func NewPDFTextPreprocessor() *PDFTextPreprocessor {
	return &PDFTextPreprocessor{}
}

// SetObserver sets the observability component
func (pp *PDFTextPreprocessor) SetObserver(observer *observability.StandardObserver) {
	pp.observer = observer
}

// GetName returns the name of this preprocessor
func (pp *PDFTextPreprocessor) GetName() string {
	return "PDF Text Preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (pp *PDFTextPreprocessor) GetSupportedExtensions() []string {
	return []string{".pdf"}
}

// CanProcess checks if this preprocessor can handle the given file
func (pp *PDFTextPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, pp.GetSupportedExtensions())
}

// Process extracts page text in reading order followed by any form field values.
func (pp *PDFTextPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	finishTiming := pp.observer.StartTiming("pdf_preprocessor", "process_file", filePath)

	f, r, err := pdf.Open(filepath.Clean(filePath))
	if err != nil {
		finishTiming(false, map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	pages := r.NumPage()
	if pages > MaxPDFPages {
		pages = MaxPDFPages
	}

	var buf bytes.Buffer
	failed := 0
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			failed++
			continue
		}
		text, err := pageText(p)
		if err != nil {
			failed++
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString(pageBreak)
		}
		buf.WriteString(text)
	}

	if form := formFields(r); form != "" {
		buf.WriteString("\n--- PDF Form Data ---\n")
		buf.WriteString(form)
	}

	text := cleanLines(buf.String())
	if pages > 0 && failed == pages {
		err := fmt.Errorf("no readable pages")
		finishTiming(false, map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}

	result := &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Text:          text,
		Format:        "PDF",
		PageCount:     pages,
		CharCount:     utf8.RuneCountInString(text),
		LineCount:     strings.Count(text, "\n") + 1,
		ProcessorType: "pdf",
		OutputExt:     ".txt",
	}
	finishTiming(true, map[string]interface{}{
		"page_count":   pages,
		"failed_pages": failed,
		"char_count":   result.CharCount,
	})
	return result, nil
}

// pageText rebuilds rows top to bottom, falling back to the plain text stream.
func pageText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return p.GetPlainText(nil)
	}

	sorted := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			sorted = append(sorted, row)
		}
	}
	// PDF y grows upwards
	sort.SliceStable(sorted, func(i, j int) bool {
		return averageY(sorted[i].Content) > averageY(sorted[j].Content)
	})

	var buf bytes.Buffer
	for _, row := range sorted {
		if line := rowText(row.Content); strings.TrimSpace(line) != "" {
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}
	return buf.String(), nil
}

func averageY(texts []pdf.Text) float64 {
	if len(texts) == 0 {
		return 0
	}
	var total float64
	for _, t := range texts {
		total += t.Y
	}
	return total / float64(len(texts))
}

// rowText joins the glyph runs of one row left to right, inserting a space
// where the gap exceeds a fifth of the font size.
func rowText(texts []pdf.Text) string {
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var buf bytes.Buffer
	for i, t := range sorted {
		buf.WriteString(t.S)
		if i == len(sorted)-1 {
			break
		}
		fontSize := t.FontSize
		if fontSize <= 0 {
			fontSize = 12
		}
		if sorted[i+1].X-(t.X+t.W) > fontSize*0.2 {
			buf.WriteString(" ")
		}
	}
	return buf.String()
}

// formFields lists AcroForm field names and values, one per line.
func formFields(r *pdf.Reader) string {
	root := r.Trailer().Key("Root")
	if root.IsNull() {
		return ""
	}
	fields := root.Key("AcroForm").Key("Fields")
	if fields.Kind() != pdf.Array {
		return ""
	}

	var buf bytes.Buffer
	for i := 0; i < fields.Len(); i++ {
		field := fields.Index(i)
		if field.Kind() != pdf.Dict {
			continue
		}
		name := valueText(field.Key("T"))
		value := valueText(field.Key("V"))
		if value == "" {
			value = valueText(field.Key("DV"))
		}
		if name != "" && value != "" {
			fmt.Fprintf(&buf, "%s: %s\n", name, value)
		}
	}
	return buf.String()
}

func valueText(v pdf.Value) string {
	switch v.Kind() {
	case pdf.String:
		return v.Text()
	case pdf.Name:
		return v.Name()
	}
	return ""
}

// cleanLines trims each line, drops blank lines and turns tabs into spaces.
func cleanLines(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(strings.ReplaceAll(line, "\t", " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
