// Package extract pulls plain text out of uploaded documents.
// Supported formats: txt, md, pdf, docx.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"path/filepath"
	"strings"

	"github.com/dslipak/pdf"

	"github.com/kart-io/docqa/pkg/errors"
)

// MaxFileSize is the hard limit for uploads handed to the extractor.
const MaxFileSize = 50 * 1024 * 1024 // 50 MiB

// SupportedType reports whether the file extension maps to a known extractor
// and returns the normalized type name.
func SupportedType(filename string) (string, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return "txt", true
	case ".md":
		return "md", true
	case ".pdf":
		return "pdf", true
	case ".docx":
		return "docx", true
	default:
		return "", false
	}
}

// Text extracts plain text from the uploaded file content. The extractor is
// chosen by file extension. Unsupported extensions return
// ErrUnsupportedFormat; parse failures return ErrExtractionFailed.
func Text(filename string, content []byte) (string, error) {
	if len(content) > MaxFileSize {
		return "", errors.ErrExtractionFailed.WithMessagef(
			"file exceeds size limit of %d bytes", MaxFileSize)
	}

	fileType, ok := SupportedType(filename)
	if !ok {
		return "", errors.ErrUnsupportedFormat.WithMessagef(
			"unsupported file format: %s", filepath.Ext(filename))
	}

	switch fileType {
	case "txt", "md":
		return string(content), nil
	case "pdf":
		return extractPDF(content)
	default:
		return extractDOCX(content)
	}
}

func extractPDF(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", errors.ErrExtractionFailed.WithCause(err)
	}

	b, err := r.GetPlainText()
	if err != nil {
		return "", errors.ErrExtractionFailed.WithCause(err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(b); err != nil {
		return "", errors.ErrExtractionFailed.WithCause(err)
	}
	return buf.String(), nil
}

// extractDOCX treats the document as a ZIP, finds word/document.xml and
// strips the tags. Paragraphs become newlines, tabs become tabs.
func extractDOCX(content []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", errors.ErrExtractionFailed.WithCause(err)
	}

	var documentXML *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			documentXML = f
			break
		}
	}
	if documentXML == nil {
		return "", errors.ErrExtractionFailed.WithMessage("invalid docx: missing word/document.xml")
	}

	rc, err := documentXML.Open()
	if err != nil {
		return "", errors.ErrExtractionFailed.WithCause(err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var textBuilder strings.Builder

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.ErrExtractionFailed.WithCause(err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "p" {
				textBuilder.WriteString("\n")
			}
			if t.Name.Local == "tab" {
				textBuilder.WriteString("\t")
			}
		case xml.CharData:
			textBuilder.Write(t)
		}
	}

	return textBuilder.String(), nil
}
