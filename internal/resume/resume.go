// Package resume extracts plain text from candidate resume files.
package resume

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Extractor pulls plain text out of a resume file. An error signals
// extraction failure; callers treat it as "no resume text".
type Extractor interface {
	Extract(path string) (string, error)
}

// FileExtractor reads TXT and PDF resumes from disk.
type FileExtractor struct {
	log *slog.Logger
}

// NewFileExtractor creates a resume file extractor.
func NewFileExtractor(log *slog.Logger) *FileExtractor {
	if log == nil {
		log = slog.Default()
	}
	return &FileExtractor{log: log.With("component", "resume")}
}

// Extract routes on the file extension and returns the resume's text.
func (e *FileExtractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read resume: %w", err)
	}
	text, err := e.FromBytes(filepath.Base(path), content)
	if err != nil {
		return "", err
	}
	e.log.Info("resume extracted", "path", path, "chars", len(text))
	return text, nil
}

// FromBytes extracts text from in-memory file content, for callers that
// receive uploads instead of paths.
func (e *FileExtractor) FromBytes(filename string, content []byte) (string, error) {
	var text string
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".txt":
		text = decodeText(content)
	case ".pdf":
		var err error
		text, err = extractPDF(content)
		if err != nil {
			return "", fmt.Errorf("pdf extraction failed: %w", err)
		}
	default:
		return "", fmt.Errorf("unsupported resume format %q (only .txt and .pdf)", ext)
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("resume %q contains no extractable text", filename)
	}
	return text, nil
}

// decodeText returns the content as UTF-8, falling back to a Latin-1
// reinterpretation for legacy exports.
func decodeText(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}
	runes := make([]rune, len(content))
	for i, b := range content {
		runes[i] = rune(b)
	}
	return string(runes)
}

func extractPDF(content []byte) (string, error) {
	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return "", err
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()

	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	return textBuilder.String(), nil
}
