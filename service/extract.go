package service

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	nonPrintable = regexp.MustCompile(`[^\x20-\x7E\n\r\t]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// ExtractText pulls plain text out of an uploaded document for embedding in
// the analysis message. The result is capped at maxChars; the returned bool
// reports whether content was dropped by the cap, so callers can disclose the
// truncation instead of silently losing it.
func ExtractText(content []byte, filename string, maxChars int) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))

	var text string
	switch ext {
	case ".txt":
		text = string(bytes.ToValidUTF8(content, nil))
	case ".pdf":
		extracted, err := extractPDFText(content)
		if err != nil {
			return fmt.Sprintf("Content from %s (text extraction encountered issues, please provide key details manually)", filename), false
		}
		text = extracted
	default:
		// .doc and .docx decoded as raw text need the format artifacts
		// scrubbed out
		text = string(bytes.ToValidUTF8(content, nil))
		text = nonPrintable.ReplaceAllString(text, " ")
		text = whitespace.ReplaceAllString(text, " ")
		text = strings.TrimSpace(text)
	}

	runes := []rune(text)
	if maxChars > 0 && len(runes) > maxChars {
		return string(runes[:maxChars]), true
	}
	return text, false
}

func extractPDFText(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	data, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
