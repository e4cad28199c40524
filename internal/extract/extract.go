// Package extract is the document-to-text collaborator: it turns a binary
// solicitation document (PDF, HTML page, or plain text) into raw text the
// decision engine can analyze. Failure to obtain text is always surfaced as
// ErrExtractionUnavailable, never as a silent empty string.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrExtractionUnavailable is returned when no text could be obtained from
// the source document (corrupt file, unsupported format, empty result).
// It is fatal to that document's analysis and is shown to the requester.
var ErrExtractionUnavailable = errors.New("document text extraction unavailable")

var pdfMagic = []byte("%PDF")

// Text extracts plain text from a document. The format is detected from the
// filename extension and content sniffing; plain text is passed through
// unchanged.
func Text(filename string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("%w: empty document", ErrExtractionUnavailable)
	}

	lower := strings.ToLower(filename)
	switch {
	case bytes.HasPrefix(content, pdfMagic) || strings.HasSuffix(lower, ".pdf"):
		text, err := pdfText(content)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrExtractionUnavailable, err)
		}
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("%w: pdf contained no extractable text", ErrExtractionUnavailable)
		}
		return text, nil
	case looksLikeHTML(content) || strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm"):
		text, err := htmlText(string(content))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrExtractionUnavailable, err)
		}
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("%w: page contained no extractable text", ErrExtractionUnavailable)
		}
		return text, nil
	default:
		if !utf8.Valid(content) {
			return "", fmt.Errorf("%w: unrecognized binary format", ErrExtractionUnavailable)
		}
		text := string(content)
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("%w: document is blank", ErrExtractionUnavailable)
		}
		return text, nil
	}
}

func looksLikeHTML(content []byte) bool {
	head := content
	if len(head) > 512 {
		head = head[:512]
	}
	lower := strings.ToLower(string(head))
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype html")
}
