package extract

import (
	"errors"
	"strings"
	"testing"
)

func TestText_PlainTextPassthrough(t *testing.T) {
	text, err := Text("rfq.txt", []byte("RFQ SPE4A6-24-Q-1234\nQTY 25"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "SPE4A6-24-Q-1234") {
		t.Fatalf("unexpected text: %s", text)
	}
}

func TestText_EmptyDocumentFails(t *testing.T) {
	_, err := Text("rfq.txt", nil)
	if !errors.Is(err, ErrExtractionUnavailable) {
		t.Fatalf("expected ErrExtractionUnavailable, got %v", err)
	}
}

func TestText_BlankDocumentFails(t *testing.T) {
	_, err := Text("rfq.txt", []byte("   \n\t  "))
	if !errors.Is(err, ErrExtractionUnavailable) {
		t.Fatalf("expected ErrExtractionUnavailable, got %v", err)
	}
}

func TestText_CorruptPDFFails(t *testing.T) {
	_, err := Text("rfq.pdf", []byte("%PDF-1.7 garbage"))
	if !errors.Is(err, ErrExtractionUnavailable) {
		t.Fatalf("expected ErrExtractionUnavailable, got %v", err)
	}
}

func TestText_HTMLFlattened(t *testing.T) {
	html := `<!DOCTYPE html><html><body>
		<h1>RFQ SPE4A6-24-Q-1234</h1>
		<p>QTY 25</p>
		<script>alert("ignored")</script>
	</body></html>`

	text, err := Text("solicitation.html", []byte(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "SPE4A6-24-Q-1234") {
		t.Fatalf("missing heading text: %s", text)
	}
	if !strings.Contains(text, "QTY 25") {
		t.Fatalf("missing paragraph text: %s", text)
	}
	if strings.Contains(text, "alert") {
		t.Fatalf("script content leaked: %s", text)
	}
}

func TestCheckHost_RejectsLocalhost(t *testing.T) {
	if err := checkHost("localhost"); !errors.Is(err, ErrForbiddenHost) {
		t.Fatalf("expected ErrForbiddenHost, got %v", err)
	}
}
