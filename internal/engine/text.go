package engine

import (
	"bytes"
	"context"
)

// TextExtractor turns raw document bytes into text. OCR, PDF readers and
// email decoders live behind this interface; the engine does not care how
// the text was obtained.
type TextExtractor interface {
	Extract(ctx context.Context, doc []byte) (string, error)
}

// PlainText treats the document bytes as already-decoded UTF-8 text. It is
// the extractor for email bodies and pre-OCRed input.
type PlainText struct{}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extract implements TextExtractor.
func (PlainText) Extract(ctx context.Context, doc []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return string(bytes.TrimPrefix(doc, utf8BOM)), nil
}
