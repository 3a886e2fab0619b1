package document

import (
	"bytes"
	"io"

	"github.com/ledongthuc/pdf"
)

// extractText pulls plain text out of a PDF. Returns an empty string and nil
// error when the PDF has no extractable text.
func extractText(content []byte) (string, error) {
	if len(content) == 0 {
		return "", nil
	}
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
