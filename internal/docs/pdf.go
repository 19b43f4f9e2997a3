package docs

import (
	"bytes"
	"fmt"
	"strings"

	rpdf "rsc.io/pdf"
)

// maxPDFBytes caps uploads passed to the PDF parser.
const maxPDFBytes = 20 << 20

// ExtractPDFText pulls the text content out of a PDF upload so it can be
// dropped into a document or indexed. The parser panics on malformed files,
// so the panic is turned into an error here.
func ExtractPDFText(content []byte) (text string, err error) {
	if len(content) == 0 {
		return "", fmt.Errorf("empty pdf")
	}
	if len(content) > maxPDFBytes {
		return "", fmt.Errorf("pdf too large: %d bytes", len(content))
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("pdf parser panic: %v", recovered)
			text = ""
		}
	}()

	reader, err := rpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		for _, fragment := range page.Content().Text {
			builder.WriteString(fragment.S)
			builder.WriteString(" ")
		}
		builder.WriteString("\n")
	}

	out := strings.TrimSpace(builder.String())
	if out == "" {
		return "", fmt.Errorf("pdf contains no extractable text")
	}
	return out, nil
}
