package guidelines

import (
	"bytes"
	"fmt"
	"strings"

	rpdf "rsc.io/pdf"
)

// ExtractPDFText pulls the plain text out of a PDF so it can be fed to
// Parse. Funders frequently publish guidelines only as PDF attachments.
// The underlying reader panics on malformed files, so recover and report.
func ExtractPDFText(content []byte) (text string, err error) {
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

	return builder.String(), nil
}

// ParsePDF extracts the text of a PDF guidelines document and parses it.
func ParsePDF(content []byte) (Parsed, error) {
	text, err := ExtractPDFText(content)
	if err != nil {
		return Parsed{}, fmt.Errorf("pdf text extraction failed: %w", err)
	}
	return Parse(text), nil
}
