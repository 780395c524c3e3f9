// Package docx loads Word documents stored as Office Open XML.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

const documentPart = "word/document.xml"

// Loader handles DOCX documents. Files with a .doc extension are accepted
// too; legacy binary Word files are not zip archives and fail to load.
type Loader struct{}

// New creates a new DOCX loader.
func New() *Loader {
	return &Loader{}
}

// Extensions returns the file extensions this loader handles.
func (l *Loader) Extensions() []string {
	return []string{".docx", ".doc"}
}

// Load extracts the document body. Explicit page breaks start a new section.
func (l *Loader) Load(_ context.Context, path string) ([]domain.Section, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: not a Word (OOXML) archive: %w", domain.ErrLoad, err)
	}
	defer reader.Close()

	content, err := readPart(&reader.Reader, documentPart)
	if err != nil {
		return nil, err
	}

	pages, err := parseDocumentXML(content)
	if err != nil {
		return nil, err
	}

	sections := make([]domain.Section, 0, len(pages))
	for i, text := range pages {
		sections = append(sections, domain.Section{Index: i + 1, Text: text})
	}
	return sections, nil
}

// readPart returns the bytes of a named archive member.
func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %w", domain.ErrLoad, name, err)
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", domain.ErrLoad, name, err)
		}
		return content, nil
	}
	return nil, fmt.Errorf("%w: archive has no %s", domain.ErrLoad, name)
}

// parseDocumentXML walks word/document.xml and returns the text of each page.
// Paragraphs end with a newline; table cells are read like paragraphs.
func parseDocumentXML(content []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var pages []string
	var page strings.Builder
	flush := func() {
		if text := strings.TrimSpace(page.String()); text != "" {
			pages = append(pages, text)
		}
		page.Reset()
	}

	inText := false
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrLoad, documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				page.WriteString("\t")
			case "br":
				if attr(t, "type") == "page" {
					flush()
				} else {
					page.WriteString("\n")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				page.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				page.Write(t)
			}
		}
	}
	flush()

	return pages, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
