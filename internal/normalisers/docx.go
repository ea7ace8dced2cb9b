package normalisers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Extractor = (*DOCXExtractor)(nil)

const docxMimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DOCXExtractor reads paragraph text from word/document.xml and document
// properties from docProps/core.xml.
type DOCXExtractor struct{}

// NewDOCXExtractor creates a DOCX extractor.
func NewDOCXExtractor() *DOCXExtractor {
	return &DOCXExtractor{}
}

func (e *DOCXExtractor) Extract(_ context.Context, raw *domain.RawDocument) (*domain.ExtractedContent, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a DOCX archive", domain.ErrInvalidInput, raw.Name)
	}

	body, err := readZipFile(reader, "word/document.xml")
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, fmt.Errorf("%w: %s has no word/document.xml", domain.ErrInvalidInput, raw.Name)
	}
	text := cleanText(parseDocumentXML(body))

	meta := domain.DocumentMetadata{DocumentType: domain.DocumentTypeDOCX}
	if core, err := readZipFile(reader, "docProps/core.xml"); err == nil && core != nil {
		meta = meta.Merge(parseCoreXML(core))
	}
	meta.WordCount = wordCount(text)

	return &domain.ExtractedContent{Text: text, Metadata: meta}, nil
}

func (e *DOCXExtractor) SupportedTypes() []string {
	return []string{docxMimeType}
}

func (e *DOCXExtractor) Priority() int {
	return 50
}

// readZipFile returns the contents of name, or nil if the archive lacks it.
func readZipFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		return content, nil
	}
	return nil, nil
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
		Tables     []table     `xml:"tbl"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
	Tabs []struct{}    `xml:"tab"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

type table struct {
	Rows []struct {
		Cells []struct {
			Paragraphs []paragraph `xml:"p"`
		} `xml:"tc"`
	} `xml:"tr"`
}

func (p paragraph) text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		for range r.Tabs {
			b.WriteString(" ")
		}
		for _, t := range r.Text {
			b.WriteString(t.Content)
		}
	}
	return b.String()
}

// parseDocumentXML extracts paragraph text, one paragraph per line, with
// table cells appended after the body paragraphs.
func parseDocumentXML(content []byte) string {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return ""
	}

	var lines []string
	for _, para := range doc.Body.Paragraphs {
		lines = append(lines, para.text())
	}
	for _, tbl := range doc.Body.Tables {
		for _, row := range tbl.Rows {
			var cells []string
			for _, cell := range row.Cells {
				for _, para := range cell.Paragraphs {
					if t := strings.TrimSpace(para.text()); t != "" {
						cells = append(cells, t)
					}
				}
			}
			if len(cells) > 0 {
				lines = append(lines, strings.Join(cells, " | "))
			}
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title   string `xml:"title"`
	Subject string `xml:"subject"`
	Creator string `xml:"creator"`
	Created string `xml:"created"`
}

func parseCoreXML(content []byte) domain.DocumentMetadata {
	var core coreXML
	if err := xml.Unmarshal(content, &core); err != nil {
		return domain.DocumentMetadata{}
	}
	return domain.DocumentMetadata{
		Title:        strings.TrimSpace(core.Title),
		Subject:      strings.TrimSpace(core.Subject),
		Author:       strings.TrimSpace(core.Creator),
		CreationDate: strings.TrimSpace(core.Created),
	}
}
