package normalisers

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

const testDocumentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Lecture   one:</w:t></w:r><w:r><w:t xml:space="preserve"> vectors</w:t></w:r></w:p>
    <w:p></w:p>
    <w:p><w:r><w:t>Dot products measure alignment.</w:t></w:r></w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>a</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>b</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
  </w:body>
</w:document>`

const testCoreXML = `<?xml version="1.0" encoding="UTF-8"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
  xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/">
  <dc:title>Linear Algebra</dc:title>
  <dc:subject>Maths</dc:subject>
  <dc:creator>Grace Hopper</dc:creator>
  <dcterms:created>2024-01-15T09:00:00Z</dcterms:created>
</cp:coreProperties>`

func buildDOCX(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDOCXExtractor_Extract(t *testing.T) {
	content := buildDOCX(t, map[string]string{
		"word/document.xml": testDocumentXML,
		"docProps/core.xml": testCoreXML,
	})

	out, err := NewDOCXExtractor().Extract(context.Background(), &domain.RawDocument{Name: "la.docx", Content: content})
	require.NoError(t, err)

	assert.Equal(t, "Lecture one: vectors\n\nDot products measure alignment.\na | b", out.Text)
	assert.Equal(t, "Linear Algebra", out.Metadata.Title)
	assert.Equal(t, "Maths", out.Metadata.Subject)
	assert.Equal(t, "Grace Hopper", out.Metadata.Author)
	assert.Equal(t, "2024-01-15T09:00:00Z", out.Metadata.CreationDate)
	assert.Equal(t, domain.DocumentTypeDOCX, out.Metadata.DocumentType)
	assert.Equal(t, 10, out.Metadata.WordCount)
}

func TestDOCXExtractor_WithoutCoreProperties(t *testing.T) {
	content := buildDOCX(t, map[string]string{"word/document.xml": testDocumentXML})

	out, err := NewDOCXExtractor().Extract(context.Background(), &domain.RawDocument{Content: content})
	require.NoError(t, err)
	assert.Empty(t, out.Metadata.Title)
	assert.NotEmpty(t, out.Text)
}

func TestDOCXExtractor_InvalidInput(t *testing.T) {
	e := NewDOCXExtractor()
	ctx := context.Background()

	_, err := e.Extract(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.Extract(ctx, &domain.RawDocument{Content: []byte("not a zip")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.Extract(ctx, &domain.RawDocument{Content: buildDOCX(t, map[string]string{"other.xml": "<x/>"})})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
