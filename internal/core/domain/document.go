package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DocumentType identifies how a document was ingested
type DocumentType string

const (
	DocumentTypePDF      DocumentType = "pdf"
	DocumentTypeDOCX     DocumentType = "docx"
	DocumentTypeText     DocumentType = "txt"
	DocumentTypeMarkdown DocumentType = "md"
	DocumentTypeURL      DocumentType = "url"
)

// MimeType returns the MIME type extractors are registered under.
func (t DocumentType) MimeType() string {
	switch t {
	case DocumentTypePDF:
		return "application/pdf"
	case DocumentTypeDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case DocumentTypeMarkdown:
		return "text/markdown"
	case DocumentTypeURL:
		return "text/html"
	default:
		return "text/plain"
	}
}

// DocumentTypeFromExtension maps a file extension (with or without dot) to a
// document type. URL documents have no extension and are never matched here.
func DocumentTypeFromExtension(ext string) (DocumentType, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "pdf":
		return DocumentTypePDF, true
	case "docx":
		return DocumentTypeDOCX, true
	case "txt":
		return DocumentTypeText, true
	case "md":
		return DocumentTypeMarkdown, true
	}
	return "", false
}

// Document is an ingested document as tracked by the registry
type Document struct {
	ID         string           `json:"document_id"`
	Name       string           `json:"filename"`
	Type       DocumentType     `json:"document_type"`
	Size       int64            `json:"file_size"`
	UploadedAt time.Time        `json:"upload_date"`
	ChunkCount int              `json:"num_chunks"`
	Metadata   DocumentMetadata `json:"metadata"`
}

// Ref returns the id/name pair used for mention resolution.
func (d *Document) Ref() DocumentRef {
	return DocumentRef{ID: d.ID, Name: d.Name}
}

// DocumentRef is the minimal view of a document the mention resolver needs
type DocumentRef struct {
	ID   string `json:"document_id"`
	Name string `json:"filename"`
}

// DocumentMetadata holds the well-known optional attributes extracted at
// ingestion. Zero values mean "absent"; Extra carries anything else.
type DocumentMetadata struct {
	Filename      string            `json:"filename,omitempty"`
	DocumentType  DocumentType      `json:"document_type,omitempty"`
	Author        string            `json:"author,omitempty"`
	Title         string            `json:"title,omitempty"`
	Subject       string            `json:"subject,omitempty"`
	Creator       string            `json:"creator,omitempty"`
	Producer      string            `json:"producer,omitempty"`
	CreationDate  string            `json:"creation_date,omitempty"`
	TotalPages    int               `json:"total_pages,omitempty"`
	WordCount     int               `json:"word_count,omitempty"`
	URL           string            `json:"url,omitempty"`
	Domain        string            `json:"domain,omitempty"`
	Description   string            `json:"description,omitempty"`
	PublishedDate string            `json:"published_date,omitempty"`
	FileSize      int64             `json:"file_size,omitempty"`
	UploadDate    string            `json:"upload_date,omitempty"`
	Extra         map[string]string `json:"extra,omitempty"`
}

// Flatten renders the metadata as a flat string map with absent fields
// omitted. Extra keys never override well-known ones.
func (m DocumentMetadata) Flatten() map[string]string {
	out := make(map[string]string, len(m.Extra)+8)
	for k, v := range m.Extra {
		if v != "" {
			out[k] = v
		}
	}
	set := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	set("filename", m.Filename)
	set("document_type", string(m.DocumentType))
	set("author", m.Author)
	set("title", m.Title)
	set("subject", m.Subject)
	set("creator", m.Creator)
	set("producer", m.Producer)
	set("creation_date", m.CreationDate)
	set("url", m.URL)
	set("domain", m.Domain)
	set("description", m.Description)
	set("published_date", m.PublishedDate)
	set("upload_date", m.UploadDate)
	if m.TotalPages > 0 {
		out["total_pages"] = strconv.Itoa(m.TotalPages)
	}
	if m.WordCount > 0 {
		out["word_count"] = strconv.Itoa(m.WordCount)
	}
	if m.FileSize > 0 {
		out["file_size"] = strconv.FormatInt(m.FileSize, 10)
	}
	return out
}

// Merge overlays non-zero fields of other onto m.
func (m DocumentMetadata) Merge(other DocumentMetadata) DocumentMetadata {
	pick := func(a, b string) string {
		if b != "" {
			return b
		}
		return a
	}
	m.Filename = pick(m.Filename, other.Filename)
	m.DocumentType = DocumentType(pick(string(m.DocumentType), string(other.DocumentType)))
	m.Author = pick(m.Author, other.Author)
	m.Title = pick(m.Title, other.Title)
	m.Subject = pick(m.Subject, other.Subject)
	m.Creator = pick(m.Creator, other.Creator)
	m.Producer = pick(m.Producer, other.Producer)
	m.CreationDate = pick(m.CreationDate, other.CreationDate)
	m.URL = pick(m.URL, other.URL)
	m.Domain = pick(m.Domain, other.Domain)
	m.Description = pick(m.Description, other.Description)
	m.PublishedDate = pick(m.PublishedDate, other.PublishedDate)
	m.UploadDate = pick(m.UploadDate, other.UploadDate)
	if other.TotalPages > 0 {
		m.TotalPages = other.TotalPages
	}
	if other.WordCount > 0 {
		m.WordCount = other.WordCount
	}
	if other.FileSize > 0 {
		m.FileSize = other.FileSize
	}
	if len(other.Extra) > 0 {
		extra := make(map[string]string, len(m.Extra)+len(other.Extra))
		for k, v := range m.Extra {
			extra[k] = v
		}
		for k, v := range other.Extra {
			extra[k] = v
		}
		m.Extra = extra
	}
	return m
}

// Page is the text of one page of a paginated source
type Page struct {
	Number int    `json:"page_number"`
	Text   string `json:"text"`
}

// ExtractedContent is what an extractor produces from raw bytes
type ExtractedContent struct {
	Text     string           `json:"text"`
	Pages    []Page           `json:"pages,omitempty"`
	Metadata DocumentMetadata `json:"metadata"`
}

// RawDocument is the input handed to an extractor
type RawDocument struct {
	Name     string
	MimeType string
	Content  []byte
	// SourceURL is set for documents fetched from the web
	SourceURL string
}

// Chunk is a contiguous excerpt of a document's text
type Chunk struct {
	ID          string        `json:"chunk_id"`
	DocumentID  string        `json:"document_id"`
	Index       int           `json:"chunk_index"`
	Text        string        `json:"text"`
	PageNumber  *int          `json:"page_number,omitempty"`
	StartOffset int           `json:"start_offset"`
	Metadata    ChunkMetadata `json:"metadata"`
}

// ChunkMetadata is the composite metadata stored with every embedding record
type ChunkMetadata struct {
	DocumentID string            `json:"document_id"`
	ChunkID    string            `json:"chunk_id"`
	ChunkIndex int               `json:"chunk_index"`
	PageNumber *int              `json:"page_number,omitempty"`
	Document   map[string]string `json:"document,omitempty"`
}

// Filename returns the document filename carried in the metadata.
func (m ChunkMetadata) Filename() string {
	return m.Document["filename"]
}

// ChunkID builds the identifier of the index-th chunk of a document.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}

// EmbeddingRecord is one stored vector with its text and metadata
type EmbeddingRecord struct {
	ChunkID  string        `json:"chunk_id"`
	Vector   []float32     `json:"-"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
