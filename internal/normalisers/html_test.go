package normalisers

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

const articlePage = `<!DOCTYPE html>
<html>
<head>
  <title>Fallback Title</title>
  <meta property="og:title" content="Understanding Entropy">
  <meta name="description" content="A gentle introduction.">
  <meta name="author" content="Ada Lovelace">
  <meta property="article:published_time" content="2024-03-01">
  <script>var tracking = "should not appear";</script>
</head>
<body>
  <header><p>Site header navigation text that is long enough</p></header>
  <nav><li>Home link that is also fairly long text</li></nav>
  <article>
    <h1>Understanding entropy in thermodynamics</h1>
    <p>Entropy measures the number of microscopic configurations of a system.</p>
    <p>Short one.</p>
    <ul><li>The second law says entropy never decreases in isolation.</li></ul>
    <style>.hidden { display: none; }</style>
  </article>
  <footer><p>Copyright footer text that should be dropped entirely</p></footer>
</body>
</html>`

func TestHTMLExtractor_Article(t *testing.T) {
	e := NewHTMLExtractor()

	out, err := e.Extract(context.Background(), &domain.RawDocument{
		Content:   []byte(articlePage),
		SourceURL: "https://physics.example.org/entropy",
	})
	require.NoError(t, err)

	assert.Equal(t,
		"Understanding entropy in thermodynamics\n\n"+
			"Entropy measures the number of microscopic configurations of a system.\n\n"+
			"The second law says entropy never decreases in isolation.",
		out.Text)

	assert.Equal(t, "Understanding Entropy", out.Metadata.Title)
	assert.Equal(t, "A gentle introduction.", out.Metadata.Description)
	assert.Equal(t, "Ada Lovelace", out.Metadata.Author)
	assert.Equal(t, "2024-03-01", out.Metadata.PublishedDate)
	assert.Equal(t, "physics.example.org", out.Metadata.Domain)
	assert.Equal(t, "https://physics.example.org/entropy", out.Metadata.URL)
	assert.Equal(t, domain.DocumentTypeURL, out.Metadata.DocumentType)
	assert.Equal(t, len(strings.Fields(out.Text)), out.Metadata.WordCount)
}

func TestHTMLExtractor_FallsBackToBodyText(t *testing.T) {
	e := NewHTMLExtractor()

	out, err := e.Extract(context.Background(), &domain.RawDocument{
		Content: []byte("<html><head><title> Tiny   page </title></head><body><div>Hi&amp;bye</div><script>x()</script></body></html>"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Hi&bye", out.Text)
	assert.Equal(t, "Tiny page", out.Metadata.Title)
	assert.Empty(t, out.Metadata.Domain)
}

func TestHTMLExtractor_NilInput(t *testing.T) {
	_, err := NewHTMLExtractor().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHTMLExtractor_SupportedTypes(t *testing.T) {
	e := NewHTMLExtractor()
	assert.Contains(t, e.SupportedTypes(), "text/html")
	assert.Equal(t, 50, e.Priority())
}
