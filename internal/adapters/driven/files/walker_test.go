package files

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tree() fstest.MapFS {
	return fstest.MapFS{
		"report.pdf":               {Data: []byte("%PDF")},
		"notes/meeting.md":         {Data: []byte("# notes")},
		"notes/deep/summary.txt":   {Data: []byte("text")},
		"notes/image.png":          {Data: []byte("png")},
		"contract.docx":            {Data: []byte("PK")},
		".hidden.txt":              {Data: []byte("secret")},
		".git/config.txt":          {Data: []byte("git")},
		"node_modules/pkg/read.md": {Data: []byte("dep")},
		"archive/old/legacy.txt":   {Data: []byte("old")},
	}
}

func TestWalker_DefaultPatterns(t *testing.T) {
	paths, err := NewWalker(nil, DefaultExcludes).Walk(tree())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"archive/old/legacy.txt",
		"contract.docx",
		"notes/deep/summary.txt",
		"notes/meeting.md",
		"report.pdf",
	}, paths)
}

func TestWalker_CustomPatterns(t *testing.T) {
	w := NewWalker([]string{"**/*.txt"}, []string{"archive/**"})

	paths, err := w.Walk(tree())
	require.NoError(t, err)

	assert.Equal(t, []string{".git/config.txt", ".hidden.txt", "notes/deep/summary.txt"}, paths)
}

func TestWalker_ExcludedDirectoryIsPruned(t *testing.T) {
	w := NewWalker([]string{"**/*"}, []string{"notes"})

	paths, err := w.Walk(tree())
	require.NoError(t, err)

	for _, p := range paths {
		assert.NotContains(t, p, "notes/")
	}
}

func TestWalker_Empty(t *testing.T) {
	paths, err := NewWalker(nil, nil).Walk(fstest.MapFS{})
	require.NoError(t, err)
	assert.Empty(t, paths)
}
