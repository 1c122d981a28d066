package export

import (
	"bytes"
	"io"
	"testing"

	"codecanvas/internal/types"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readArchive(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	out := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[f.Name] = string(content)
	}
	return out
}

func TestExportWritesEveryFile(t *testing.T) {
	files := []types.File{
		{Name: "index.html", Content: "<html></html>"},
		{Name: "style.css", Content: "body{color:red}"},
		{Name: "empty.js", Content: ""},
	}
	var buf bytes.Buffer
	e := NewExporter(NewZipArchiver())
	require.True(t, e.Available())
	require.NoError(t, e.Export(&buf, files))

	got := readArchive(t, buf.Bytes())
	assert.Equal(t, map[string]string{
		"index.html": "<html></html>",
		"style.css":  "body{color:red}",
		"empty.js":   "",
	}, got)
	assert.Equal(t, "application/zip", e.ContentType())
}

func TestExportEmptyProject(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExporter(NewZipArchiver()).Export(&buf, nil))
	assert.Empty(t, readArchive(t, buf.Bytes()))
}

func TestExportUnavailable(t *testing.T) {
	var buf bytes.Buffer
	e := NewExporter(nil)
	assert.False(t, e.Available())
	assert.ErrorIs(t, e.Export(&buf, []types.File{{Name: "a.html"}}), ErrExportUnavailable)
	assert.Zero(t, buf.Len())

	var nilExporter *Exporter
	assert.False(t, nilExporter.Available())
}
