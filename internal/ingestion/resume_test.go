package ingestion

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const documentXML = `<?xml version="1.0" encoding="UTF-8"?>` +
	`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
	`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>Backend engineer,</w:t><w:tab/><w:t>Go and PostgreSQL</w:t></w:r></w:p>` +
	`</w:body></w:document>`

func TestExtractResumeText_PlainText(t *testing.T) {
	data := []byte("\xef\xbb\xbf# 홍길동\n\n백엔드 개발자   5년차")

	resume, err := ExtractResumeText(context.Background(), data, "resume.md")
	require.NoError(t, err)

	assert.Equal(t, FormatMarkdown, resume.Format)
	assert.Equal(t, "resume.md", resume.FileName)
	assert.True(t, strings.HasPrefix(resume.Text, "# 홍길동"))
	assert.Contains(t, resume.Text, "백엔드 개발자 5년차")
	assert.Equal(t, len([]rune(resume.Text)), resume.Characters)
	assert.Len(t, resume.Hash, 64)
}

func TestExtractResumeText_DOCX(t *testing.T) {
	resume, err := ExtractResumeText(context.Background(), buildDOCX(t, documentXML), "cv.docx")
	require.NoError(t, err)

	assert.Equal(t, FormatDOCX, resume.Format)
	assert.Equal(t, "Jane Doe\nBackend engineer, Go and PostgreSQL", resume.Text)
}

func TestExtractResumeText_EmptyUpload(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		file string
	}{
		{name: "no bytes", data: nil, file: "resume.txt"},
		{name: "whitespace only", data: []byte("  \n\t\n  "), file: "resume.txt"},
		{name: "bom only", data: []byte("\xef\xbb\xbf"), file: "resume.txt"},
		{name: "empty docx", data: buildDOCX(t, `<w:document xmlns:w="w"><w:body><w:p/></w:body></w:document>`), file: "cv.docx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resume, err := ExtractResumeText(context.Background(), tt.data, tt.file)
			assert.ErrorIs(t, err, ErrEmptyUpload)
			assert.Nil(t, resume)
		})
	}
}

func TestExtractResumeText_Unsupported(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	_, err := ExtractResumeText(context.Background(), png, "photo.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "photo.png", formatErr.FileName)
}

func TestExtractResumeText_CorruptPDF(t *testing.T) {
	_, err := ExtractResumeText(context.Background(), []byte("%PDF-1.4\nthis is not really a pdf"), "resume.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtractResumeText_TooLarge(t *testing.T) {
	data := bytes.Repeat([]byte("a"), MaxUploadBytes+1)

	_, err := ExtractResumeText(context.Background(), data, "big.txt")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestExtractResumeText_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExtractResumeText(ctx, []byte("text"), "resume.txt")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		file string
		want string
	}{
		{name: "pdf magic", data: []byte("%PDF-1.7\n"), file: "x.bin", want: FormatPDF},
		{name: "plain text", data: []byte("hello"), file: "resume.txt", want: FormatText},
		{name: "markdown", data: []byte("# hello"), file: "resume.md", want: FormatMarkdown},
		{name: "docx", data: buildDOCX(t, documentXML), file: "cv.docx", want: FormatDOCX},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.data, tt.file)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("Go engineer\nSeoul"), 0644))

	resume, err := ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Go engineer\nSeoul", resume.Text)
	assert.Equal(t, "resume.txt", resume.FileName)

	_, err = ReadFile(context.Background(), filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestHashDeterministic(t *testing.T) {
	assert.Equal(t, computeHash("a"), computeHash("a"))
	assert.NotEqual(t, computeHash("a"), computeHash("b"))
}
