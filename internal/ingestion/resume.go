package ingestion

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"github.com/jonathan/coverletter-agent/internal/types"
)

// Résumé formats.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatPDF      = "pdf"
	FormatDOCX     = "docx"
)

// MaxUploadBytes bounds the size of an uploaded résumé.
const MaxUploadBytes = 5 << 20

const mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

var (
	// ErrEmptyUpload is returned when an upload has no extractable text.
	ErrEmptyUpload = errors.New("uploaded file is empty")
	// ErrTooLarge is returned when an upload exceeds MaxUploadBytes.
	ErrTooLarge = fmt.Errorf("uploaded file exceeds %d bytes", MaxUploadBytes)
	// ErrUnsupportedFormat classifies uploads whose format cannot be read.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// FormatError describes an upload in a format the service cannot read.
type FormatError struct {
	FileName string
	MIME     string
	Cause    error
}

func (e *FormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot read %s (%s): %v", e.FileName, e.MIME, e.Cause)
	}
	return fmt.Sprintf("unsupported format for %s: %s", e.FileName, e.MIME)
}

func (e *FormatError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrUnsupportedFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// ExtractResumeText converts an uploaded résumé into cleaned text with metadata.
// The format is sniffed from the content, with the file extension as a tie-breaker.
func ExtractResumeText(ctx context.Context, data []byte, fileName string) (*types.Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrTooLarge
	}

	format, err := DetectFormat(data, fileName)
	if err != nil {
		return nil, err
	}

	var raw string
	switch format {
	case FormatPDF:
		raw, err = extractPDF(data)
	case FormatDOCX:
		raw, err = extractDOCX(data)
	default:
		raw = decodeText(data)
	}
	if err != nil {
		return nil, &FormatError{FileName: fileName, MIME: format, Cause: err}
	}

	text := CleanText(raw)
	if text == "" {
		return nil, ErrEmptyUpload
	}

	return &types.Resume{
		Text:       text,
		FileName:   filepath.Base(fileName),
		Format:     format,
		Characters: utf8.RuneCountInString(text),
		Hash:       computeHash(text),
	}, nil
}

// ReadFile reads a résumé from disk and extracts its text.
func ReadFile(ctx context.Context, path string) (*types.Resume, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > MaxUploadBytes {
		return nil, ErrTooLarge
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ExtractResumeText(ctx, data, path)
}

// DetectFormat identifies the résumé format of data.
func DetectFormat(data []byte, fileName string) (string, error) {
	detected := mimetype.Detect(data)
	ext := strings.ToLower(filepath.Ext(fileName))

	switch {
	case detected.Is("application/pdf"):
		return FormatPDF, nil
	case detected.Is(mimeDOCX):
		return FormatDOCX, nil
	case detected.Is("application/zip"):
		if zipHasDocument(data) {
			return FormatDOCX, nil
		}
	case strings.HasPrefix(detected.String(), "text/"):
		if ext == ".md" || ext == ".markdown" {
			return FormatMarkdown, nil
		}
		return FormatText, nil
	}

	if (ext == ".txt" || ext == ".md") && utf8.Valid(data) {
		return FormatText, nil
	}
	return "", &FormatError{FileName: fileName, MIME: detected.String()}
}

// decodeText decodes plain text as UTF-8, dropping a byte-order mark and invalid sequences.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	return strings.ToValidUTF8(string(data), "")
}

func extractPDF(data []byte) (text string, err error) {
	// The PDF reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	doc := findZipEntry(zr, "word/document.xml")
	if doc == nil {
		return "", errors.New("word/document.xml not found")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	return docxText(rc)
}

// docxText collects character data, ending a line at each paragraph, break or tab.
func docxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("invalid document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString(" ")
			}
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				buf.WriteString("\n")
			}
		}
	}
	return buf.String(), nil
}

func zipHasDocument(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	return findZipEntry(zr, "word/document.xml") != nil
}

func findZipEntry(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == name {
			return f
		}
	}
	return nil
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
