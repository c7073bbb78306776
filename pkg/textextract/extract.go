// Package textextract turns uploaded coursework files into plain text.
package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

var ErrUnsupported = errors.New("unsupported file type")

// Kind normalizes a content type or file name to one of pdf, docx, txt.
func Kind(contentType, filename string) string {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "application/pdf":
		return "pdf"
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return "docx"
	case "text/plain":
		return "txt"
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "pdf"
	case ".docx":
		return "docx"
	case ".txt", ".md":
		return "txt"
	}
	return ""
}

// Extract returns the text of data. maxChars > 0 truncates the result.
func Extract(data io.ReaderAt, size int64, kind string, maxChars int) (string, error) {
	var (
		text string
		err  error
	)
	switch kind {
	case "pdf":
		text, err = extractPDF(data, size, maxChars)
	case "docx":
		text, err = extractDOCX(data, size, maxChars)
	case "txt":
		text, err = extractTXT(data, size)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupported, kind)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if maxChars > 0 && utf8.RuneCountInString(text) > maxChars {
		text = string([]rune(text)[:maxChars])
	}
	return text, nil
}

// maxDocumentXML caps how much of word/document.xml is decompressed.
const maxDocumentXML = 64 << 20

// limitedText collects text until limit runes are held. A limit <= 0
// collects everything.
type limitedText struct {
	buf   strings.Builder
	runes int
	limit int
}

func (l *limitedText) write(s string) {
	l.buf.WriteString(s)
	l.runes += utf8.RuneCountInString(s)
}

func (l *limitedText) full() bool {
	return l.limit > 0 && l.runes >= l.limit
}

func extractPDF(data io.ReaderAt, size int64, maxChars int) (string, error) {
	reader, err := pdf.NewReader(data, size)
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}

	out := &limitedText{limit: maxChars}
	for i := 1; i <= reader.NumPage() && !out.full(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		out.write(text)
		out.write("\n")
	}
	return out.buf.String(), nil
}

// extractDOCX reads word/document.xml, one line per paragraph.
func extractDOCX(data io.ReaderAt, size int64, maxChars int) (string, error) {
	reader, err := zip.NewReader(data, size)
	if err != nil {
		return "", fmt.Errorf("open DOCX: %w", err)
	}

	for _, f := range reader.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		defer rc.Close()

		lr := &io.LimitedReader{R: rc, N: maxDocumentXML}
		text, err := paragraphs(lr, maxChars)
		if err != nil && lr.N == 0 {
			// cut off at the size cap: keep what was read
			return text, nil
		}
		return text, err
	}
	return "", fmt.Errorf("open DOCX: word/document.xml missing")
}

// paragraphs stops decoding once maxChars runes are collected.
func paragraphs(r io.Reader, maxChars int) (string, error) {
	dec := xml.NewDecoder(r)
	out := &limitedText{limit: maxChars}
	inText := false
	for !out.full() {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out.buf.String(), fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			inText = t.Name.Local == "t"
		case xml.EndElement:
			if t.Name.Local == "p" {
				out.write("\n")
			}
			inText = false
		case xml.CharData:
			if inText {
				out.write(string(t))
			}
		}
	}
	return out.buf.String(), nil
}

func extractTXT(data io.ReaderAt, size int64) (string, error) {
	buf := make([]byte, size)
	if _, err := data.ReadAt(buf, 0); err != nil && err != io.EOF {
		return "", fmt.Errorf("read TXT: %w", err)
	}
	if !utf8.Valid(buf) {
		return "", fmt.Errorf("read TXT: not UTF-8")
	}
	return string(bytes.TrimPrefix(buf, []byte("\xef\xbb\xbf"))), nil
}
