package services

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"alfredoptarigan/skillbridge/internal/models"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText = "text/plain"
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
	MimeWEBP = "image/webp"
)

// TextExtractorService recovers the text layer of a document without any
// visual interpretation.
type TextExtractorService interface {
	ExtractText(doc models.Document) (string, error)
}

type textExtractorService struct{}

func NewTextExtractorService() TextExtractorService {
	return &textExtractorService{}
}

// ExtractText returns the document text, possibly empty. It fails with
// *ExtractionError when the document cannot be opened.
func (t *textExtractorService) ExtractText(doc models.Document) (string, error) {
	format := ResolveMimeType(doc)

	switch format {
	case MimePDF:
		text, err := extractPDFText(doc.Data)
		if err != nil {
			return "", err
		}
		return CleanText(text), nil
	case MimeDOCX:
		text, err := extractDocxText(doc.Data)
		if err != nil {
			return "", err
		}
		return CleanText(text), nil
	case MimeText:
		return CleanText(string(doc.Data)), nil
	case MimePNG, MimeJPEG, MimeWEBP:
		return "", &ExtractionError{Format: format, Reason: "image documents have no text layer"}
	default:
		return "", &ExtractionError{Format: format, Reason: "unsupported document format"}
	}
}

// ResolveMimeType picks the document format from the declared MIME type,
// then the file extension, then the content itself.
func ResolveMimeType(doc models.Document) string {
	declared := strings.ToLower(strings.TrimSpace(doc.MimeType))
	if i := strings.Index(declared, ";"); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	switch declared {
	case MimePDF, MimeDOCX, MimeText, MimePNG, MimeJPEG, MimeWEBP:
		return declared
	case "image/jpg":
		return MimeJPEG
	}

	switch strings.ToLower(filepath.Ext(doc.Filename)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	case ".txt", ".md":
		return MimeText
	case ".png":
		return MimePNG
	case ".jpg", ".jpeg":
		return MimeJPEG
	case ".webp":
		return MimeWEBP
	}

	if bytes.HasPrefix(doc.Data, []byte("%PDF-")) {
		return MimePDF
	}
	sniffed := http.DetectContentType(doc.Data)
	if i := strings.Index(sniffed, ";"); i >= 0 {
		sniffed = sniffed[:i]
	}
	if sniffed == "application/zip" {
		return MimeDOCX
	}
	if sniffed == "application/octet-stream" && declared != "" {
		return declared
	}
	return sniffed
}

func extractPDFText(data []byte) (text string, err error) {
	// The pdf package panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ExtractionError{Format: MimePDF, Reason: fmt.Sprintf("corrupt document structure: %v", r)}
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Format: MimePDF, Reason: "failed to open PDF", Cause: err}
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>`)
	docxBreak        = regexp.MustCompile(`<w:(br|cr)[^>]*/>`)
	docxTab          = regexp.MustCompile(`<w:tab[^>]*/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
	xmlEntities      = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")
)

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Format: MimeDOCX, Reason: "failed to open DOCX", Cause: err}
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	content = docxParagraphEnd.ReplaceAllString(content, "\n")
	content = docxBreak.ReplaceAllString(content, "\n")
	content = docxTab.ReplaceAllString(content, "\t")
	content = xmlTag.ReplaceAllString(content, "")

	return xmlEntities.Replace(content), nil
}

var (
	horizontalSpace = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// CleanText collapses runs of blanks and blank lines and trims the result.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = horizontalSpace.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")

	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
