package models

// Document is an uploaded résumé held in memory for the lifetime of one request.
type Document struct {
	Filename string
	MimeType string
	Data     []byte `validate:"required"`
}

func (d Document) Size() int {
	return len(d.Data)
}

type TextSource string

const (
	TextSourceStructural TextSource = "structural"
	TextSourceOptical    TextSource = "optical"
)

// ExtractedText is the résumé text fed to exactly one prompt build.
type ExtractedText struct {
	Content string
	Source  TextSource
}
