package services

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"alfredoptarigan/skillbridge/internal/models"
)

// buildPDF writes a single-page PDF with one line of text per entry.
func buildPDF(t *testing.T, lines ...string) []byte {
	t.Helper()

	var content strings.Builder
	content.WriteString("BT /F1 12 Tf 72 720 Td")
	for i, line := range lines {
		if i > 0 {
			content.WriteString(" T*")
		}
		fmt.Fprintf(&content, " (%s) Tj", line)
	}
	content.WriteString(" ET")
	stream := content.String()

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefOffset)

	return buf.Bytes()
}

// buildDocx writes a minimal DOCX with one paragraph per entry.
func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body strings.Builder
	for _, p := range paragraphs {
		fmt.Fprintf(&body, "<w:p><w:r><w:t>%s</w:t></w:r></w:p>", p)
	}

	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() +
		`</w:body></w:document>`
	rels := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range map[string]string{
		"word/document.xml":            document,
		"word/_rels/document.xml.rels": rels,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

type fakeGemini struct {
	mu sync.Mutex

	textResponses []fakeResponse
	docResponse   fakeResponse

	textCalls    int
	docCalls     int
	lastSystem   string
	lastPrompt   string
	lastMimeType string
}

type fakeResponse struct {
	text string
	err  error
}

func (f *fakeGemini) GenerateText(_ context.Context, systemInstruction, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.textCalls++
	f.lastSystem = systemInstruction
	f.lastPrompt = prompt

	if len(f.textResponses) == 0 {
		return "", fmt.Errorf("no scripted response")
	}
	idx := f.textCalls - 1
	if idx >= len(f.textResponses) {
		idx = len(f.textResponses) - 1
	}
	r := f.textResponses[idx]
	return r.text, r.err
}

func (f *fakeGemini) GenerateFromDocument(_ context.Context, _ string, _ []byte, mimeType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.docCalls++
	f.lastMimeType = mimeType
	return f.docResponse.text, f.docResponse.err
}

type fakeRecorder struct {
	runs []*models.AnalysisRun
}

func (f *fakeRecorder) Record(_ context.Context, run *models.AnalysisRun) {
	f.runs = append(f.runs, run)
}

const validAnalysisJSON = `{
  "matchScore": 72,
  "matchedSkills": [
    {"skill": "Go", "proficiency": 88, "evidence": "Five years building Go services"}
  ],
  "missingSkills": [
    {"skill": "Docker", "priority": "high", "reason": "Required for containerization", "learnResource": "https://docs.docker.com/get-started/"}
  ],
  "summary": "Solid backend candidate with a container gap.",
  "topRecommendation": "Containerize one of your Go services."
}`
