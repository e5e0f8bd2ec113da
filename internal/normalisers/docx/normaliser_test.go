package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

// createTestDOCX creates a minimal valid DOCX file in memory.
func createTestDOCX(documentXML, coreXML string) []byte {
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	contentTypes, _ := w.Create("[Content_Types].xml")
	contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))

	if documentXML != "" {
		doc, _ := w.Create("word/document.xml")
		doc.Write([]byte(documentXML))
	}
	if coreXML != "" {
		core, _ := w.Create("docProps/core.xml")
		core.Write([]byte(coreXML))
	}

	w.Close()
	return buf.Bytes()
}

func body(paragraphs string) string {
	return `<?xml version="1.0" encoding="UTF-8"?><w:document ` + wordNS + `><w:body>` +
		paragraphs + `</w:body></w:document>`
}

func TestSupportedTypes(t *testing.T) {
	normaliser := New()

	assert.Equal(t, []string{MIMEType}, normaliser.SupportedMIMETypes())
	assert.Equal(t, []string{".docx"}, normaliser.SupportedExtensions())
	assert.Equal(t, 50, normaliser.Priority())
}

func TestNormalise_Success(t *testing.T) {
	coreXML := `<?xml version="1.0" encoding="UTF-8"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">
<dc:title>Flask Quickstart</dc:title>
</cp:coreProperties>`

	raw := &domain.RawDocument{
		URI:      "quickstart.docx",
		MIMEType: MIMEType,
		Content:  createTestDOCX(body(`<w:p><w:r><w:t>Hello World</w:t></w:r></w:p>`), coreXML),
		Metadata: map[string]any{"uploaded_by": "cli"},
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "Flask Quickstart", doc.Title)
	assert.Equal(t, "Hello World", doc.Content)
	assert.Equal(t, MIMEType, doc.ContentType)
	assert.Equal(t, int64(len(raw.Content)), doc.Size)
	assert.Equal(t, "docx", doc.Metadata["format"])
	assert.Equal(t, "cli", doc.Metadata["uploaded_by"])
}

func TestNormalise_TitleFallbackToFilename(t *testing.T) {
	raw := &domain.RawDocument{
		URI:     "/docs/my_api-guide.docx",
		Content: createTestDOCX(body(`<w:p><w:r><w:t>Body</w:t></w:r></w:p>`), ""),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "my api guide", result.Document.Title)
}

func TestNormalise_ParagraphsAndRuns(t *testing.T) {
	paragraphs := `<w:p><w:r><w:t>Install </w:t></w:r><w:r><w:t>Express</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Run</w:t><w:tab/><w:t>npm start</w:t></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>port</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`

	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:     "express.docx",
		Content: createTestDOCX(body(paragraphs), ""),
	})
	require.NoError(t, err)
	assert.Equal(t, "Install Express\n\nRun npm start\n\nport", result.Document.Content)
}

func TestNormalise_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raw     *domain.RawDocument
		wantErr error
	}{
		{"nil document", nil, domain.ErrInvalidInput},
		{"not a zip", &domain.RawDocument{URI: "a.docx", Content: []byte("plain")}, domain.ErrUnreadableSource},
		{"missing body", &domain.RawDocument{URI: "a.docx", Content: createTestDOCX("", "")}, domain.ErrUnreadableSource},
		{"empty body", &domain.RawDocument{URI: "a.docx", Content: createTestDOCX(body(""), "")}, domain.ErrUnreadableSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := New().Normalise(context.Background(), tt.raw)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, result)
		})
	}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}
