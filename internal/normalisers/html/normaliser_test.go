package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
)

func TestSupportedTypes(t *testing.T) {
	normaliser := New()

	assert.ElementsMatch(t, []string{"text/html", "application/xhtml+xml"}, normaliser.SupportedMIMETypes())
	assert.Contains(t, normaliser.SupportedExtensions(), ".htm")
	assert.Equal(t, 50, normaliser.Priority())
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "https://spring.io/guides/rest",
		MIMEType: "text/html",
		Content: []byte(`<html><head><title>Building a REST service</title>
<style>body { color: red }</style><script>var x = "hidden";</script></head>
<body><h1>REST &amp; Spring</h1><p>Create a <b>controller</b>.</p><p>Run it.</p>
<pre>@GetMapping("/users")
List&lt;User&gt; all()</pre></body></html>`),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "Building a REST service", doc.Title)
	assert.Equal(t, raw.URI, doc.URI)
	assert.Equal(t, "text/html", doc.ContentType)
	assert.Contains(t, doc.Content, "REST & Spring")
	assert.Contains(t, doc.Content, "Create a controller .")
	assert.Contains(t, doc.Content, "List<User> all()")
	assert.NotContains(t, doc.Content, "hidden")
	assert.NotContains(t, doc.Content, "color: red")
	assert.Contains(t, doc.Content, "\n\nRun it.")
	assert.Equal(t, "html", doc.Metadata["format"])
}

func TestNormalise_TitleFallback(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/tmp/flask-quickstart.html",
		MIMEType: "text/html",
		Content:  []byte("<p>Hello</p>"),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "flask quickstart", result.Document.Title)
}

func TestNormalise_NoText(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "empty.html",
		MIMEType: "text/html",
		Content:  []byte("<html><script>only()</script></html>"),
	}

	_, err := New().Normalise(context.Background(), raw)
	assert.ErrorIs(t, err, domain.ErrUnreadableSource)
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = New()
}
