package markdown

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
)

var guide = strings.ReplaceAll(`---
layout: guide
---
# Express Quickstart

Install **Express** with _npm_ and see [the docs](https://expressjs.com).

## Routing

- define 'app.get'
- call 'app.listen'

'''js
const app = express();
app.listen(3000);
'''

> Note: use snake_case_names in config.
`, "'", "`")

func TestSupportedTypes(t *testing.T) {
	normaliser := New()

	assert.Equal(t, []string{"text/markdown", "text/x-markdown"}, normaliser.SupportedMIMETypes())
	assert.Equal(t, []string{".md", ".markdown"}, normaliser.SupportedExtensions())
	assert.Equal(t, 50, normaliser.Priority())
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawDocument{URI: "express.md", MIMEType: "text/markdown", Content: []byte(guide)}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "Express Quickstart", doc.Title)
	assert.NotContains(t, doc.Content, "layout: guide")
	assert.Contains(t, doc.Content, "Install Express with npm and see the docs.")
	assert.Contains(t, doc.Content, "\n\nRouting\n\n")
	assert.Contains(t, doc.Content, "define app.get")
	assert.Contains(t, doc.Content, "const app = express();")
	assert.NotContains(t, doc.Content, "```")
	assert.Contains(t, doc.Content, "snake_case_names")
	assert.Equal(t, "markdown", doc.Metadata["format"])
}

func TestNormalise_TitleFallback(t *testing.T) {
	raw := &domain.RawDocument{URI: "docs/django-models.md", Content: []byte("Models map to tables.")}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "django models", result.Document.Title)
}

func TestNormalise_EmptyContent(t *testing.T) {
	raw := &domain.RawDocument{URI: "empty.md", Content: []byte("---\n\n***\n")}

	_, err := New().Normalise(context.Background(), raw)
	assert.ErrorIs(t, err, domain.ErrUnreadableSource)
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = New()
}
