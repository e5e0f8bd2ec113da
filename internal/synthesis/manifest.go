package synthesis

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
)

// ManifestSchema is the JSON schema a model response must satisfy.
// "name" and "type" are accepted as aliases of "path" and "kind";
// any "structure" field is ignored since the tree is derived from paths.
const ManifestSchema = `{
  "type": "object",
  "required": ["files"],
  "properties": {
    "files": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["content"],
        "anyOf": [{"required": ["path"]}, {"required": ["name"]}],
        "properties": {
          "path": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1},
          "content": {"type": "string"},
          "kind": {"type": "string"},
          "type": {"type": "string"}
        }
      }
    },
    "instructions": {"type": "string"}
  }
}`

// Manifest is the parsed form of a model response.
type Manifest struct {
	Files        []ManifestFile `json:"files"`
	Instructions string         `json:"instructions"`
}

// ManifestFile is one file entry of a manifest.
type ManifestFile struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Kind    string `json:"kind"`
	Type    string `json:"type"`
}

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func manifestSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(ManifestSchema))
	})
	return schema, schemaErr
}

// ParseManifest extracts and validates the JSON manifest in a model
// response. The JSON may be wrapped in a Markdown fence or surrounded by
// prose. Failures wrap domain.ErrMalformedResponse.
func ParseManifest(response string) (*Manifest, error) {
	payload, ok := extractJSON(response)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in response", domain.ErrMalformedResponse)
	}

	s, err := manifestSchema()
	if err != nil {
		return nil, fmt.Errorf("compile manifest schema: %w", err)
	}
	result, err := s.Validate(gojsonschema.NewStringLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, fmt.Errorf("%w: manifest failed validation: %s",
			domain.ErrMalformedResponse, strings.Join(details, "; "))
	}

	var m Manifest
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return &m, nil
}

// GeneratedFiles converts manifest entries to generated files. Paths are cleaned and
// validated; kinds default to one inferred from the path.
func (m *Manifest) GeneratedFiles() ([]domain.GeneratedFile, error) {
	files := make([]domain.GeneratedFile, 0, len(m.Files))
	for _, mf := range m.Files {
		p := mf.Path
		if p == "" {
			p = mf.Name
		}
		cleaned, err := cleanPath(p)
		if err != nil {
			return nil, err
		}
		kind := domain.FileKind(strings.ToLower(strings.TrimSpace(mf.Kind)))
		if !kind.IsValid() {
			kind = domain.FileKind(strings.ToLower(strings.TrimSpace(mf.Type)))
		}
		if !kind.IsValid() {
			kind = domain.KindForPath(cleaned)
		}
		files = append(files, domain.GeneratedFile{Path: cleaned, Content: mf.Content, Kind: kind})
	}
	return files, nil
}

// extractJSON returns the first candidate in text that is valid JSON:
// the whole text, the body of a leading code fence, then the span from
// the first '{' to the last '}'.
func extractJSON(text string) (string, bool) {
	text = strings.TrimSpace(text)
	candidates := []string{text}

	if strings.HasPrefix(text, "```") {
		body := text
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			body = body[nl+1:]
		}
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
		candidates = append(candidates, strings.TrimSpace(body))
	}
	if start, end := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}'); start >= 0 && end > start {
		candidates = append(candidates, text[start:end+1])
	}

	for _, c := range candidates {
		if c != "" && json.Valid([]byte(c)) {
			return c, true
		}
	}
	return "", false
}
