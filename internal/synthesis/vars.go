package synthesis

import (
	"bytes"
	"regexp"
	"strings"
	"text/template"
	"unicode"

	"github.com/thecoder8890/neuralnotes.io/internal/technology"
)

// DefaultEntity is used when no entity can be read from the prompt.
const DefaultEntity = "Item"

// DefaultProjectName is used when the prompt yields no usable name.
const DefaultProjectName = "demo-app"

// Vars are the placeholder values available to skeleton templates.
type Vars struct {
	ProjectName string
	Description string
	Entity      string
	EntityLower string
	Package     string
	PackagePath string

	// Features requested in the prompt. Skeletons switch optional
	// dependencies and code on them; the file layout does not change.
	Database   bool
	Postgres   bool
	Auth       bool
	Router     bool
	HTTPClient bool
}

var (
	databaseWords   = []string{"database", "db", "jpa", "sql", "sqlite", "mysql", "orm", "hibernate", "sqlalchemy", "persistence", "persistent"}
	postgresWords   = []string{"postgres", "postgresql", "psql"}
	authWords       = []string{"auth", "authentication", "authorization", "jwt", "login", "oauth"}
	routerWords     = []string{"router", "routing", "navigation"}
	httpClientWords = []string{"api", "apis", "fetch", "axios", "backend"}
)

var entityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:crud|apis?|endpoints?|service|resources?|management)\s+(?:for|of|on)\s+(?:an?\s+|the\s+)?([a-z][a-z0-9]*)`),
	regexp.MustCompile(`(?i)\bmanag(?:e|es|ing)\s+(?:an?\s+|the\s+|my\s+)?([a-z][a-z0-9]*)`),
	regexp.MustCompile(`(?i)\b([a-z][a-z0-9]*)\s+(?:entity|model|resource|management|crud)\b`),
}

// genericWords never name an entity.
var genericWords = map[string]bool{
	"a": true, "an": true, "the": true, "my": true, "new": true, "simple": true, "basic": true,
	"rest": true, "api": true, "app": true, "application": true, "data": true, "web": true,
	"with": true, "and": true, "crud": true, "full": true, "small": true,
}

// NewVars derives placeholder values from the prompt. projectName wins
// over the derived name when it is not empty.
func NewVars(prompt, projectName string) Vars {
	entity := EntityFromPrompt(prompt)
	if projectName == "" {
		projectName = ProjectName(prompt)
	}
	pkg := "com.example." + javaIdentifier(projectName)
	postgres := technology.Mentions(prompt, postgresWords...)

	return Vars{
		ProjectName: projectName,
		Description: strings.Join(strings.Fields(prompt), " "),
		Entity:      entity,
		EntityLower: strings.ToLower(entity),
		Package:     pkg,
		PackagePath: strings.ReplaceAll(pkg, ".", "/"),
		Database:    postgres || technology.Mentions(prompt, databaseWords...),
		Postgres:    postgres,
		Auth:        technology.Mentions(prompt, authWords...),
		Router:      technology.Mentions(prompt, routerWords...),
		HTTPClient:  technology.Mentions(prompt, httpClientWords...),
	}
}

// EntityFromPrompt returns the primary domain entity named in the prompt in
// PascalCase, such as "User" for "CRUD for users".
func EntityFromPrompt(prompt string) string {
	for _, re := range entityPatterns {
		for _, m := range re.FindAllStringSubmatch(prompt, -1) {
			word := strings.ToLower(m[1])
			if genericWords[word] || strings.HasSuffix(word, "ing") {
				continue
			}
			return pascal(singular(word))
		}
	}
	return DefaultEntity
}

// ProjectName returns a filesystem-safe project name derived from the prompt.
func ProjectName(prompt string) string {
	entity := EntityFromPrompt(prompt)
	if entity == DefaultEntity {
		return DefaultProjectName
	}
	return strings.ToLower(entity) + "-app"
}

func singular(word string) string {
	switch {
	case len(word) > 4 && strings.HasSuffix(word, "ies"):
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "sses"), strings.HasSuffix(word, "xes"), strings.HasSuffix(word, "ches"):
		return word[:len(word)-2]
	case len(word) > 3 && strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss"):
		return word[:len(word)-1]
	}
	return word
}

func pascal(word string) string {
	r := []rune(word)
	if len(r) == 0 {
		return DefaultEntity
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func javaIdentifier(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	id := b.String()
	if id == "" || unicode.IsDigit(rune(id[0])) {
		id = "app" + id
	}
	return id
}

// render executes a template source with vars. On a template error the
// source is returned unchanged.
func render(name, src string, vars Vars) (string, error) {
	if !strings.Contains(src, "{{") {
		return src, nil
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return src, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return src, err
	}
	return buf.String(), nil
}
