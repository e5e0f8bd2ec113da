package synthesis

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
	"github.com/thecoder8890/neuralnotes.io/internal/technology"
)

// allProfiles returns every registered profile plus the unknown profile.
func allProfiles() []*domain.TechnologyProfile {
	registry := technology.Default()
	return append(registry.Profiles(), registry.Unknown())
}

func assertValidFiles(t *testing.T, files []domain.GeneratedFile) {
	t.Helper()
	require.NotEmpty(t, files)

	seen := make(map[string]bool)
	for _, f := range files {
		assert.NoError(t, domain.ValidateFilePath(f.Path))
		assert.True(t, f.Kind.IsValid(), "kind of %s", f.Path)
		assert.False(t, seen[f.Path], "duplicate %s", f.Path)
		assert.NotContains(t, f.Path, "{{")
		assert.NotContains(t, f.Content, "{{")
		seen[f.Path] = true
	}
	assert.True(t, seen[ReadmePath], "README.md missing")
}

func TestTemplate_EveryProfile(t *testing.T) {
	synth := NewTemplate(technology.Default().Unknown())

	for _, profile := range allProfiles() {
		t.Run(string(profile.ID), func(t *testing.T) {
			result, err := synth.Synthesize(context.Background(), driven.SynthesisRequest{
				Prompt:  "Build an API with CRUD for orders",
				Profile: profile,
			})
			require.NoError(t, err)

			assert.Equal(t, domain.StrategyTemplate, result.Strategy)
			assert.Empty(t, result.Warnings)
			assert.NotEmpty(t, result.Instructions)
			assertValidFiles(t, result.Files)
		})
	}
}

func TestTemplate_SpringBootScenario(t *testing.T) {
	registry := technology.Default()
	profile, _ := technology.NewResolver(registry).Resolve("", "Create a Spring Boot REST API with CRUD for User")

	result, err := NewTemplate(registry.Unknown()).Synthesize(context.Background(), driven.SynthesisRequest{
		Prompt:  "Create a Spring Boot REST API with CRUD for User",
		Profile: profile,
	})
	require.NoError(t, err)

	paths := make(map[string]domain.GeneratedFile)
	for _, f := range result.Files {
		paths[f.Path] = f
	}
	require.Contains(t, paths, "pom.xml")
	assert.Equal(t, domain.FileKindBuild, paths["pom.xml"].Kind)
	assert.Contains(t, paths["pom.xml"].Content, "<artifactId>user-app</artifactId>")

	controller, ok := paths["src/main/java/com/example/userapp/controller/UserController.java"]
	require.True(t, ok, "controller missing from %v", result.Files)
	assert.Contains(t, controller.Content, "@RestController")
	assert.Contains(t, controller.Content, `@RequestMapping("/api/users")`)
	assert.Contains(t, result.Instructions, "mvn spring-boot:run")
}

func TestTemplate_Unknown(t *testing.T) {
	for _, synth := range []*Template{NewTemplate(nil), NewTemplate(technology.Default().Unknown())} {
		result, err := synth.Synthesize(context.Background(), driven.SynthesisRequest{Prompt: "something vague"})
		require.NoError(t, err)

		require.Len(t, result.Files, 2)
		assert.Equal(t, "src/main.txt", result.Files[0].Path)
		assert.Empty(t, result.Files[0].Content)
		assert.Equal(t, ReadmePath, result.Files[1].Path)
		assert.True(t, strings.HasPrefix(result.Files[1].Content, "# demo-app"))
	}
}

func TestTemplate_Deterministic(t *testing.T) {
	synth := NewTemplate(nil)
	req := driven.SynthesisRequest{Prompt: "flask api for books", Profile: allProfiles()[0]}

	a, err := synth.Synthesize(context.Background(), req)
	require.NoError(t, err)
	b, err := synth.Synthesize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTemplate_BrokenPlaceholderIsKept(t *testing.T) {
	profile := &domain.TechnologyProfile{
		ID:   "custom",
		Name: "Custom",
		Skeleton: []domain.SkeletonFile{
			{Path: "main.go", Kind: domain.FileKindSource, Content: "package {{.Nope}}"},
		},
	}

	result, err := NewTemplate(nil).Synthesize(context.Background(), driven.SynthesisRequest{Profile: profile})
	require.NoError(t, err)
	assert.Equal(t, "package {{.Nope}}", result.Files[0].Content)
	assert.Len(t, result.Warnings, 1)
}

func TestTemplate_FeatureFlagsShapeProjects(t *testing.T) {
	const (
		plain    = "CRUD for users"
		featured = "CRUD for users with a PostgreSQL database, JWT auth, routing and API fetch"
	)
	tests := []struct {
		id      domain.TechnologyID
		markers []string
	}{
		{domain.TechnologySpringBoot, []string{"spring-boot-starter-data-jpa", "org.postgresql", "spring-boot-starter-security", "@Entity"}},
		{domain.TechnologyReact, []string{"react-router-dom", "axios", "BrowserRouter"}},
		{domain.TechnologyFlask, []string{"Flask-SQLAlchemy", "psycopg2-binary", "Flask-JWT-Extended", "@jwt_required()"}},
		{domain.TechnologyDjango, []string{"psycopg2-binary", "rest_framework", "django.db.backends.postgresql"}},
		{domain.TechnologyExpress, []string{"jsonwebtoken", `"pg":`, "authenticate"}},
		{domain.TechnologyNextJS, []string{"next-auth"}},
	}

	registry := technology.Default()
	synth := NewTemplate(registry.Unknown())
	generate := func(t *testing.T, profile *domain.TechnologyProfile, prompt string) ([]string, string) {
		result, err := synth.Synthesize(context.Background(), driven.SynthesisRequest{Prompt: prompt, Profile: profile})
		require.NoError(t, err)
		assertValidFiles(t, result.Files)

		var paths []string
		var all strings.Builder
		for _, f := range result.Files {
			paths = append(paths, f.Path)
			all.WriteString(f.Content)
		}
		return paths, all.String()
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			profile, ok := registry.Get(tt.id)
			require.True(t, ok)

			plainPaths, plainContent := generate(t, profile, plain)
			featuredPaths, featuredContent := generate(t, profile, featured)

			assert.Equal(t, plainPaths, featuredPaths)
			for _, marker := range tt.markers {
				assert.Contains(t, featuredContent, marker)
				assert.NotContains(t, plainContent, marker)
			}
		})
	}
}

func TestTemplate_ExpressPicksOneDatabaseDriver(t *testing.T) {
	profile, ok := technology.Default().Get(domain.TechnologyExpress)
	require.True(t, ok)
	synth := NewTemplate(technology.Default().Unknown())

	content := func(prompt string) string {
		result, err := synth.Synthesize(context.Background(), driven.SynthesisRequest{Prompt: prompt, Profile: profile})
		require.NoError(t, err)
		for _, f := range result.Files {
			if f.Path == "package.json" {
				return f.Content
			}
		}
		t.Fatalf("package.json missing")
		return ""
	}

	sqlite := content("CRUD for users backed by a database")
	assert.Contains(t, sqlite, "better-sqlite3")
	assert.NotContains(t, sqlite, `"pg":`)

	postgres := content("CRUD for users on postgres")
	assert.Contains(t, postgres, `"pg":`)
	assert.NotContains(t, postgres, "better-sqlite3")
}
