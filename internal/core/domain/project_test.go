package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		path   string
		reason string
	}{
		{"README.md", ""},
		{"src/main/java/com/example/Application.java", ""},
		{".gitignore", ""},
		{"", "empty path"},
		{"   ", "empty path"},
		{"/etc/passwd", "absolute path"},
		{"../outside.txt", "parent directory segment"},
		{"src/../../x", "parent directory segment"},
		{"src\\main.c", "contains backslash"},
		{"a\x00b", "contains NUL byte"},
		{"C:/windows", "drive letter"},
		{"src//main.go", "empty or dot segment"},
		{"./main.go", "empty or dot segment"},
		{"src/", "names a directory"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := ValidateFilePath(tt.path)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidFilePath))

			var pathErr *InvalidFilePathError
			require.True(t, errors.As(err, &pathErr))
			assert.Equal(t, tt.path, pathErr.Path)
			assert.Equal(t, tt.reason, pathErr.Reason)
			assert.Equal(t, CodeInvalidFilePath, ErrorCode(err))
		})
	}
}

func TestKindForPath(t *testing.T) {
	tests := []struct {
		path string
		want FileKind
	}{
		{"pom.xml", FileKindBuild},
		{"frontend/package.json", FileKindBuild},
		{"requirements.txt", FileKindBuild},
		{"README.md", FileKindDocs},
		{"public/index.html", FileKindMarkup},
		{"src/main/resources/application.properties", FileKindConfig},
		{"tsconfig.json", FileKindConfig},
		{"src/test/java/com/example/ApplicationTests.java", FileKindTest},
		{"tests/test_app.py", FileKindTest},
		{"src/App.test.js", FileKindTest},
		{"src/latest.js", FileKindSource},
		{"app.py", FileKindSource},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, KindForPath(tt.path))
		})
	}
}

func TestProjectBundle_ArchiveName(t *testing.T) {
	b := &ProjectBundle{ID: "abc123"}
	assert.Equal(t, "project_abc123.zip", b.ArchiveName())
}
