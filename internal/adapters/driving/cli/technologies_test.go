package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTechnologiesCmd_ListsProfiles(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "technologies")

	require.NoError(t, err)
	for _, p := range generationService.Technologies() {
		assert.Contains(t, out, string(p.ID))
		assert.Contains(t, out, p.Name)
	}
	assert.Contains(t, out, "spring_boot")
	assert.Contains(t, out, "keywords:")
}

func TestTechnologiesCmd_Alias(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "tech")

	require.NoError(t, err)
	assert.Contains(t, out, "flask")
}
