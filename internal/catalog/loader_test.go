package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileEmptyPathUsesBuiltin(t *testing.T) {
	c, err := LoadFile("")
	require.NoError(t, err)
	first, err := c.FirstStage(EntityTypeProject)
	require.NoError(t, err)
	assert.Equal(t, StageOnboarding, first)
}

func TestLoadFileParsesYAML(t *testing.T) {
	src := `
stages:
  project:
    - Briefing
    - Delivery
groups:
  - id: brief
    name: Briefing
    stage: Briefing
    advances_stage: true
    substages:
      - id: intake_call
        label: Intake Call
        kind: boolean
        tat_days: 2
      - id: scoping
        label: Scoping
        kind: percentage
        tat_days: 5
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)

	first, err := c.FirstStage(EntityTypeProject)
	require.NoError(t, err)
	assert.Equal(t, "Briefing", first)

	ss, err := c.SubStage("scoping")
	require.NoError(t, err)
	assert.Equal(t, KindPercentage, ss.Kind)
	assert.Equal(t, 5, c.TATDays("scoping"))

	pred, ok, err := c.Predecessor("scoping")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "intake_call", pred.ID)
}

func TestLoadFileRejectsInvalidCatalog(t *testing.T) {
	src := `
stages:
  project: []
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	_, err := LoadFile(path)
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
