package tournament

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProject(t *testing.T, dir, filename, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(content), 0o644))
}

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "alpha.json", `{"project_name": "alpha", "description": "storage"}`)
	writeProject(t, dir, "beta.json", `{"project_name": "beta", "description": "retrieval"}`)
	writeProject(t, dir, "notes.txt", "not a project file")

	registry, err := LoadRegistry(dir)
	require.NoError(t, err)

	assert.Equal(t, 2, registry.Len())
	assert.Equal(t, []string{"alpha", "beta"}, registry.Names())

	payload, ok := registry.Payload("alpha")
	require.True(t, ok)
	assert.Contains(t, string(payload), "storage")

	_, ok = registry.Payload("nobody")
	assert.False(t, ok)
}

func TestLoadRegistry_TrimsNames(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "alpha.json", `{"project_name": "  alpha  "}`)
	writeProject(t, dir, "beta.json", `{"project_name": "beta"}`)

	registry, err := LoadRegistry(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, registry.Names())
}

func TestLoadRegistry_MissingName(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "alpha.json", `{"description": "no name"}`)
	writeProject(t, dir, "beta.json", `{"project_name": "beta"}`)

	_, err := LoadRegistry(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing project_name")
}

func TestLoadRegistry_DuplicateName(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "alpha.json", `{"project_name": "alpha"}`)
	writeProject(t, dir, "alpha2.json", `{"project_name": "alpha"}`)

	_, err := LoadRegistry(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate project_name")
}

func TestLoadRegistry_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "alpha.json", `{"project_name": `)

	_, err := LoadRegistry(dir)
	assert.Error(t, err)
}

func TestLoadRegistry_TooFewProjects(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, dir string)
	}{
		{name: "empty directory", setup: func(*testing.T, string) {}},
		{
			name: "single project",
			setup: func(t *testing.T, dir string) {
				writeProject(t, dir, "alpha.json", `{"project_name": "alpha"}`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)

			_, err := LoadRegistry(dir)
			assert.ErrorIs(t, err, ErrTooFewProjects)
		})
	}
}
