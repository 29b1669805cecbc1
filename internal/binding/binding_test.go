package binding_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkbridge/native-body-rebuilder/internal/binding"
)

func TestIndexDirRecoversFunctionAndConstDeclarations(t *testing.T) {
	root := t.TempDir()
	cppDir := filepath.Join(root, "entry", "src", "main", "cpp")
	require.NoError(t, os.MkdirAll(cppDir, 0o755))

	content := "export function add(a: number, b: number): number;\n" +
		"export const VERSION: string;\n" +
		"export function greet(name: string): void;\n"
	require.NoError(t, os.WriteFile(filepath.Join(cppDir, "index.d.ts"), []byte(content), 0o600))

	idx, err := binding.IndexDir(root, binding.DefaultGlob)
	require.NoError(t, err)

	add := idx.Lookup("cpp", "add")
	require.NotNil(t, add)
	assert.Equal(t, []string{"number", "number"}, add.ParamTypes)
	assert.Equal(t, "number", add.ReturnType)

	greet := idx.Lookup("cpp", "greet")
	require.NotNil(t, greet)
	assert.Equal(t, []string{"string"}, greet.ParamTypes)
	assert.Equal(t, "void", greet.ReturnType)

	version := idx.Lookup("cpp", "VERSION")
	require.NotNil(t, version)
	assert.Equal(t, "string", version.ReturnType)

	assert.Nil(t, idx.Lookup("cpp", "missing"))
}

func TestIndexDirIgnoresFilesOutsideGlob(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.d.ts"), []byte("export function add(a: number): number;\n"), 0o600))

	idx, err := binding.IndexDir(root, binding.DefaultGlob)
	require.NoError(t, err)
	assert.Empty(t, idx.Libraries())
}
