package summary_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arkbridge/native-body-rebuilder/internal/rlog"
	"github.com/arkbridge/native-body-rebuilder/internal/summary"
)

func writeDoc(t *testing.T, dir, name, moduleName string) {
	t.Helper()

	content := `{"hap_name":"entry","so_name":"` + name + `.so","module_name":"` + moduleName + `","functions":[]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), []byte(content), 0o600))
}

func TestLoadDirLoadsConcurrentlyAndDedupsModules(t *testing.T) {
	dir := t.TempDir()

	writeDoc(t, dir, "liba", "shared")
	writeDoc(t, dir, "libb", "unique")
	writeDoc(t, dir, "libc", "shared")

	var buf bytes.Buffer
	logger := rlog.New(&buf)

	modules, err := summary.LoadDir(dir, 2, logger)
	require.NoError(t, err)
	require.Len(t, modules, 2)

	names := map[string]bool{}
	for _, m := range modules {
		names[m.ModuleName] = true
	}
	require.True(t, names["shared"])
	require.True(t, names["unique"])
}
