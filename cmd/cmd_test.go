package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/internal/config"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadOptionsLayers(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "strux.toml", `
strict_inference = true
max_relation_depth = 12
`)
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddOptionFlags(flags)
	require.NoError(t, flags.Parse([]string{"--max-relation-depth=20"}))
	configPath = file
	t.Cleanup(func() { configPath = "" })
	t.Setenv("STRUX_NO_TRUNCATION", "true")

	opts, err := loadOptions()
	require.NoError(t, err)
	assert.True(t, opts.StrictInference, "from the file")
	assert.Equal(t, 20, opts.MaxRelationDepth, "flag over file")
	assert.True(t, opts.NoTruncation, "from the environment")
	assert.True(t, opts.StrictNullChecks, "default")
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.ts", `const a = 1;`)
	writeFile(t, dir, "lib/b.ts", `const b = 2;`)
	writeFile(t, dir, "notes.txt", `not source`)

	files, err := readFiles([]string{dir})
	require.NoError(t, err)
	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f.Name))
	}
	assert.ElementsMatch(t, []string{"a.ts", "b.ts"}, names)

	_, err = readFiles([]string{filepath.Join(dir, "missing.ts")})
	assert.Error(t, err)
}

func TestCheckSessionMetrics(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.ts", `let x: number = "a";`)
	files, err := readFiles([]string{path})
	require.NoError(t, err)

	res, err := checkSession(context.Background(), files, config.Default())
	require.NoError(t, err)
	assert.Equal(t, []diag.Code{diag.NotAssignable}, res.bag.Codes())
	assert.Equal(t, len(`let x: number = "a";`), res.bytes)

	buf := &bytes.Buffer{}
	require.NoError(t, writeMetrics(buf, res.program))
	assert.Contains(t, buf.String(), "strux_session_files_total 1")
	assert.Contains(t, buf.String(), `strux_session_diagnostics_total{category="error"} 1`)
}

func TestFormatDiagnostic(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.ts", `let x: number = "a";`)
	files, err := readFiles([]string{path})
	require.NoError(t, err)
	res, err := checkSession(context.Background(), files, config.Default())
	require.NoError(t, err)
	d := res.bag.Sorted()[0]

	plain := formatDiagnostic(res.program, d, false)
	assert.Contains(t, plain, "a.ts:1:5: error (E2322)")
	assert.Equal(t, ansiRed+plain+ansiReset, formatDiagnostic(res.program, d, true))
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "1 file", plural(1, "file"))
	assert.Equal(t, "1,200 errors", plural(1200, "error"))
	assert.False(t, useColor("auto", &bytes.Buffer{}))
	assert.True(t, useColor("always", &bytes.Buffer{}))
}
