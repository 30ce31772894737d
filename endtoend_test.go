package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"testing"

	"github.com/cottand/strux/internal/config"
	"github.com/cottand/strux/strux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// embeds the test programs
//
//go:embed testdata
var testSet embed.FS

// format is as follows:
//
//	//strux:expect E2322@3:5 E2304
//
// where each entry is a code, optionally followed by the line and column it
// is reported at
func extractExpectations(t *testing.T, src string) []string {
	firstLine := strings.Split(src, "\n")[0]
	if !strings.HasPrefix(firstLine, "//strux:expect") {
		t.Fatalf("could not parse expectation comment: '%v'", firstLine)
	}
	return strings.Fields(strings.TrimPrefix(firstLine, "//strux:expect"))
}

func TestRootEndToEnd(t *testing.T) {
	testDir(t, "testdata")
}

func TestNarrowingEndToEnd(t *testing.T) {
	testDir(t, "testdata/narrowing")
}

func testDir(t *testing.T, dir string) {
	files, err := testSet.ReadDir(dir)
	require.NoError(t, err)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".ts") {
			continue
		}
		testFile(t, dir, f)
	}
}

func testFile(t *testing.T, dir string, f fs.DirEntry) bool {
	return t.Run(f.Name(), func(t *testing.T) {
		content, err := testSet.ReadFile(path.Join(dir, f.Name()))
		require.NoError(t, err)
		want := extractExpectations(t, string(content))

		p, err := strux.NewProgram([]strux.File{{Name: f.Name(), Source: string(content)}}, nil, config.Default())
		require.NoError(t, err)
		defer p.Close()
		bag, err := p.Check(context.Background())
		require.NoError(t, err)
		assert.Empty(t, p.Failures)

		var got []string
		for _, d := range bag.Sorted() {
			entry := d.Code.String()
			if pos := p.FileSet().Position(d.Range.PosStart); pos.IsValid() {
				entry += fmt.Sprintf("@%d:%d", pos.Line, pos.Column)
			}
			got = append(got, entry)
		}
		require.Len(t, got, len(want), "diagnostics: %v", got)
		for i, w := range want {
			if strings.Contains(w, "@") {
				assert.Equal(t, w, got[i])
			} else {
				assert.Equal(t, w, strings.Split(got[i], "@")[0])
			}
		}
	})
}
