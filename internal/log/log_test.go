package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(&filteringHandler{underlying: slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})})
}

func TestSectionFiltering(t *testing.T) {
	defer EnableSections("session")

	t.Run("disabled section is dropped", func(t *testing.T) {
		buf := &bytes.Buffer{}
		EnableSections("binder")
		testLogger(buf).With("section", "checker").Debug("hidden")
		assert.Empty(t, buf.String())
	})

	t.Run("enabled section prefix is printed", func(t *testing.T) {
		buf := &bytes.Buffer{}
		EnableSections("checker")
		testLogger(buf).With("section", "checker.narrow").Debug("shown")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("section passed on the record", func(t *testing.T) {
		buf := &bytes.Buffer{}
		EnableSections("relate")
		testLogger(buf).Info("shown", "section", "relate")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("warnings always pass", func(t *testing.T) {
		buf := &bytes.Buffer{}
		EnableSections()
		testLogger(buf).With("section", "infer").Warn("careful")
		assert.Contains(t, buf.String(), "careful")
	})
}
