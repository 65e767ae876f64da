package diag

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, ParseLevel(tc.in), tc.in)
	}
}

func TestBuildLogger(t *testing.T) {
	var buf bytes.Buffer
	log := BuildLogger(&buf, "warn", true)
	log.Info("dropped")
	log.Warn("kept", ErrAttr(errors.New("bad")))

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"msg":"kept"`)
	assert.Contains(t, buf.String(), `"error":"bad"`)

	buf.Reset()
	BuildLogger(&buf, "info", false).Info("text")
	assert.Contains(t, buf.String(), "msg=text")
}

func TestTraceKeepsDepth(t *testing.T) {
	tr := NewTrace(3)
	for _, k := range []Kind{Edge, Interrupt, Edge, Interrupt, Observed} {
		tr.Record(k)
	}

	recent := tr.Recent()
	assert.Len(t, recent, 3)
	assert.Equal(t, []Kind{Edge, Interrupt, Observed}, []Kind{recent[0].Kind, recent[1].Kind, recent[2].Kind})
	assert.EqualValues(t, 3, recent[0].Seq)
	assert.EqualValues(t, 5, recent[2].Seq)

	assert.EqualValues(t, 2, tr.Count(Edge))
	assert.EqualValues(t, 2, tr.Count(Interrupt))
	assert.EqualValues(t, 1, tr.Count(Observed))
	assert.EqualValues(t, 0, tr.Count(Reaction))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "reaction", Reaction.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
