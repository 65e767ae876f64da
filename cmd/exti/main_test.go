package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestBoards(t *testing.T) {
	out := execute(t, "boards")
	assert.Contains(t, out, "nucleo-f767zi")
	assert.Contains(t, out, "PC13")
}

func TestRun(t *testing.T) {
	out := execute(t, "run", "--board", "nucleo-f767zi", "--presses", "3", "--interval", "20ms", "--level", "error", "--wfi")
	assert.Contains(t, out, "3 presses, 3 interrupts")
	assert.Contains(t, out, "led PB0: on")
}
