package halt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unwind struct{ err error }

func capture(t *testing.T, fn func()) (err error) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected Halt to unwind")
		err = r.(unwind).err
	}()
	fn()
	return nil
}

func TestHaltRunsHandler(t *testing.T) {
	reset()
	defer reset()

	calls := 0
	SetHandler(func(err error) {
		calls++
		panic(unwind{err})
	})

	first := errors.New("peripherals taken twice")
	got := capture(t, func() { Halt(first) })
	assert.Same(t, first, got)
	assert.True(t, Halted())
	assert.Equal(t, 1, calls)
}

func TestCheck(t *testing.T) {
	reset()
	defer reset()

	SetHandler(func(err error) { panic(unwind{err}) })
	assert.NotPanics(t, func() { Check(nil) })
	assert.False(t, Halted())

	boom := errors.New("boom")
	assert.Same(t, boom, capture(t, func() { Check(boom) }))
}
