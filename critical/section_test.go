package critical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// primask models a single global interrupt mask bit.
type primask struct {
	masked   bool
	enables  int
	disables int
}

func (p *primask) DisableInterrupts() State {
	p.disables++
	prev := Enabled
	if p.masked {
		prev = Masked
	}
	p.masked = true
	return prev
}

func (p *primask) EnableInterrupts(state State) {
	if state == Enabled {
		p.enables++
		p.masked = false
	}
}

func TestEnterExit(t *testing.T) {
	p := &primask{}
	cs := Enter(p)
	assert.True(t, p.masked)
	assert.True(t, cs.Active())
	assert.True(t, cs.Outermost())

	cs.Exit()
	assert.False(t, p.masked)
	assert.False(t, cs.Active())
	assert.Equal(t, 1, p.enables)
}

func TestNestedSectionKeepsOuterMasked(t *testing.T) {
	p := &primask{}
	Do(p, func(outer *Section) {
		Do(p, func(inner *Section) {
			assert.False(t, inner.Outermost())
		})
		assert.True(t, p.masked, "inner exit must not re-enable")
		assert.Equal(t, 0, p.enables)
	})
	assert.False(t, p.masked)
	assert.Equal(t, 1, p.enables)
	assert.Equal(t, 2, p.disables)
}

func TestDoExitsOnPanic(t *testing.T) {
	p := &primask{}
	var cs *Section
	require.Panics(t, func() {
		Do(p, func(s *Section) {
			cs = s
			panic("abort")
		})
	})
	assert.False(t, p.masked)
	assert.False(t, cs.Active())
}

func TestDoubleExitPanics(t *testing.T) {
	p := &primask{}
	cs := Enter(p)
	cs.Exit()
	assert.Panics(t, cs.Exit)
	assert.Equal(t, 1, p.enables)
}

func TestValue(t *testing.T) {
	p := &primask{}
	got := Value(p, func(cs *Section) int {
		assert.True(t, p.masked)
		return 42
	})
	assert.Equal(t, 42, got)
	assert.False(t, p.masked)
}

func TestMutexBorrow(t *testing.T) {
	p := &primask{}
	m := NewMutex(7)

	Do(p, func(cs *Section) {
		*m.Borrow(cs) += 1
	})
	Do(p, func(cs *Section) {
		assert.Equal(t, 8, *m.Borrow(cs))
	})

	var stale *Section
	Do(p, func(cs *Section) { stale = cs })
	assert.Panics(t, func() { m.Borrow(stale) })
	assert.Panics(t, func() { m.Borrow(nil) })
}
