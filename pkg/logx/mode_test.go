package logx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeInitOnce(t *testing.T) {
	t.Parallel()
	m := &Mode{}
	require.NoError(t, m.Init(true))
	assert.True(t, m.Enabled())
	assert.ErrorIs(t, m.Init(false), ErrModeSealed)
	assert.True(t, m.Enabled())
}

func TestModeFirstReadSeals(t *testing.T) {
	t.Parallel()
	m := &Mode{}
	assert.False(t, m.Enabled())
	assert.ErrorIs(t, m.Init(true), ErrModeSealed)
	assert.False(t, m.Enabled())
}

func TestNilModeIsOff(t *testing.T) {
	t.Parallel()
	var m *Mode
	assert.False(t, m.Enabled())
}
