package clip

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemory_ReadWrite(t *testing.T) {
	m := NewMemory("first")

	got, err := m.ReadText()
	require.NoError(t, err)
	require.Equal(t, "first", got)

	require.NoError(t, m.WriteText("second"))
	m.Set("third")

	got, err = m.ReadText()
	require.NoError(t, err)
	require.Equal(t, "third", got)
	require.Equal(t, []string{"second"}, m.Writes())
}

func TestMemory_FailReads(t *testing.T) {
	m := NewMemory("x")
	m.FailReads(ErrAccess)

	_, err := m.ReadText()
	require.True(t, errors.Is(err, ErrAccess))

	m.FailReads(nil)
	got, err := m.ReadText()
	require.NoError(t, err)
	require.Equal(t, "x", got)
}

func TestHeadless_RefusesWrites(t *testing.T) {
	b := NewHeadless()

	got, err := b.ReadText()
	require.NoError(t, err)
	require.Empty(t, got)
	require.ErrorIs(t, b.WriteText("x"), ErrAccess)
}
