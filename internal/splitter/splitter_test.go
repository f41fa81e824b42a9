package splitter

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("abcdefghij", 500)
	s := FixedWindow{}

	first, err := s.Split(text, 1000, 100)
	require.NoError(t, err)

	for range 5 {
		again, err := s.Split(text, 1000, 100)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSplit_TenThousandChars(t *testing.T) {
	// 10,000 characters, size 1000, overlap 100: windows advance by 900,
	// the final window starting at 9,000 reaches the end, giving 11 chunks.
	var sb strings.Builder
	for i := range 10000 {
		sb.WriteByte(byte('a' + i%26))
	}
	text := sb.String()

	chunks, err := FixedWindow{}.Split(text, 1000, 100)
	require.NoError(t, err)
	require.Len(t, chunks, 11)

	for i, chunk := range chunks {
		assert.Len(t, chunk, 1000, "chunk %d", i)
	}

	// Each adjacent pair shares exactly 100 characters.
	for i := 1; i < len(chunks); i++ {
		prev, curr := chunks[i-1], chunks[i]
		assert.Equal(t, prev[len(prev)-100:], curr[:100], "overlap between chunk %d and %d", i-1, i)
	}

	// Reassembling without the overlaps reproduces the input.
	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0])
	for i := 1; i < len(chunks); i++ {
		rebuilt.WriteString(chunks[i][100:])
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestSplit_ShortText(t *testing.T) {
	chunks, err := FixedWindow{}.Split("tiny", 1000, 100)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "tiny", chunks[0])
}

func TestSplit_ExactWindow(t *testing.T) {
	text := strings.Repeat("x", 1000)
	chunks, err := FixedWindow{}.Split(text, 1000, 100)
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}

func TestSplit_EmptyText(t *testing.T) {
	chunks, err := FixedWindow{}.Split("", 1000, 100)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplit_NoOverlap(t *testing.T) {
	text := strings.Repeat("y", 2500)
	chunks, err := FixedWindow{}.Split(text, 1000, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[2], 500)
}

func TestSplit_Multibyte(t *testing.T) {
	text := strings.Repeat("héllø wörld ", 100)
	chunks, err := FixedWindow{}.Split(text, 50, 10)
	require.NoError(t, err)
	for i, chunk := range chunks {
		assert.True(t, strings.ContainsRune("héllø wörld ", []rune(chunk)[0]), "chunk %d starts mid-rune", i)
	}
}

func TestSplit_InvalidParameters(t *testing.T) {
	s := FixedWindow{}

	_, err := s.Split("text", 0, 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = s.Split("text", 100, -1)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = s.Split("text", 100, 100)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = s.Split("text", 100, 150)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestName(t *testing.T) {
	assert.Equal(t, "fixed_window", FixedWindow{}.Name())
}
