package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText_Deterministic(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog."
	first := Text(text)
	for range 10 {
		assert.Equal(t, first, Text(text))
	}
}

func TestText_KnownValue(t *testing.T) {
	// SHA-256("hello") base64url. Pinned so the scheme cannot drift silently.
	assert.Equal(t, "LPJNul-wow4m6DsqxbninhsWHlwfp0JecwQzYpOLmCQ=", Text("hello"))
}

func TestText_Length(t *testing.T) {
	for _, text := range []string{"", "a", strings.Repeat("x", 100000)} {
		assert.Len(t, Text(text), Size)
	}
}

func TestText_SensitiveToContent(t *testing.T) {
	assert.NotEqual(t, Text("hello"), Text("hello "))
	assert.NotEqual(t, Text("hello"), Text("Hello"))
}

func TestVerify(t *testing.T) {
	text := "some chunk content"
	assert.True(t, Verify(text, Text(text)))
	assert.False(t, Verify(text, Text("other content")))
	assert.False(t, Verify(text, "not-a-hash"))
}
