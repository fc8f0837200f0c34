package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode_LengthAndDigits(t *testing.T) {
	t.Parallel()

	for _, length := range []int{4, 6, 8} {
		code, err := GenerateCode(length)
		require.NoError(t, err)
		require.Len(t, code, length)
		for _, c := range code {
			assert.True(t, c >= '0' && c <= '9', "unexpected character %q in code %q", c, code)
		}
	}
}

func TestGenerateCode_RejectsNonPositiveLength(t *testing.T) {
	t.Parallel()

	for _, length := range []int{0, -1} {
		_, err := GenerateCode(length)
		require.Error(t, err)
	}
}

func TestGenerateCode_CodesVary(t *testing.T) {
	t.Parallel()

	// 50 six-digit draws colliding into a single value would mean the
	// random source is broken.
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateCode(6)
		require.NoError(t, err)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}
