package slugx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		s, err := New()
		require.NoError(t, err)
		assert.True(t, Valid(s), "generated slug %q must be valid", s)
		seen[s] = struct{}{}
	}
	assert.Len(t, seen, 100, "slugs should not collide in a small sample")
}

func TestValid(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"abc0001234", true},
		{"ABCdef0189", true},
		{"short", false},
		{"toolongtoolong", false},
		{"abc_000123", false},
		{"abc-000123", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Valid(tt.slug), tt.slug)
	}
}
